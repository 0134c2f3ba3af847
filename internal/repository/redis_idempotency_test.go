package repository

import (
	"context"
	"testing"
	"time"

	"github.com/benx421/ledger/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	testcontainers.CleanupContainer(t, container)

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err())
	return client
}

func TestRedisIdempotencyRepository(t *testing.T) {
	client := startRedis(t)
	repo := NewRedisIdempotencyRepository(client, time.Minute)
	ctx := context.Background()

	t.Run("miss returns nil", func(t *testing.T) {
		got, err := repo.Get(ctx, "missing", "/api/v1/transactions")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("first stored response wins", func(t *testing.T) {
		first := &models.IdempotencyKey{
			Key:            "key-1",
			RequestPath:    "/api/v1/transactions",
			ResponseStatus: 201,
			ResponseBody:   `{"reference":"first"}`,
		}
		second := *first
		second.ResponseBody = `{"reference":"second"}`

		require.NoError(t, repo.Store(ctx, first))
		require.NoError(t, repo.Store(ctx, &second))

		got, err := repo.Get(ctx, "key-1", "/api/v1/transactions")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, 201, got.ResponseStatus)
		assert.Equal(t, `{"reference":"first"}`, got.ResponseBody)
	})

	t.Run("entries expire", func(t *testing.T) {
		require.NoError(t, repo.Store(ctx, &models.IdempotencyKey{
			Key: "key-2", RequestPath: "/api/v1/accounts", ResponseStatus: 201, ResponseBody: "{}",
		}))

		ttl, err := client.TTL(ctx, redisIdempotencyKey("key-2", "/api/v1/accounts")).Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))
		assert.LessOrEqual(t, ttl, time.Minute)
	})
}
