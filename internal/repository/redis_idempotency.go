package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/benx421/ledger/internal/models"
	"github.com/redis/go-redis/v9"
)

const idempotencyKeyPrefix = "ledger:idempotency:"

type redisIdempotencyRepository struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisIdempotencyRepository creates an IdempotencyRepository whose entries
// expire after ttl.
func NewRedisIdempotencyRepository(client redis.Cmdable, ttl time.Duration) IdempotencyRepository {
	return &redisIdempotencyRepository{client: client, ttl: ttl}
}

func redisIdempotencyKey(key, requestPath string) string {
	return idempotencyKeyPrefix + requestPath + ":" + key
}

// Get returns the cached response for key and path, or nil on a miss
func (r *redisIdempotencyRepository) Get(ctx context.Context, key, requestPath string) (*models.IdempotencyKey, error) {
	val, err := r.client.Get(ctx, redisIdempotencyKey(key, requestPath)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get idempotency key: %w", err)
	}

	var idemKey models.IdempotencyKey
	if err := json.Unmarshal(val, &idemKey); err != nil {
		return nil, fmt.Errorf("failed to decode idempotency key: %w", err)
	}

	return &idemKey, nil
}

// Store saves a response with SET NX so the first response stored wins
func (r *redisIdempotencyRepository) Store(ctx context.Context, idemKey *models.IdempotencyKey) error {
	if idemKey.CreatedAt.IsZero() {
		idemKey.CreatedAt = time.Now()
	}

	data, err := json.Marshal(idemKey)
	if err != nil {
		return fmt.Errorf("failed to encode idempotency key: %w", err)
	}

	err = r.client.SetNX(ctx, redisIdempotencyKey(idemKey.Key, idemKey.RequestPath), data, r.ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to store idempotency key: %w", err)
	}

	return nil
}
