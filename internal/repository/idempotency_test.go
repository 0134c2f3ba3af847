package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/benx421/ledger/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdempotencyRepository_Get(t *testing.T) {
	t.Run("hit", func(t *testing.T) {
		database, mock := setupMockDB(t)
		repo := NewIdempotencyRepository(database)

		mock.ExpectQuery(regexp.QuoteMeta("FROM idempotency_keys")).
			WithArgs("test-key-1", "/api/v1/transactions").
			WillReturnRows(sqlmock.NewRows([]string{"key", "request_path", "response_status", "response_body", "created_at"}).
				AddRow("test-key-1", "/api/v1/transactions", 201, `{"reference":"abc"}`, time.Now()))

		got, err := repo.Get(context.Background(), "test-key-1", "/api/v1/transactions")

		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, 201, got.ResponseStatus)
		assert.Equal(t, `{"reference":"abc"}`, got.ResponseBody)
	})

	t.Run("miss returns nil", func(t *testing.T) {
		database, mock := setupMockDB(t)
		repo := NewIdempotencyRepository(database)

		mock.ExpectQuery(regexp.QuoteMeta("FROM idempotency_keys")).
			WithArgs("non-existent-key", "/api/v1/test").
			WillReturnRows(sqlmock.NewRows([]string{"key", "request_path", "response_status", "response_body", "created_at"}))

		got, err := repo.Get(context.Background(), "non-existent-key", "/api/v1/test")

		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestIdempotencyRepository_Store_OnConflict(t *testing.T) {
	database, mock := setupMockDB(t)
	repo := NewIdempotencyRepository(database)

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (key, request_path) DO NOTHING")).
		WithArgs("duplicate-key", "/api/v1/accounts", 201, `{"first":"response"}`, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Store(context.Background(), &models.IdempotencyKey{
		Key:            "duplicate-key",
		RequestPath:    "/api/v1/accounts",
		ResponseStatus: 201,
		ResponseBody:   `{"first":"response"}`,
	})
	assert.NoError(t, err)
}
