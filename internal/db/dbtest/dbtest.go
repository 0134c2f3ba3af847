// Package dbtest starts a throwaway Postgres for tests that need real row locks.
package dbtest

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/benx421/ledger/internal/db"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// StartPostgres runs a migrated Postgres container for the lifetime of t.
// It skips the test in -short mode.
func StartPostgres(t *testing.T) *db.DB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("ledger"),
		tcpostgres.WithUsername("ledger"),
		tcpostgres.WithPassword("ledger"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() {
		_ = container.Terminate(ctx)
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to build connection string")

	sqlDB, err := sql.Open("postgres", connStr)
	require.NoError(t, err, "failed to open database")
	sqlDB.SetMaxOpenConns(25)

	database := db.NewTestDB(sqlDB)
	t.Cleanup(func() {
		_ = database.Close()
	})

	require.NoError(t, db.Migrate(ctx, database), "failed to run migrations")

	return database
}

// Reset removes every account and transaction, keeping the seeded products.
func Reset(t *testing.T, database *db.DB) {
	t.Helper()

	_, err := database.ExecContext(context.Background(), `
		TRUNCATE TABLE transactions, idempotency_keys;
		DELETE FROM accounts;
	`)
	require.NoError(t, err, "failed to reset test data")
}
