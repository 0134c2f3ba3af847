package repository

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/benx421/ledger/internal/db"
	"github.com/stretchr/testify/require"
)

func setupMockDB(t *testing.T) (*db.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err, "failed to open sqlmock")

	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet(), "unmet sql expectations")
		_ = sqlDB.Close()
	})

	return db.NewTestDB(sqlDB), mock
}
