package db

import (
	"database/sql"
	"log/slog"
)

// NewTestDB wraps sqlDB, typically a sqlmock or testcontainers pool, with a
// logger that discards everything.
func NewTestDB(sqlDB *sql.DB) *DB {
	return Wrap(sqlDB, slog.New(slog.DiscardHandler))
}
