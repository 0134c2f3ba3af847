package repository

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/benx421/ledger/internal/models"
	"github.com/lib/pq"
)

const (
	pqUniqueViolation      = "23505"
	pqSerializationFailure = "40001"
	pqDeadlockDetected     = "40P01"
	pqClassConnection      = "08"
)

// IsTransient reports whether err is a storage fault worth retrying: a
// serialization failure, a deadlock, or a lost connection.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqSerializationFailure, pqDeadlockDetected:
			return true
		}
		return pqErr.Code.Class() == pqClassConnection
	}

	return errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

func wrapProductErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("product not found: %w", models.ErrNotFound)
	}
	return fmt.Errorf("failed to find product: %w", err)
}
