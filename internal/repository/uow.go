package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/benx421/ledger/internal/db"
)

// Repositories groups the stores that must share one transaction
type Repositories struct {
	Accounts     AccountRepository
	Transactions TransactionRepository
	Products     ProductRepository
}

// UnitOfWork runs a function against repositories bound to one atomic unit.
// If fn returns an error every write it made is discarded.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(repos Repositories) error) error
	Repositories() Repositories
}

type sqlUnitOfWork struct {
	db *db.DB
}

// NewUnitOfWork creates a UnitOfWork backed by Postgres transactions
func NewUnitOfWork(database *db.DB) UnitOfWork {
	return &sqlUnitOfWork{db: database}
}

func newRepositories(database db.DBTX) Repositories {
	return Repositories{
		Accounts:     NewAccountRepository(database),
		Transactions: NewTransactionRepository(database),
		Products:     NewProductRepository(database),
	}
}

// Do runs fn inside a READ COMMITTED transaction. Row locks taken by the
// repositories are held until fn returns.
func (u *sqlUnitOfWork) Do(ctx context.Context, fn func(repos Repositories) error) error {
	tx, err := u.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // rollback error is not critical in defer
	}()

	if err := fn(newRepositories(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Repositories returns stores that run each statement on its own
func (u *sqlUnitOfWork) Repositories() Repositories {
	return newRepositories(u.db)
}
