// Package repository provides data access layer implementations for the ledger.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/benx421/ledger/internal/db"
	"github.com/benx421/ledger/internal/models"
	"github.com/google/uuid"
)

// AccountRepository defines the interface for account data access.
// Lookups only ever return accounts in the active status.
type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Account, error)
	FindByAccountNumber(ctx context.Context, accountNumber string) (*models.Account, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Account, error)
	AdjustBalance(ctx context.Context, accountID uuid.UUID, delta int64, actorID uuid.UUID) error
	UpdateStatus(ctx context.Context, accountID uuid.UUID, status models.AccountStatus, actorID uuid.UUID) error
}

// accountRepository implements AccountRepository
type accountRepository struct {
	db db.DBTX
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(database db.DBTX) AccountRepository {
	return &accountRepository{db: database}
}

const accountColumns = `
		SELECT a.id, a.account_number, a.owner_id, a.balance_cents, a.status, a.expires_at,
		       a.created_on, a.last_modified_by, a.last_modified_on,
		       p.id, p.name, p.slug, p.description, p.maximum_amount_cents, p.created_at
		FROM accounts a
		JOIN products p ON p.id = a.product_id
`

// Create inserts a new account; ID, timestamps and status are filled in when unset
func (r *accountRepository) Create(ctx context.Context, account *models.Account) error {
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	if account.Status == "" {
		account.Status = models.AccountStatusActive
	}
	now := time.Now()
	if account.CreatedOn.IsZero() {
		account.CreatedOn = now
	}
	account.LastModifiedOn = now

	query := `
		INSERT INTO accounts (id, account_number, owner_id, product_id, balance_cents, status,
		                      expires_at, created_on, last_modified_by, last_modified_on)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		account.ID,
		account.AccountNumber,
		account.OwnerID,
		account.Product.ID,
		account.BalanceCents,
		account.Status,
		account.ExpiresAt,
		account.CreatedOn,
		account.LastModifiedBy,
		account.LastModifiedOn,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.ErrDuplicateAccountNumber
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// FindByID retrieves an active account by its UUID
func (r *accountRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	query := accountColumns + `WHERE a.id = $1 AND a.status = 'active'`

	account, err := scanAccount(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, wrapAccountErr(err, "failed to find account by id")
	}
	return account, nil
}

// FindByIDForUpdate retrieves an active account and locks its row until the
// surrounding transaction ends. The product row is not locked.
func (r *accountRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	query := accountColumns + `WHERE a.id = $1 AND a.status = 'active' FOR UPDATE OF a`

	account, err := scanAccount(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, wrapAccountErr(err, "failed to lock account")
	}
	return account, nil
}

// FindByAccountNumber retrieves an active account by its external account number
func (r *accountRepository) FindByAccountNumber(ctx context.Context, accountNumber string) (*models.Account, error) {
	query := accountColumns + `WHERE a.account_number = $1 AND a.status = 'active'`

	account, err := scanAccount(r.db.QueryRowContext(ctx, query, accountNumber))
	if err != nil {
		return nil, wrapAccountErr(err, "failed to find account by account number")
	}
	return account, nil
}

// ListByOwner returns the active accounts held by ownerID, oldest first
func (r *accountRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Account, error) {
	query := accountColumns + `WHERE a.owner_id = $1 AND a.status = 'active' ORDER BY a.created_on`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}

	return accounts, nil
}

// AdjustBalance atomically adds delta to the balance of an active account
func (r *accountRepository) AdjustBalance(ctx context.Context, accountID uuid.UUID, delta int64, actorID uuid.UUID) error {
	query := `
		UPDATE accounts
		SET balance_cents = balance_cents + $2,
		    last_modified_by = $3,
		    last_modified_on = NOW()
		WHERE id = $1 AND status = 'active'
	`

	result, err := r.db.ExecContext(ctx, query, accountID, delta, actorID)
	if err != nil {
		return fmt.Errorf("failed to adjust account balance: %w", err)
	}

	return expectOneRow(result, "account")
}

// UpdateStatus moves an active account to a new status
func (r *accountRepository) UpdateStatus(ctx context.Context, accountID uuid.UUID, status models.AccountStatus, actorID uuid.UUID) error {
	query := `
		UPDATE accounts
		SET status = $2,
		    last_modified_by = $3,
		    last_modified_on = NOW()
		WHERE id = $1 AND status = 'active'
	`

	result, err := r.db.ExecContext(ctx, query, accountID, status, actorID)
	if err != nil {
		return fmt.Errorf("failed to update account status: %w", err)
	}

	return expectOneRow(result, "account")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var (
		account        models.Account
		expiresAt      sql.NullTime
		lastModifiedBy uuid.NullUUID
	)

	err := row.Scan(
		&account.ID,
		&account.AccountNumber,
		&account.OwnerID,
		&account.BalanceCents,
		&account.Status,
		&expiresAt,
		&account.CreatedOn,
		&lastModifiedBy,
		&account.LastModifiedOn,
		&account.Product.ID,
		&account.Product.Name,
		&account.Product.Slug,
		&account.Product.Description,
		&account.Product.MaximumAmountCents,
		&account.Product.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if expiresAt.Valid {
		account.ExpiresAt = &expiresAt.Time
	}
	if lastModifiedBy.Valid {
		account.LastModifiedBy = &lastModifiedBy.UUID
	}

	return &account, nil
}

func wrapAccountErr(err error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("account not found: %w", models.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func expectOneRow(result sql.Result, entity string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s not found: %w", entity, models.ErrNotFound)
	}
	return nil
}
