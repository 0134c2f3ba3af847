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

// TransactionRepository defines the interface for transaction data access
type TransactionRepository interface {
	Create(ctx context.Context, txn *models.Transaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	FindByReference(ctx context.Context, reference string) (*models.Transaction, error)
	FindByReferenceForUpdate(ctx context.Context, reference string) (*models.Transaction, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]*models.Transaction, error)
	MarkSettled(ctx context.Context, txn *models.Transaction) error
}

type transactionRepository struct {
	db db.DBTX
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(database db.DBTX) TransactionRepository {
	return &transactionRepository{db: database}
}

const transactionColumns = `
		SELECT id, reference, type, sender_account_id, receiver_account_id, amount_cents,
		       status, failure_reason, created_by, created_at, last_modified_by,
		       last_modified_on, settled_at
		FROM transactions
`

// Create inserts a new transaction record
func (r *transactionRepository) Create(ctx context.Context, txn *models.Transaction) error {
	if txn.ID == uuid.Nil {
		txn.ID = uuid.New()
	}
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = time.Now()
	}
	if txn.LastModifiedOn.IsZero() {
		txn.LastModifiedOn = txn.CreatedAt
	}

	query := `
		INSERT INTO transactions (id, reference, type, sender_account_id, receiver_account_id,
		                          amount_cents, status, failure_reason, created_by, created_at,
		                          last_modified_by, last_modified_on)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.ExecContext(ctx, query,
		txn.ID,
		txn.Reference,
		txn.Type,
		txn.SenderAccountID,
		txn.ReceiverAccountID,
		txn.AmountCents,
		txn.Status,
		nullableReason(txn.FailureReason),
		txn.CreatedBy,
		txn.CreatedAt,
		txn.LastModifiedBy,
		txn.LastModifiedOn,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.ErrDuplicateTransaction
		}
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// FindByID retrieves a transaction by its internal UUID
func (r *transactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	txn, err := scanTransaction(r.db.QueryRowContext(ctx, transactionColumns+`WHERE id = $1`, id))
	if err != nil {
		return nil, wrapTransactionErr(err, "failed to find transaction by id")
	}
	return txn, nil
}

// FindByReference retrieves a transaction by its external reference
func (r *transactionRepository) FindByReference(ctx context.Context, reference string) (*models.Transaction, error) {
	txn, err := scanTransaction(r.db.QueryRowContext(ctx, transactionColumns+`WHERE reference = $1`, reference))
	if err != nil {
		return nil, wrapTransactionErr(err, "failed to find transaction by reference")
	}
	return txn, nil
}

// FindByReferenceForUpdate retrieves a transaction and locks its row so that
// concurrent settlements of the same reference queue behind each other.
func (r *transactionRepository) FindByReferenceForUpdate(ctx context.Context, reference string) (*models.Transaction, error) {
	query := transactionColumns + `WHERE reference = $1 FOR UPDATE`

	txn, err := scanTransaction(r.db.QueryRowContext(ctx, query, reference))
	if err != nil {
		return nil, wrapTransactionErr(err, "failed to lock transaction")
	}
	return txn, nil
}

// ListByAccount returns the most recent transactions where the account is sender or receiver
func (r *transactionRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]*models.Transaction, error) {
	query := transactionColumns + `
		WHERE sender_account_id = $1 OR receiver_account_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txns []*models.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return txns, nil
}

// MarkSettled persists the terminal status of a pending transaction. The update
// only matches rows still pending, so a transaction can leave PENDING once.
func (r *transactionRepository) MarkSettled(ctx context.Context, txn *models.Transaction) error {
	query := `
		UPDATE transactions
		SET status = $2,
		    failure_reason = $3,
		    last_modified_by = $4,
		    last_modified_on = $5,
		    settled_at = $6
		WHERE id = $1 AND status = 'PENDING'
	`

	result, err := r.db.ExecContext(ctx, query,
		txn.ID,
		txn.Status,
		nullableReason(txn.FailureReason),
		txn.LastModifiedBy,
		txn.LastModifiedOn,
		txn.SettledAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction status: %w", err)
	}

	return expectOneRow(result, "pending transaction")
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var (
		txn           models.Transaction
		receiverID    uuid.NullUUID
		failureReason sql.NullString
		settledAt     sql.NullTime
	)

	err := row.Scan(
		&txn.ID,
		&txn.Reference,
		&txn.Type,
		&txn.SenderAccountID,
		&receiverID,
		&txn.AmountCents,
		&txn.Status,
		&failureReason,
		&txn.CreatedBy,
		&txn.CreatedAt,
		&txn.LastModifiedBy,
		&txn.LastModifiedOn,
		&settledAt,
	)
	if err != nil {
		return nil, err
	}

	if receiverID.Valid {
		txn.ReceiverAccountID = &receiverID.UUID
	}
	if failureReason.Valid {
		txn.FailureReason = models.FailureReason(failureReason.String)
	}
	if settledAt.Valid {
		txn.SettledAt = &settledAt.Time
	}

	return &txn, nil
}

func nullableReason(reason models.FailureReason) sql.NullString {
	return sql.NullString{String: string(reason), Valid: reason != models.FailureReasonNone}
}

func wrapTransactionErr(err error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("transaction not found: %w", models.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
