package models

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType represents the kind of money movement
type TransactionType string

const (
	TransactionTypeSaving     TransactionType = "saving"
	TransactionTypeWithdrawal TransactionType = "withdrawal"
	TransactionTypeTransfer   TransactionType = "transfer"
)

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeSaving, TransactionTypeWithdrawal, TransactionTypeTransfer:
		return true
	default:
		return false
	}
}

// TransactionStatus represents the status of a transaction
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// FailureReason records why a settlement ended in TransactionStatusFailed
type FailureReason string

const (
	FailureReasonNone              FailureReason = ""
	FailureReasonCapExceeded       FailureReason = "cap_exceeded"
	FailureReasonInsufficientFunds FailureReason = "insufficient_funds"
	FailureReasonAccountInactive   FailureReason = "account_inactive"
)

// Transaction represents a requested money movement and its settlement outcome
type Transaction struct {
	CreatedAt         time.Time         `db:"created_at"`
	LastModifiedOn    time.Time         `db:"last_modified_on"`
	SettledAt         *time.Time        `db:"settled_at"`
	ReceiverAccountID *uuid.UUID        `db:"receiver_account_id"`
	Reference         string            `db:"reference"`
	Type              TransactionType   `db:"type"`
	Status            TransactionStatus `db:"status"`
	FailureReason     FailureReason     `db:"failure_reason"`
	AmountCents       int64             `db:"amount_cents"`
	ID                uuid.UUID         `db:"id"`
	SenderAccountID   uuid.UUID         `db:"sender_account_id"`
	CreatedBy         uuid.UUID         `db:"created_by"`
	LastModifiedBy    uuid.UUID         `db:"last_modified_by"`
}

// IsPending reports whether the transaction is still waiting for settlement.
func (t *Transaction) IsPending() bool {
	return t.Status == TransactionStatusPending
}

// AccountIDs returns every account the transaction touches, sender first.
func (t *Transaction) AccountIDs() []uuid.UUID {
	if t.ReceiverAccountID == nil {
		return []uuid.UUID{t.SenderAccountID}
	}
	return []uuid.UUID{t.SenderAccountID, *t.ReceiverAccountID}
}

// IdempotencyKey tracks processed requests to prevent duplicate transactions
type IdempotencyKey struct {
	CreatedAt      time.Time `db:"created_at"`
	Key            string    `db:"key"`
	RequestPath    string    `db:"request_path"`
	ResponseBody   string    `db:"response_body"`
	ResponseStatus int       `db:"response_status"`
}
