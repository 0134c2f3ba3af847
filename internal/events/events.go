// Package events publishes transaction lifecycle notifications after the
// ledger has committed them.
package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/benx421/ledger/internal/models"
	"github.com/google/uuid"
)

// Type names a transaction lifecycle event
type Type string

const (
	TypeTransactionRequested Type = "transaction.requested"
	TypeTransactionCompleted Type = "transaction.completed"
	TypeTransactionFailed    Type = "transaction.failed"
)

// Event is the payload published for every transaction state change
type Event struct {
	OccurredAt        time.Time                `json:"occurred_at"`
	ReceiverAccountID *uuid.UUID               `json:"receiver_account_id,omitempty"`
	Type              Type                     `json:"type"`
	Reference         string                   `json:"reference"`
	TransactionType   models.TransactionType   `json:"transaction_type"`
	Status            models.TransactionStatus `json:"status"`
	FailureReason     models.FailureReason     `json:"failure_reason,omitempty"`
	AmountCents       int64                    `json:"amount_cents"`
	SenderAccountID   uuid.UUID                `json:"sender_account_id"`
	ActorID           uuid.UUID                `json:"actor_id"`
}

// FromTransaction builds the event describing txn's current status.
func FromTransaction(txn *models.Transaction) Event {
	eventType := TypeTransactionRequested
	switch txn.Status {
	case models.TransactionStatusCompleted:
		eventType = TypeTransactionCompleted
	case models.TransactionStatusFailed:
		eventType = TypeTransactionFailed
	}

	return Event{
		Type:              eventType,
		Reference:         txn.Reference,
		TransactionType:   txn.Type,
		Status:            txn.Status,
		FailureReason:     txn.FailureReason,
		AmountCents:       txn.AmountCents,
		SenderAccountID:   txn.SenderAccountID,
		ReceiverAccountID: txn.ReceiverAccountID,
		ActorID:           txn.LastModifiedBy,
		OccurredAt:        txn.LastModifiedOn,
	}
}

// Publisher delivers events to downstream consumers
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// LogPublisher writes events to the structured log. It is used when no
// broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates a LogPublisher
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the event at info level
func (p *LogPublisher) Publish(ctx context.Context, event Event) error {
	p.logger.InfoContext(ctx, "transaction event",
		"type", event.Type,
		"reference", event.Reference,
		"status", event.Status,
		"failure_reason", event.FailureReason,
		"amount_cents", event.AmountCents,
	)
	return nil
}
