package service

import (
	"context"
	"log/slog"

	"github.com/benx421/ledger/internal/events"
	"github.com/benx421/ledger/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics
var (
	transactionRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_transaction_requests_total",
			Help: "Transaction requests by type and result code",
		},
		[]string{"type", "result"},
	)

	settlementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_settlements_total",
			Help: "Settled transactions by type, final status and failure reason",
		},
		[]string{"type", "status", "reason"},
	)

	settlementErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_settlement_errors_total",
			Help: "Settlement calls rejected without a status change, by error code",
		},
		[]string{"code"},
	)

	settlementRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_settlement_retries_total",
			Help: "Settlement attempts retried after a transient storage fault",
		},
	)

	settlementDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ledger_settlement_duration_seconds",
			Help:    "Duration of settlement calls including retries",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
	)

	eventPublishErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_event_publish_errors_total",
			Help: "Transaction events that could not be published",
		},
	)
)

// publishTransaction emits the event for txn's current status. A committed
// transaction stays committed when publishing fails, so the failure is only logged.
func publishTransaction(ctx context.Context, publisher events.Publisher, logger *slog.Logger, txn *models.Transaction) {
	if publisher == nil {
		return
	}
	event := events.FromTransaction(txn)
	if err := publisher.Publish(ctx, event); err != nil {
		eventPublishErrorsTotal.Inc()
		logger.ErrorContext(ctx, "failed to publish transaction event",
			"type", event.Type,
			"reference", txn.Reference,
			"error", err,
		)
	}
}
