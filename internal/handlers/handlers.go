// Package handlers implements HTTP handlers for the ledger API.
package handlers

import (
	"log/slog"

	"github.com/benx421/ledger/internal/service"
)

// Handler implements the api.StrictServerInterface for all endpoints
type Handler struct {
	accounts      service.AccountManager
	requester     service.TransactionRequester
	reader        service.TransactionReader
	settler       service.Settler
	healthChecker service.HealthChecker
	logger        *slog.Logger
}

// NewHandler creates a new Handler with injected service dependencies.
func NewHandler(
	accounts service.AccountManager,
	requester service.TransactionRequester,
	reader service.TransactionReader,
	settler service.Settler,
	healthChecker service.HealthChecker,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		accounts:      accounts,
		requester:     requester,
		reader:        reader,
		settler:       settler,
		healthChecker: healthChecker,
		logger:        logger,
	}
}
