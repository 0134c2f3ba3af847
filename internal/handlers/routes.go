package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/benx421/ledger/internal/api"
	"github.com/benx421/ledger/internal/config"
	"github.com/benx421/ledger/internal/events"
	"github.com/benx421/ledger/internal/middleware"
	"github.com/benx421/ledger/internal/repository"
	"github.com/benx421/ledger/internal/service"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies are the storage and infrastructure collaborators of the router
type Dependencies struct {
	UnitOfWork  repository.UnitOfWork
	Idempotency repository.IdempotencyRepository
	Publisher   events.Publisher
	Health      service.HealthChecker
	Tokens      middleware.TokenParser
}

// NewRouter creates and configures the HTTP router with all routes and middleware.
func NewRouter(
	deps Dependencies,
	cfg *config.Config,
	logger *slog.Logger,
) (http.Handler, error) {
	retry := service.RetryPolicy{
		MaxRetries:      cfg.App.SettleMaxRetries,
		InitialInterval: cfg.App.SettleRetryBackoff,
	}

	accountService := service.NewAccountService(deps.UnitOfWork, logger)
	transactionService := service.NewTransactionService(deps.UnitOfWork, deps.Publisher, logger)
	settlementService := service.NewSettlementService(deps.UnitOfWork, deps.Publisher, retry, logger)

	handler := NewHandler(accountService, transactionService, transactionService, settlementService, deps.Health, logger)
	strictHandler := api.NewStrictHandler(handler)

	swagger, err := api.GetSwagger()
	if err != nil {
		return nil, fmt.Errorf("failed to load openapi document: %w", err)
	}

	mux := http.NewServeMux()
	api.RegisterDocsRoutes(mux, swagger)
	mux.Handle("GET /metrics", promhttp.Handler())
	api.HandlerFromMux(strictHandler, mux)

	validate, err := middleware.RequestValidator(swagger, logger)
	if err != nil {
		return nil, err
	}

	var finalHandler http.Handler = mux

	finalHandler = validate(finalHandler)
	finalHandler = middleware.Idempotency(deps.Idempotency, logger)(finalHandler)
	finalHandler = middleware.Authenticate(deps.Tokens, logger)(finalHandler)
	finalHandler = middleware.Metrics(mux)(finalHandler)

	return finalHandler, nil
}
