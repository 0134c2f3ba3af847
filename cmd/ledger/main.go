package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/benx421/ledger/internal/auth"
	"github.com/benx421/ledger/internal/config"
	"github.com/benx421/ledger/internal/db"
	"github.com/benx421/ledger/internal/events"
	"github.com/benx421/ledger/internal/handlers"
	"github.com/benx421/ledger/internal/repository"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logger.NewLogger()
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("ledger api stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting ledger api",
		"port", cfg.Server.Port,
		"log_level", cfg.Logger.Level,
		"idempotency_backend", cfg.App.IdempotencyBackend,
		"kafka_enabled", cfg.Kafka.Enabled,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.Connect(ctx, &cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	if cfg.Database.MigrateOnStart {
		if err := db.Migrate(ctx, database); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	idempotency, closeIdempotency, err := newIdempotencyRepository(ctx, cfg, database)
	if err != nil {
		return err
	}
	defer closeIdempotency()

	publisher, closePublisher := newPublisher(cfg, logger)
	defer closePublisher()

	router, err := handlers.NewRouter(handlers.Dependencies{
		UnitOfWork:  repository.NewUnitOfWork(database),
		Idempotency: idempotency,
		Publisher:   publisher,
		Health:      database,
		Tokens:      auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL),
	}, cfg, logger)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server listening", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func newIdempotencyRepository(ctx context.Context, cfg *config.Config, database *db.DB) (repository.IdempotencyRepository, func(), error) {
	if cfg.App.IdempotencyBackend != config.IdempotencyBackendRedis {
		return repository.NewIdempotencyRepository(database), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return repository.NewRedisIdempotencyRepository(client, cfg.App.IdempotencyTTL), func() { _ = client.Close() }, nil
}

func newPublisher(cfg *config.Config, logger *slog.Logger) (events.Publisher, func()) {
	if !cfg.Kafka.Enabled {
		return events.NewLogPublisher(logger), func() {}
	}

	publisher := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
	return publisher, func() {
		if err := publisher.Close(); err != nil {
			logger.Error("failed to close kafka writer", "error", err)
		}
	}
}
