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
	"time"

	"finance_service/internal/auth"
	"finance_service/internal/config"
	"finance_service/internal/finance"
	"finance_service/internal/http_server/router"
	"finance_service/internal/lib/api/validate"
	"finance_service/internal/lib/hasher"
	"finance_service/internal/lib/jwt"
	"finance_service/internal/lib/logger/sl"
	"finance_service/internal/lib/notification"
	"finance_service/internal/metrics"
	"finance_service/internal/rabbitmq"
	"finance_service/internal/storage/postgres"
	"finance_service/internal/storage/sqlite"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

type repository interface {
	auth.UserSaver
	auth.UserProvider
	finance.CategoryStore
	finance.EntryStore
}

func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("starting finance service",
		slog.String("env", cfg.Env),
		slog.String("storage", cfg.Storage.Driver),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := openStorage(ctx, cfg)
	if err != nil {
		log.Error("failed to init storage", sl.Err(err))
		os.Exit(1)
	}
	defer closeRepo()

	tokens, err := jwt.New(cfg.Tokens.Secret, cfg.Tokens.PreviousSecrets, cfg.Tokens.ShortTTL, cfg.Tokens.LongTTL)
	if err != nil {
		log.Error("failed to init token manager", sl.Err(err))
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	var publisher notification.Publisher = notification.NopPublisher{Log: log}
	if cfg.RabbitMQ.Enabled {
		broker, err := rabbitmq.New(cfg.RabbitMQ.URL, cfg.RabbitMQ.QueueName)
		if err != nil {
			log.Error("failed to connect rabbitmq", sl.Err(err))
			os.Exit(1)
		}
		defer broker.Close()

		publisher = broker
	}

	authService := auth.New(log, repo, repo, hasher.New(cfg.Tokens.BcryptCost), tokens,
		auth.WithNotifier(notification.NewWelcomer(log, publisher)),
		auth.WithRecorder(collector),
	)
	financeService := finance.New(log, repo, repo)

	handler := router.New(log, validate.New(), authService, financeService, router.Options{
		CORSOrigins: cfg.HTTPServer.CORSOrigins,
		RateLimit:   true,
		Metrics:     collector,
		Gatherer:    reg,
	})

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      handler,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server is running", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", sl.Err(err))
			stop()
		}
	}()

	<-ctx.Done()

	log.Info("shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", sl.Err(err))
	} else {
		log.Info("server stopped gracefully")
	}
}

func openStorage(ctx context.Context, cfg *config.Config) (repository, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		repo, err := postgres.New(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return repo, repo.Close, nil
	case config.DriverSQLite:
		repo, err := sqlite.New(cfg.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() { _ = repo.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}
