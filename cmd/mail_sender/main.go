package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"finance_service/internal/config"
	"finance_service/internal/lib/logger/sl"
	"finance_service/internal/mailer"
	"finance_service/internal/rabbitmq"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoadMailer()
	log := setupLogger(cfg.Env)

	log.Info("starting mail sender", slog.String("env", cfg.Env), slog.String("queue", cfg.RabbitMQ.QueueName))

	if err := run(ctx, cfg, log); err != nil {
		log.Error("mail sender stopped with error", sl.Err(err))
		os.Exit(1)
	}

	log.Info("service gracefully stopped")
}

func run(ctx context.Context, cfg *config.MailerConfig, log *slog.Logger) error {
	r, err := rabbitmq.New(cfg.RabbitMQ.URL, cfg.RabbitMQ.QueueName)
	if err != nil {
		return err
	}
	defer r.Close()

	m := mailer.New(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)

	log.Info("consumer started")

	if err := r.StartReading(ctx, mailer.Handler(log, m)); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	log.Info("shutting down consumer")

	return nil
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
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}
