package notification

import (
	"context"
	"fmt"
	"log/slog"

	"finance_service/internal/models"
)

const PurposeWelcome = "welcome"

type Publisher interface {
	SendMessage(ctx context.Context, msg models.Message) error
}

type Welcomer struct {
	log *slog.Logger
	pub Publisher
}

func NewWelcomer(log *slog.Logger, pub Publisher) *Welcomer {
	return &Welcomer{log: log, pub: pub}
}

func (w *Welcomer) SendWelcome(ctx context.Context, user models.User) error {
	const op = "notification.SendWelcome"

	if err := w.pub.SendMessage(ctx, WelcomeMessage(user)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	w.log.Debug("welcome notification queued", slog.String("op", op), slog.String("uid", user.ID))

	return nil
}

func WelcomeMessage(user models.User) models.Message {
	return models.Message{
		Email:   user.Email,
		Subject: "Welcome to your finance tracker",
		Body: fmt.Sprintf(
			"Hi %s,\n\nyour account is ready. Log in with %s to start tracking expenses and incomings.\n",
			user.Name, user.Email,
		),
		Purpose: PurposeWelcome,
	}
}

// NopPublisher stands in for the broker when messaging is disabled.
type NopPublisher struct {
	Log *slog.Logger
}

func (p NopPublisher) SendMessage(_ context.Context, msg models.Message) error {
	p.Log.Debug("messaging disabled, message dropped", slog.String("purpose", msg.Purpose))
	return nil
}
