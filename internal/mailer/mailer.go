package mailer

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"finance_service/internal/lib/logger/sl"
	"finance_service/internal/models"

	"gopkg.in/gomail.v2"
)

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type Mailer struct {
	from   string
	sender sender
}

func New(host string, port int, username, password, from string) *Mailer {
	return &Mailer{
		from:   from,
		sender: gomail.NewDialer(host, port, username, password),
	}
}

func (m *Mailer) Compose(msg models.Message) *gomail.Message {
	out := gomail.NewMessage()
	out.SetHeader("From", m.from)
	out.SetHeader("To", msg.Email)
	out.SetHeader("Subject", msg.Subject)
	out.SetBody("text/plain", msg.Body)

	return out
}

func (m *Mailer) Send(msg models.Message) error {
	const op = "mailer.Send"

	if msg.Email == "" {
		return fmt.Errorf("%s: message has no recipient", op)
	}

	if err := m.sender.DialAndSend(m.Compose(msg)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Handler decodes a queued message and mails it.
func Handler(log *slog.Logger, m *Mailer) func(body []byte) error {
	return func(body []byte) error {
		const op = "mailer.Handler"

		log := log.With(slog.String("op", op))

		var msg models.Message
		if err := json.Unmarshal(body, &msg); err != nil {
			log.Error("failed to unmarshal message", sl.Err(err))
			return fmt.Errorf("%s: %w", op, err)
		}

		if err := m.Send(msg); err != nil {
			log.Error("failed to send message", sl.Err(err), slog.String("purpose", msg.Purpose))
			return err
		}

		log.Info("message sent successfully", slog.String("purpose", msg.Purpose))

		return nil
	}
}
