package services

import (
	"context"
	"errors"
	"fmt"
	"spotfinder/models"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Deliverer sends a persisted notification through an outside channel.
type Deliverer interface {
	Deliver(ctx context.Context, event models.NotificationEvent) error
}

type Mailer struct {
	client *sendgrid.Client
	from   string
}

func NewMailer(apiKey, from string) *Mailer {
	return &Mailer{client: sendgrid.NewSendClient(apiKey), from: from}
}

// Deliver emails the notification when the event carries an address.
func (m *Mailer) Deliver(ctx context.Context, event models.NotificationEvent) error {
	if event.Email == "" {
		return nil
	}

	response, err := m.client.SendWithContext(ctx, m.message(event))
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid: status %d", response.StatusCode)
	}
	return nil
}

func (m *Mailer) message(event models.NotificationEvent) *mail.SGMailV3 {
	subject := "SpotFinder notification"
	if event.Type == models.NotificationReward {
		subject = "SpotFinder: new status unlocked"
	}

	body := fmt.Sprintf("%s\n\n---\nYou can find all your notifications in SpotFinder.", event.Message)

	from := mail.NewEmail("SpotFinder", m.from)
	to := mail.NewEmail("", event.Email)
	return mail.NewSingleEmail(from, subject, to, body, body)
}

// Fanout delivers to every channel and joins their errors.
type Fanout []Deliverer

func (f Fanout) Deliver(ctx context.Context, event models.NotificationEvent) error {
	var errs []error
	for _, d := range f {
		if err := d.Deliver(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
