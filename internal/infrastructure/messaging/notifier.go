package messaging

import (
	"context"
	"fmt"
	"strings"

	"github.com/obakengshepherd/InsureClaim/config"
	"github.com/obakengshepherd/InsureClaim/internal/application"
	"github.com/obakengshepherd/InsureClaim/pkg/mailer"
	mailtpl "github.com/obakengshepherd/InsureClaim/pkg/mailer/templates"
)

// Notifier turns domain events into customer e-mails.
type Notifier struct {
	Cfg    *config.Config
	Sender mailer.Sender
}

// Compose renders the e-mail for e.
func (n *Notifier) Compose(e application.Event) (mailer.EmailJob, error) {
	if strings.TrimSpace(e.Email) == "" {
		return mailer.EmailJob{}, fmt.Errorf("%w: event %s for %s has no recipient", ErrPermanent, e.Type, e.Reference)
	}
	data := mailtpl.NewNotificationData(n.Cfg, e.Type, e.Name, e.Email, e.Reference,
		mailtpl.WithTime(e.OccurredAt),
		mailtpl.WithDetails(e.Data),
	)
	subject, text, html, err := mailtpl.Render(mailtpl.Notification, data)
	if err != nil {
		return mailer.EmailJob{}, fmt.Errorf("%w: render: %v", ErrPermanent, err)
	}
	return mailer.EmailJob{To: e.Email, Subject: subject, Text: text, HTML: html}, nil
}

// Handle composes and sends; it is the worker's HandlerFunc.
func (n *Notifier) Handle(ctx context.Context, e application.Event) error {
	job, err := n.Compose(e)
	if err != nil {
		return err
	}
	return n.Sender.Send(ctx, job.To, job.Subject, job.Text, job.HTML)
}
