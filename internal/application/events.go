package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/obakengshepherd/InsureClaim/internal/domain/repository"
)

const (
	EventPolicyCreated   = "policy.created"
	EventPolicyCancelled = "policy.cancelled"
	EventClaimSubmitted  = "claim.submitted"
	EventClaimReviewed   = "claim.reviewed"
	EventPaymentRecorded = "payment.recorded"
)

// Event is the JSON payload published for the notification worker.
type Event struct {
	Type       string            `json:"type"`
	OccurredAt time.Time         `json:"occurred_at"`
	UserID     string            `json:"user_id"`
	Email      string            `json:"email,omitempty"`
	Name       string            `json:"name,omitempty"`
	Reference  string            `json:"reference"`
	Data       map[string]string `json:"data,omitempty"`
}

// notifier publishes events after the business write has committed.
// Failures are logged and never reach the caller.
type notifier struct {
	publisher EventPublisher
	users     repository.UserRepository
	logger    *logrus.Logger
}

const publishTimeout = 5 * time.Second

func (n notifier) emit(ctx context.Context, e Event) {
	if n.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if e.Email == "" && e.UserID != "" && n.users != nil {
		if u, err := n.users.GetByID(ctx, e.UserID); err == nil {
			e.Email, e.Name = u.Email, u.FullName
		}
	}
	if err := n.publisher.Publish(ctx, e); err != nil && n.logger != nil {
		n.logger.WithError(err).WithFields(logrus.Fields{"event": e.Type, "reference": e.Reference}).Warn("publish event failed")
	}
}
