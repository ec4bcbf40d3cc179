package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/obakengshepherd/InsureClaim/internal/domain/access"
	"github.com/obakengshepherd/InsureClaim/internal/domain/entity"
	"github.com/obakengshepherd/InsureClaim/internal/domain/identifier"
	"github.com/obakengshepherd/InsureClaim/internal/domain/repository"
)

type PaymentService struct {
	Payments repository.PaymentRepository
	Policies repository.PolicyRepository
	Users    repository.UserRepository
	Tx       repository.Transactor
	IDs      *identifier.Generator
	Events   EventPublisher
	Logger   *logrus.Logger
	Now      func() time.Time
}

func NewPaymentService(payments repository.PaymentRepository, policies repository.PolicyRepository, users repository.UserRepository,
	tx repository.Transactor, ids *identifier.Generator, events EventPublisher, logger *logrus.Logger) *PaymentService {
	return &PaymentService{
		Payments: payments,
		Policies: policies,
		Users:    users,
		Tx:       tx,
		IDs:      ids,
		Events:   events,
		Logger:   logger,
		Now:      time.Now,
	}
}

type RecordPaymentInput struct {
	PolicyID  string
	Amount    decimal.Decimal
	Method    entity.PaymentMethod
	Reference string
}

// Record books a completed payment against a policy. Payments are
// accepted whatever the policy status.
func (s *PaymentService) Record(ctx context.Context, viewer access.Principal, in RecordPaymentInput) (*entity.Payment, error) {
	policy, err := s.Policies.GetByID(ctx, in.PolicyID)
	if err != nil {
		return nil, err
	}
	if err := access.Check(viewer, access.WriteOnBehalf, policy.UserID); err != nil {
		return nil, err
	}
	if !in.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", entity.ErrValidation)
	}
	if !in.Method.Valid() {
		return nil, fmt.Errorf("%w: unknown payment method", entity.ErrValidation)
	}

	now := s.Now().UTC()
	p := &entity.Payment{
		ID:            uuid.NewString(),
		PolicyID:      policy.ID,
		Amount:        in.Amount,
		Method:        in.Method,
		Status:        entity.PaymentCompleted,
		PaymentDate:   now,
		ProcessedDate: &now,
		Reference:     nonBlank(&in.Reference),
		CreatedAt:     now,
		PolicyNumber:  policy.PolicyNumber,
	}
	err = s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		txn, err := s.IDs.Next(ctx, identifier.TagTransaction)
		if err != nil {
			return err
		}
		p.TransactionID = txn
		return s.Payments.Create(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.WithFields(logrus.Fields{
		"transaction_id": p.TransactionID,
		"policy_number":  policy.PolicyNumber,
		"amount":         p.Amount.StringFixed(2),
		"method":         p.Method.String(),
	}).Info("payment recorded")
	notifier{publisher: s.Events, users: s.Users, logger: s.Logger}.emit(ctx, Event{
		Type:       EventPaymentRecorded,
		OccurredAt: now,
		UserID:     policy.UserID,
		Reference:  p.TransactionID,
		Data: map[string]string{
			"policy_number": policy.PolicyNumber,
			"amount":        p.Amount.StringFixed(2),
			"method":        p.Method.String(),
		},
	})
	return p, nil
}

type UpdatePaymentStatusInput struct {
	Status    entity.PaymentStatus
	Reference string
}

func (s *PaymentService) UpdateStatus(ctx context.Context, viewer access.Principal, id string, in UpdatePaymentStatusInput) (*entity.Payment, error) {
	if err := access.Check(viewer, access.Administer, ""); err != nil {
		return nil, err
	}
	if !in.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown payment status", entity.ErrValidation)
	}
	p, err := s.Payments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Status == entity.PaymentCompleted && p.Status != entity.PaymentCompleted {
		now := s.Now().UTC()
		p.ProcessedDate = &now
	}
	p.Status = in.Status
	if ref := strings.TrimSpace(in.Reference); ref != "" {
		p.Reference = &ref
	}
	if err := s.Payments.Update(ctx, p); err != nil {
		return nil, err
	}
	s.Logger.WithFields(logrus.Fields{"transaction_id": p.TransactionID, "status": p.Status.String()}).Info("payment status updated")
	return p, nil
}

// List returns all payments for admins and payments on the caller's own
// policies otherwise.
func (s *PaymentService) List(ctx context.Context, viewer access.Principal) ([]entity.Payment, error) {
	return s.Payments.List(ctx, repository.PaymentFilter{OwnerID: access.OwnerScope(viewer)})
}

func (s *PaymentService) Get(ctx context.Context, viewer access.Principal, id string) (*entity.Payment, error) {
	p, err := s.Payments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	policy, err := s.Policies.GetByID(ctx, p.PolicyID)
	if err != nil {
		return nil, err
	}
	if err := access.Check(viewer, access.ReadOwned, policy.UserID); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PaymentService) ListByPolicy(ctx context.Context, viewer access.Principal, policyID string) ([]entity.Payment, error) {
	policy, err := s.Policies.GetByID(ctx, policyID)
	if err != nil {
		return nil, err
	}
	if err := access.Check(viewer, access.ReadOwned, policy.UserID); err != nil {
		return nil, err
	}
	return s.Payments.List(ctx, repository.PaymentFilter{PolicyID: policy.ID})
}

func (s *PaymentService) Statistics(ctx context.Context, viewer access.Principal) (*PaymentStatistics, error) {
	if err := access.Check(viewer, access.Administer, ""); err != nil {
		return nil, err
	}
	rows, err := s.Payments.Totals(ctx)
	if err != nil {
		return nil, err
	}
	stats := SummarizePayments(rows)
	return &stats, nil
}
