package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/obakengshepherd/InsureClaim/internal/domain/access"
	"github.com/obakengshepherd/InsureClaim/internal/domain/entity"
	"github.com/obakengshepherd/InsureClaim/internal/domain/identifier"
	"github.com/obakengshepherd/InsureClaim/internal/domain/premium"
	"github.com/obakengshepherd/InsureClaim/internal/domain/repository"
)

const maxPolicyMonths = 60

type PolicyService struct {
	Policies repository.PolicyRepository
	Users    repository.UserRepository
	Tx       repository.Transactor
	IDs      *identifier.Generator
	Premium  premium.Calculator
	Events   EventPublisher
	Logger   *logrus.Logger
	Now      func() time.Time
}

func NewPolicyService(policies repository.PolicyRepository, users repository.UserRepository, tx repository.Transactor,
	ids *identifier.Generator, calc premium.Calculator, events EventPublisher, logger *logrus.Logger) *PolicyService {
	return &PolicyService{
		Policies: policies,
		Users:    users,
		Tx:       tx,
		IDs:      ids,
		Premium:  calc,
		Events:   events,
		Logger:   logger,
		Now:      time.Now,
	}
}

type CreatePolicyInput struct {
	// UserID is the owner; empty means the caller.
	UserID         string
	Type           entity.PolicyType
	CoverageAmount decimal.Decimal
	StartDate      time.Time
	DurationMonths int
}

func (s *PolicyService) Create(ctx context.Context, viewer access.Principal, in CreatePolicyInput) (*entity.Policy, error) {
	ownerID := in.UserID
	if ownerID == "" {
		ownerID = viewer.UserID
	}
	if err := access.Check(viewer, access.WriteOnBehalf, ownerID); err != nil {
		return nil, err
	}
	if in.DurationMonths < 1 || in.DurationMonths > maxPolicyMonths {
		return nil, fmt.Errorf("%w: duration must be between 1 and %d months", entity.ErrValidation, maxPolicyMonths)
	}
	premiumAmount, err := s.Premium.Calculate(in.CoverageAmount, in.Type, in.DurationMonths)
	if err != nil {
		return nil, err
	}
	owner, err := s.Users.GetByID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("policy owner: %w", err)
	}

	now := s.Now().UTC()
	start := in.StartDate.UTC()
	p := &entity.Policy{
		ID:             uuid.NewString(),
		UserID:         owner.ID,
		Type:           in.Type,
		CoverageAmount: in.CoverageAmount,
		PremiumAmount:  premiumAmount,
		StartDate:      start,
		EndDate:        start.AddDate(0, in.DurationMonths, 0),
		Status:         entity.PolicyActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	err = s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		number, err := s.IDs.Next(ctx, identifier.TagPolicy)
		if err != nil {
			return err
		}
		p.PolicyNumber = number
		return s.Policies.Create(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.WithFields(logrus.Fields{
		"policy_number": p.PolicyNumber,
		"user_id":       p.UserID,
		"type":          p.Type.String(),
		"premium":       p.PremiumAmount.StringFixed(2),
	}).Info("policy created")
	s.notifier().emit(ctx, Event{
		Type:       EventPolicyCreated,
		OccurredAt: now,
		UserID:     owner.ID,
		Email:      owner.Email,
		Name:       owner.FullName,
		Reference:  p.PolicyNumber,
		Data: map[string]string{
			"type":     p.Type.String(),
			"coverage": p.CoverageAmount.StringFixed(2),
			"premium":  p.PremiumAmount.StringFixed(2),
			"end_date": p.EndDate.Format("2006-01-02"),
		},
	})
	return p, nil
}

// UpdatePolicyInput is a partial update; nil fields are left unchanged.
type UpdatePolicyInput struct {
	CoverageAmount *decimal.Decimal
	Status         *entity.PolicyStatus
	EndDate        *time.Time
}

func (s *PolicyService) Update(ctx context.Context, viewer access.Principal, id string, in UpdatePolicyInput) (*entity.Policy, error) {
	if err := access.Check(viewer, access.Administer, ""); err != nil {
		return nil, err
	}
	p, err := s.Policies.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.CoverageAmount != nil {
		// The term is taken from the stored window, before any end date change below.
		months := premium.MonthsBetween(p.StartDate, p.EndDate)
		amount, err := s.Premium.Calculate(*in.CoverageAmount, p.Type, months)
		if err != nil {
			return nil, err
		}
		p.CoverageAmount = *in.CoverageAmount
		p.PremiumAmount = amount
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, fmt.Errorf("%w: unknown policy status", entity.ErrValidation)
		}
		p.Status = *in.Status
	}
	if in.EndDate != nil {
		end := in.EndDate.UTC()
		if !end.After(p.StartDate) {
			return nil, fmt.Errorf("%w: end date must be after start date", entity.ErrOutOfRange)
		}
		p.EndDate = end
	}
	p.UpdatedAt = s.Now().UTC()

	if err := s.Policies.Update(ctx, p); err != nil {
		return nil, err
	}
	s.Logger.WithFields(logrus.Fields{"policy_number": p.PolicyNumber, "status": p.Status.String()}).Info("policy updated")
	return p, nil
}

// Cancel soft-deletes a policy by moving it to Cancelled.
func (s *PolicyService) Cancel(ctx context.Context, viewer access.Principal, id string) error {
	if err := access.Check(viewer, access.Administer, ""); err != nil {
		return err
	}
	p, err := s.Policies.GetByID(ctx, id)
	if err != nil {
		return err
	}
	now := s.Now().UTC()
	p.Status = entity.PolicyCancelled
	p.UpdatedAt = now
	if err := s.Policies.Update(ctx, p); err != nil {
		return err
	}
	s.Logger.WithField("policy_number", p.PolicyNumber).Info("policy cancelled")
	s.notifier().emit(ctx, Event{Type: EventPolicyCancelled, OccurredAt: now, UserID: p.UserID, Reference: p.PolicyNumber})
	return nil
}

// List returns every policy for admins and the caller's own otherwise.
func (s *PolicyService) List(ctx context.Context, viewer access.Principal) ([]entity.Policy, error) {
	return s.Policies.List(ctx, access.OwnerScope(viewer))
}

func (s *PolicyService) Get(ctx context.Context, viewer access.Principal, id string) (*entity.Policy, error) {
	p, err := s.Policies.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.Check(viewer, access.ReadOwned, p.UserID); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PolicyService) ListByUser(ctx context.Context, viewer access.Principal, userID string) ([]entity.Policy, error) {
	if err := access.Check(viewer, access.ReadOwned, userID); err != nil {
		return nil, err
	}
	return s.Policies.List(ctx, userID)
}

func (s *PolicyService) notifier() notifier {
	return notifier{publisher: s.Events, users: s.Users, logger: s.Logger}
}
