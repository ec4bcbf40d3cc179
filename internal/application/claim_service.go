package application

import (
	"context"
	"fmt"
	"io"
	"path"
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

type ClaimService struct {
	Claims    repository.ClaimRepository
	Policies  repository.PolicyRepository
	Users     repository.UserRepository
	Tx        repository.Transactor
	IDs       *identifier.Generator
	Events    EventPublisher
	Index     ClaimIndexer
	Documents DocumentStore
	// StrictTransitions rejects reviews that move a claim backwards.
	StrictTransitions bool
	Logger            *logrus.Logger
	Now               func() time.Time
}

func NewClaimService(claims repository.ClaimRepository, policies repository.PolicyRepository, users repository.UserRepository,
	tx repository.Transactor, ids *identifier.Generator, logger *logrus.Logger) *ClaimService {
	return &ClaimService{
		Claims:   claims,
		Policies: policies,
		Users:    users,
		Tx:       tx,
		IDs:      ids,
		Logger:   logger,
		Now:      time.Now,
	}
}

type SubmitClaimInput struct {
	PolicyID     string
	Description  string
	ClaimAmount  decimal.Decimal
	IncidentDate time.Time
	DocumentPath *string
}

// Submit files a claim against one of the caller's active policies.
// Checks run in a fixed order so the first violated rule is reported.
func (s *ClaimService) Submit(ctx context.Context, viewer access.Principal, in SubmitClaimInput) (*entity.Claim, error) {
	policy, err := s.Policies.GetByID(ctx, in.PolicyID)
	if err != nil {
		return nil, err
	}
	if policy.UserID != viewer.UserID {
		return nil, fmt.Errorf("%w: policy %s belongs to another user", entity.ErrForbidden, policy.PolicyNumber)
	}
	if policy.Status != entity.PolicyActive {
		return nil, fmt.Errorf("%w: policy %s is %s", entity.ErrInvalidState, policy.PolicyNumber, policy.Status)
	}
	incident := in.IncidentDate.UTC()
	if !policy.Covers(incident) {
		return nil, fmt.Errorf("%w: incident date %s outside policy period %s to %s", entity.ErrOutOfRange,
			incident.Format("2006-01-02"), policy.StartDate.Format("2006-01-02"), policy.EndDate.Format("2006-01-02"))
	}
	if !in.ClaimAmount.IsPositive() {
		return nil, fmt.Errorf("%w: claim amount must be positive", entity.ErrValidation)
	}
	if in.ClaimAmount.GreaterThan(policy.CoverageAmount) {
		return nil, fmt.Errorf("%w: claim amount %s exceeds coverage %s", entity.ErrOutOfRange,
			in.ClaimAmount.StringFixed(2), policy.CoverageAmount.StringFixed(2))
	}

	now := s.Now().UTC()
	c := &entity.Claim{
		ID:            uuid.NewString(),
		PolicyID:      policy.ID,
		UserID:        viewer.UserID,
		Description:   strings.TrimSpace(in.Description),
		ClaimAmount:   in.ClaimAmount,
		Status:        entity.ClaimSubmitted,
		IncidentDate:  incident,
		SubmittedDate: now,
		DocumentPath:  nonBlank(in.DocumentPath),
		CreatedAt:     now,
		UpdatedAt:     now,
		PolicyNumber:  policy.PolicyNumber,
	}
	err = s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		number, err := s.IDs.Next(ctx, identifier.TagClaim)
		if err != nil {
			return err
		}
		c.ClaimNumber = number
		return s.Claims.Create(ctx, c)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.WithFields(logrus.Fields{
		"claim_number":  c.ClaimNumber,
		"policy_number": policy.PolicyNumber,
		"amount":        c.ClaimAmount.StringFixed(2),
	}).Info("claim submitted")
	s.afterChange(ctx, c, Event{
		Type:       EventClaimSubmitted,
		OccurredAt: now,
		UserID:     c.UserID,
		Email:      viewer.Email,
		Name:       viewer.Name,
		Reference:  c.ClaimNumber,
		Data: map[string]string{
			"policy_number": policy.PolicyNumber,
			"amount":        c.ClaimAmount.StringFixed(2),
		},
	})
	return c, nil
}

type ReviewClaimInput struct {
	Status         entity.ClaimStatus
	ApprovedAmount decimal.NullDecimal
	ReviewNotes    string
}

// Review records an adjuster decision. The claim row stays locked from the
// checks until the write, and nothing is written unless every check passes.
func (s *ClaimService) Review(ctx context.Context, viewer access.Principal, id string, in ReviewClaimInput) (*entity.Claim, error) {
	if err := access.Check(viewer, access.Administer, ""); err != nil {
		return nil, err
	}
	var c *entity.Claim
	var now time.Time
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		c, err = s.Claims.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := s.checkReview(c, in); err != nil {
			return err
		}
		now = s.Now().UTC()
		c.Status = in.Status
		if in.ApprovedAmount.Valid {
			c.ApprovedAmount = in.ApprovedAmount
		}
		if in.Status == entity.ClaimApproved || in.Status == entity.ClaimDenied {
			c.ReviewedDate = &now
		}
		if notes := strings.TrimSpace(in.ReviewNotes); notes != "" {
			c.ReviewNotes = &notes
		}
		c.UpdatedAt = now
		return s.Claims.Update(ctx, c)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.WithFields(logrus.Fields{
		"claim_number": c.ClaimNumber,
		"status":       c.Status.String(),
		"reviewer":     viewer.UserID,
	}).Info("claim reviewed")
	data := map[string]string{"status": c.Status.String()}
	if c.ApprovedAmount.Valid {
		data["approved_amount"] = c.ApprovedAmount.Decimal.StringFixed(2)
	}
	s.afterChange(ctx, c, Event{Type: EventClaimReviewed, OccurredAt: now, UserID: c.UserID, Reference: c.ClaimNumber, Data: data})
	return c, nil
}

func (s *ClaimService) checkReview(c *entity.Claim, in ReviewClaimInput) error {
	if !in.Status.Valid() {
		return fmt.Errorf("%w: unknown claim status", entity.ErrValidation)
	}
	if s.StrictTransitions && !c.Status.CanTransitionTo(in.Status) {
		return fmt.Errorf("%w: claim %s cannot move from %s to %s", entity.ErrInvalidState, c.ClaimNumber, c.Status, in.Status)
	}
	if !in.ApprovedAmount.Valid {
		return nil
	}
	if in.ApprovedAmount.Decimal.IsNegative() {
		return fmt.Errorf("%w: approved amount must not be negative", entity.ErrValidation)
	}
	if in.ApprovedAmount.Decimal.GreaterThan(c.ClaimAmount) {
		return fmt.Errorf("%w: approved amount %s exceeds claimed %s", entity.ErrOutOfRange,
			in.ApprovedAmount.Decimal.StringFixed(2), c.ClaimAmount.StringFixed(2))
	}
	return nil
}

// DocumentUpload is a proof document streamed from the client.
type DocumentUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

var allowedDocumentTypes = map[string]string{
	"application/pdf": ".pdf",
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
}

// AttachDocument stores a proof document for a claim and records its location.
func (s *ClaimService) AttachDocument(ctx context.Context, viewer access.Principal, id string, doc DocumentUpload) (*entity.Claim, error) {
	if s.Documents == nil {
		return nil, fmt.Errorf("%w: document storage", ErrFeatureDisabled)
	}
	c, err := s.Claims.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.Check(viewer, access.ReadOwned, c.UserID); err != nil {
		return nil, err
	}
	ext, ok := allowedDocumentTypes[doc.ContentType]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported document type %q", entity.ErrValidation, doc.ContentType)
	}

	object := path.Join("claims", c.ClaimNumber, uuid.NewString()+ext)
	uri, err := s.Documents.Put(ctx, object, doc.ContentType, doc.Body)
	if err != nil {
		return nil, fmt.Errorf("store document: %w", err)
	}
	// Only the path is written; a review may have landed during the upload.
	if err := s.Claims.SetDocumentPath(ctx, c.ID, uri, s.Now().UTC()); err != nil {
		return nil, err
	}
	if c, err = s.Claims.GetByID(ctx, c.ID); err != nil {
		return nil, err
	}
	s.Logger.WithFields(logrus.Fields{"claim_number": c.ClaimNumber, "object": object}).Info("claim document stored")
	s.index(ctx, c)
	return c, nil
}

func (s *ClaimService) Get(ctx context.Context, viewer access.Principal, id string) (*entity.Claim, error) {
	c, err := s.Claims.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.Check(viewer, access.ReadOwned, c.UserID); err != nil {
		return nil, err
	}
	return c, nil
}

// List returns every claim for admins and the caller's own otherwise.
func (s *ClaimService) List(ctx context.Context, viewer access.Principal) ([]entity.Claim, error) {
	return s.Claims.List(ctx, repository.ClaimFilter{UserID: access.OwnerScope(viewer)})
}

func (s *ClaimService) ListByPolicy(ctx context.Context, viewer access.Principal, policyID string) ([]entity.Claim, error) {
	p, err := s.Policies.GetByID(ctx, policyID)
	if err != nil {
		return nil, err
	}
	if err := access.Check(viewer, access.ReadOwned, p.UserID); err != nil {
		return nil, err
	}
	return s.Claims.List(ctx, repository.ClaimFilter{PolicyID: p.ID})
}

func (s *ClaimService) ListByUser(ctx context.Context, viewer access.Principal, userID string) ([]entity.Claim, error) {
	if err := access.Check(viewer, access.ReadOwned, userID); err != nil {
		return nil, err
	}
	return s.Claims.List(ctx, repository.ClaimFilter{UserID: userID})
}

func (s *ClaimService) Statistics(ctx context.Context, viewer access.Principal) (*ClaimStatistics, error) {
	if err := access.Check(viewer, access.Administer, ""); err != nil {
		return nil, err
	}
	rows, err := s.Claims.Totals(ctx)
	if err != nil {
		return nil, err
	}
	stats := SummarizeClaims(rows)
	return &stats, nil
}

const maxSearchSize = 50

// Search runs a full-text query over indexed claims.
func (s *ClaimService) Search(ctx context.Context, viewer access.Principal, query string, size int) ([]ClaimSearchHit, error) {
	if err := access.Check(viewer, access.Administer, ""); err != nil {
		return nil, err
	}
	if s.Index == nil {
		return nil, fmt.Errorf("%w: claim search", ErrFeatureDisabled)
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", entity.ErrValidation)
	}
	switch {
	case size <= 0:
		size = 10
	case size > maxSearchSize:
		size = maxSearchSize
	}
	return s.Index.SearchClaims(ctx, query, size)
}

func (s *ClaimService) afterChange(ctx context.Context, c *entity.Claim, e Event) {
	s.index(ctx, c)
	notifier{publisher: s.Events, users: s.Users, logger: s.Logger}.emit(ctx, e)
}

func (s *ClaimService) index(ctx context.Context, c *entity.Claim) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexClaim(context.WithoutCancel(ctx), c); err != nil {
		s.Logger.WithError(err).WithField("claim_number", c.ClaimNumber).Warn("index claim failed")
	}
}

func nonBlank(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
