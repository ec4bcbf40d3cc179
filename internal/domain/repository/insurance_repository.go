package repository

import (
	"context"
	"time"

	"github.com/obakengshepherd/InsureClaim/internal/domain/entity"
)

// Implementations return entity.ErrNotFound for missing rows and
// entity.ErrConflict for unique violations. All methods join the ambient
// transaction carried by ctx when there is one.

type PolicyRepository interface {
	Create(ctx context.Context, p *entity.Policy) error
	GetByID(ctx context.Context, id string) (*entity.Policy, error)
	// List returns policies newest first; an empty ownerID lists all.
	List(ctx context.Context, ownerID string) ([]entity.Policy, error)
	Update(ctx context.Context, p *entity.Policy) error
}

type ClaimFilter struct {
	UserID   string
	PolicyID string
}

type ClaimRepository interface {
	Create(ctx context.Context, c *entity.Claim) error
	GetByID(ctx context.Context, id string) (*entity.Claim, error)
	// GetForUpdate locks the row until the ambient transaction ends.
	GetForUpdate(ctx context.Context, id string) (*entity.Claim, error)
	List(ctx context.Context, f ClaimFilter) ([]entity.Claim, error)
	// Update writes the review fields only: status, approved amount,
	// reviewed date and notes.
	Update(ctx context.Context, c *entity.Claim) error
	SetDocumentPath(ctx context.Context, id, path string, at time.Time) error
	Totals(ctx context.Context) ([]entity.ClaimTotal, error)
}

type PaymentFilter struct {
	// OwnerID restricts to payments on policies owned by the user.
	OwnerID  string
	PolicyID string
}

type PaymentRepository interface {
	Create(ctx context.Context, p *entity.Payment) error
	GetByID(ctx context.Context, id string) (*entity.Payment, error)
	List(ctx context.Context, f PaymentFilter) ([]entity.Payment, error)
	Update(ctx context.Context, p *entity.Payment) error
	Totals(ctx context.Context) ([]entity.PaymentTotal, error)
}

// SequenceRepository hands out per-(tag, year) counters atomically.
type SequenceRepository interface {
	Next(ctx context.Context, tag string, year int) (int64, error)
}

// Transactor runs fn in a single database transaction. Repositories called
// with the ctx passed to fn participate in it.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
