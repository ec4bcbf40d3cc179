package application

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/obakengshepherd/InsureClaim/internal/domain/entity"
)

// ErrFeatureDisabled is returned when an optional backend (search, object
// storage) is not configured.
var ErrFeatureDisabled = errors.New("feature disabled")

// TokenRevoker stores revoked token ids.
type TokenRevoker interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
}

// EventPublisher delivers domain events to the notification pipeline.
type EventPublisher interface {
	Publish(ctx context.Context, e Event) error
}

// ClaimIndexer keeps the claim search index and queries it.
type ClaimIndexer interface {
	IndexClaim(ctx context.Context, c *entity.Claim) error
	SearchClaims(ctx context.Context, query string, size int) ([]ClaimSearchHit, error)
}

type ClaimSearchHit struct {
	ID           string
	ClaimNumber  string
	PolicyNumber string
	Description  string
	Status       string
	ClaimAmount  decimal.Decimal
	Score        float64
}

// DocumentStore persists uploaded claim documents and returns their URI.
type DocumentStore interface {
	Put(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}
