package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Policy is an insurance contract. PremiumAmount is always derived from
// coverage, type and duration; it is never client supplied.
type Policy struct {
	ID             string
	PolicyNumber   string
	UserID         string
	Type           PolicyType
	CoverageAmount decimal.Decimal
	PremiumAmount  decimal.Decimal
	StartDate      time.Time
	EndDate        time.Time
	Status         PolicyStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Covers reports whether t falls inside the policy window, bounds inclusive.
func (p *Policy) Covers(t time.Time) bool {
	return !t.Before(p.StartDate) && !t.After(p.EndDate)
}
