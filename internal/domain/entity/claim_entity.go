package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type Claim struct {
	ID             string
	ClaimNumber    string
	PolicyID       string
	UserID         string
	Description    string
	ClaimAmount    decimal.Decimal
	ApprovedAmount decimal.NullDecimal
	Status         ClaimStatus
	IncidentDate   time.Time
	SubmittedDate  time.Time
	ReviewedDate   *time.Time
	DocumentPath   *string
	ReviewNotes    *string
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// PolicyNumber is joined in on reads; it is not a claim column.
	PolicyNumber string
}
