package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is a ledger entry against a policy. No external gateway is involved.
type Payment struct {
	ID            string
	TransactionID string
	PolicyID      string
	Amount        decimal.Decimal
	Method        PaymentMethod
	Status        PaymentStatus
	PaymentDate   time.Time
	ProcessedDate *time.Time
	Reference     *string
	CreatedAt     time.Time

	PolicyNumber string
}
