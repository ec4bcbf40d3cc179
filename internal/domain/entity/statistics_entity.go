package entity

import "github.com/shopspring/decimal"

// ClaimTotal is one row of the grouped claim aggregate.
type ClaimTotal struct {
	Status   ClaimStatus
	Count    int64
	Claimed  decimal.Decimal
	Approved decimal.Decimal
}

// PaymentTotal is one row of the grouped payment aggregate.
type PaymentTotal struct {
	Status PaymentStatus
	Method PaymentMethod
	Count  int64
	Amount decimal.Decimal
}
