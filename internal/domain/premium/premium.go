// Package premium derives the monthly premium of a policy.
package premium

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/obakengshepherd/InsureClaim/internal/domain/entity"
)

type Rounding int

const (
	// HalfAwayFromZero rounds 0.005 up to 0.01.
	HalfAwayFromZero Rounding = iota
	// HalfEven is banker's rounding.
	HalfEven
)

// ParseRounding accepts "half_away" and "half_even"; empty means HalfAwayFromZero.
func ParseRounding(s string) (Rounding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "half_away", "half_away_from_zero":
		return HalfAwayFromZero, nil
	case "half_even", "bankers":
		return HalfEven, nil
	}
	return 0, fmt.Errorf("unknown premium rounding %q", s)
}

var monthlyRates = map[entity.PolicyType]decimal.Decimal{
	entity.PolicyTypeLife:     decimal.RequireFromString("0.005"),
	entity.PolicyTypeAuto:     decimal.RequireFromString("0.008"),
	entity.PolicyTypeHealth:   decimal.RequireFromString("0.006"),
	entity.PolicyTypeProperty: decimal.RequireFromString("0.004"),
}

var (
	longTermDiscount = decimal.RequireFromString("0.90")
	annualDiscount   = decimal.RequireFromString("0.95")
	noDiscount       = decimal.NewFromInt(1)
)

// MonthlyRate returns the base rate for t as a fraction of coverage.
func MonthlyRate(t entity.PolicyType) (decimal.Decimal, error) {
	r, ok := monthlyRates[t]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: no rate for policy type %d", entity.ErrValidation, int(t))
	}
	return r, nil
}

// Discount returns the multiplier applied for a term of months:
// 0.90 from 24 months, 0.95 from 12, otherwise 1.
func Discount(months int) decimal.Decimal {
	switch {
	case months >= 24:
		return longTermDiscount
	case months >= 12:
		return annualDiscount
	default:
		return noDiscount
	}
}

type Calculator struct {
	Rounding Rounding
}

// Calculate returns coverage x monthly rate x term discount, rounded to cents.
func (c Calculator) Calculate(coverage decimal.Decimal, t entity.PolicyType, months int) (decimal.Decimal, error) {
	rate, err := MonthlyRate(t)
	if err != nil {
		return decimal.Zero, err
	}
	if !coverage.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: coverage must be positive", entity.ErrValidation)
	}
	if months < 1 {
		return decimal.Zero, fmt.Errorf("%w: duration must be at least one month", entity.ErrValidation)
	}
	p := coverage.Mul(rate).Mul(Discount(months))
	if c.Rounding == HalfEven {
		return p.RoundBank(2), nil
	}
	return p.Round(2), nil
}

// MonthsBetween counts whole calendar months from start to end, the
// inverse of start.AddDate(0, months, 0). It never returns less than 1.
func MonthsBetween(start, end time.Time) int {
	months := (end.Year()-start.Year())*12 + int(end.Month()-start.Month())
	if months > 0 && start.AddDate(0, months, 0).After(end) {
		months--
	}
	if months < 1 {
		return 1
	}
	return months
}
