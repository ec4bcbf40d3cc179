package premium_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obakengshepherd/InsureClaim/internal/domain/entity"
	"github.com/obakengshepherd/InsureClaim/internal/domain/premium"
)

func TestCalculate(t *testing.T) {
	calc := premium.Calculator{}
	tests := []struct {
		name     string
		coverage string
		typ      entity.PolicyType
		months   int
		want     string
	}{
		{"auto annual", "500000", entity.PolicyTypeAuto, 12, "3800"},
		{"life short term", "100000", entity.PolicyTypeLife, 6, "500"},
		{"health long term", "250000", entity.PolicyTypeHealth, 24, "1350"},
		{"property 23 months", "80000", entity.PolicyTypeProperty, 23, "304"},
		{"rounds to cents", "1234.57", entity.PolicyTypeAuto, 1, "9.88"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := calc.Calculate(decimal.RequireFromString(tt.coverage), tt.typ, tt.months)
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s want %s", got, tt.want)
		})
	}
}

func TestCalculate_Rounding(t *testing.T) {
	// 1 x 0.005 lands exactly on half a cent.
	coverage := decimal.RequireFromString("1")

	away, err := premium.Calculator{Rounding: premium.HalfAwayFromZero}.Calculate(coverage, entity.PolicyTypeLife, 1)
	require.NoError(t, err)
	assert.Equal(t, "0.01", away.StringFixed(2))

	even, err := premium.Calculator{Rounding: premium.HalfEven}.Calculate(coverage, entity.PolicyTypeLife, 1)
	require.NoError(t, err)
	assert.Equal(t, "0.00", even.StringFixed(2))
}

func TestCalculate_NeverExceedsCoverageAndDiscountMonotone(t *testing.T) {
	calc := premium.Calculator{}
	types := []entity.PolicyType{entity.PolicyTypeLife, entity.PolicyTypeAuto, entity.PolicyTypeHealth, entity.PolicyTypeProperty}
	for _, cov := range []string{"1000", "45678.91", "100000000"} {
		c := decimal.RequireFromString(cov)
		for _, typ := range types {
			prev := decimal.NewFromInt(1 << 40)
			for months := 1; months <= 60; months++ {
				p, err := calc.Calculate(c, typ, months)
				require.NoError(t, err)
				assert.True(t, p.LessThanOrEqual(c))
				assert.True(t, p.LessThanOrEqual(prev), "premium grew at %d months", months)
				prev = p
			}
		}
	}
}

func TestCalculate_RejectsBadInput(t *testing.T) {
	calc := premium.Calculator{}
	_, err := calc.Calculate(decimal.NewFromInt(1000), entity.PolicyType(9), 12)
	assert.ErrorIs(t, err, entity.ErrValidation)

	_, err = calc.Calculate(decimal.Zero, entity.PolicyTypeAuto, 12)
	assert.ErrorIs(t, err, entity.ErrValidation)

	_, err = calc.Calculate(decimal.NewFromInt(1000), entity.PolicyTypeAuto, 0)
	assert.ErrorIs(t, err, entity.ErrValidation)
}

func TestParseRounding(t *testing.T) {
	r, err := premium.ParseRounding("")
	require.NoError(t, err)
	assert.Equal(t, premium.HalfAwayFromZero, r)

	r, err = premium.ParseRounding("HALF_EVEN")
	require.NoError(t, err)
	assert.Equal(t, premium.HalfEven, r)

	_, err = premium.ParseRounding("ceil")
	assert.Error(t, err)
}

func TestMonthsBetween(t *testing.T) {
	start := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	for _, months := range []int{1, 6, 11, 12, 13, 24, 60} {
		assert.Equal(t, months, premium.MonthsBetween(start, start.AddDate(0, months, 0)), "months=%d", months)
	}
	assert.Equal(t, 1, premium.MonthsBetween(start, start))
	assert.Equal(t, 11, premium.MonthsBetween(
		time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
	))
}
