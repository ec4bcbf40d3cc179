package application_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/obakengshepherd/InsureClaim/internal/application"
	"github.com/obakengshepherd/InsureClaim/internal/domain/entity"
)

func TestSummarizeClaims_Empty(t *testing.T) {
	s := application.SummarizeClaims(nil)
	assert.Zero(t, s.Total)
	assert.True(t, s.ApprovalRate.IsZero())
	assert.Len(t, s.ByStatus, len(entity.AllClaimStatuses))
}

func TestSummarizeClaims_RoundsRate(t *testing.T) {
	s := application.SummarizeClaims([]entity.ClaimTotal{
		{Status: entity.ClaimApproved, Count: 1, Claimed: decimal.NewFromInt(100), Approved: decimal.NewFromInt(80)},
		{Status: entity.ClaimSubmitted, Count: 2, Claimed: decimal.NewFromInt(300)},
	})
	assert.EqualValues(t, 3, s.Total)
	assert.Equal(t, "33.33", s.ApprovalRate.StringFixed(2))
	assert.Equal(t, "400.00", s.TotalClaimed.StringFixed(2))
	assert.Equal(t, "80.00", s.TotalApproved.StringFixed(2))
}

func TestSummarizePayments(t *testing.T) {
	s := application.SummarizePayments([]entity.PaymentTotal{
		{Status: entity.PaymentCompleted, Method: entity.PaymentCash, Count: 2, Amount: decimal.NewFromInt(200)},
		{Status: entity.PaymentCompleted, Method: entity.PaymentMobilePayment, Count: 1, Amount: decimal.RequireFromString("50.50")},
		{Status: entity.PaymentPending, Method: entity.PaymentCash, Count: 1, Amount: decimal.NewFromInt(999)},
		{Status: entity.PaymentRefunded, Method: entity.PaymentCash, Count: 1, Amount: decimal.NewFromInt(100)},
		{Status: entity.PaymentFailed, Method: entity.PaymentDebitCard, Count: 2, Amount: decimal.NewFromInt(40)},
	})
	assert.EqualValues(t, 7, s.Total)
	assert.Equal(t, "250.50", s.TotalReceived.StringFixed(2))
	assert.Equal(t, "100.00", s.TotalRefunded.StringFixed(2))
	assert.Equal(t, "150.50", s.NetRevenue.StringFixed(2))
	assert.Equal(t, "42.86", s.SuccessRate.StringFixed(2))
	assert.Equal(t, "200.00", s.ByMethod[entity.PaymentCash].StringFixed(2))
	assert.True(t, s.ByMethod[entity.PaymentDebitCard].IsZero())
	assert.EqualValues(t, 2, s.ByStatus[entity.PaymentFailed])
}
