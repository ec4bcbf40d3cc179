package application

import (
	"github.com/shopspring/decimal"

	"github.com/obakengshepherd/InsureClaim/internal/domain/entity"
)

var hundred = decimal.NewFromInt(100)

type ClaimStatistics struct {
	Total         int64
	ByStatus      map[entity.ClaimStatus]int64
	TotalClaimed  decimal.Decimal
	TotalApproved decimal.Decimal
	// ApprovalRate is the percentage of claims in Approved status.
	ApprovalRate decimal.Decimal
}

// SummarizeClaims folds grouped totals into dashboard figures.
func SummarizeClaims(rows []entity.ClaimTotal) ClaimStatistics {
	out := ClaimStatistics{
		ByStatus:      make(map[entity.ClaimStatus]int64, len(entity.AllClaimStatuses)),
		TotalClaimed:  decimal.Zero,
		TotalApproved: decimal.Zero,
	}
	for _, s := range entity.AllClaimStatuses {
		out.ByStatus[s] = 0
	}
	for _, r := range rows {
		out.Total += r.Count
		out.ByStatus[r.Status] += r.Count
		out.TotalClaimed = out.TotalClaimed.Add(r.Claimed)
		out.TotalApproved = out.TotalApproved.Add(r.Approved)
	}
	out.ApprovalRate = percentage(out.ByStatus[entity.ClaimApproved], out.Total)
	return out
}

type PaymentStatistics struct {
	Total         int64
	ByStatus      map[entity.PaymentStatus]int64
	TotalReceived decimal.Decimal
	TotalRefunded decimal.Decimal
	NetRevenue    decimal.Decimal
	// SuccessRate is the percentage of payments in Completed status.
	SuccessRate decimal.Decimal
	// ByMethod sums completed payments per method.
	ByMethod map[entity.PaymentMethod]decimal.Decimal
}

func SummarizePayments(rows []entity.PaymentTotal) PaymentStatistics {
	out := PaymentStatistics{
		ByStatus:      make(map[entity.PaymentStatus]int64, len(entity.AllPaymentStatuses)),
		ByMethod:      make(map[entity.PaymentMethod]decimal.Decimal, len(entity.AllPaymentMethods)),
		TotalReceived: decimal.Zero,
		TotalRefunded: decimal.Zero,
	}
	for _, s := range entity.AllPaymentStatuses {
		out.ByStatus[s] = 0
	}
	for _, m := range entity.AllPaymentMethods {
		out.ByMethod[m] = decimal.Zero
	}
	for _, r := range rows {
		out.Total += r.Count
		out.ByStatus[r.Status] += r.Count
		switch r.Status {
		case entity.PaymentCompleted:
			out.TotalReceived = out.TotalReceived.Add(r.Amount)
			out.ByMethod[r.Method] = out.ByMethod[r.Method].Add(r.Amount)
		case entity.PaymentRefunded:
			out.TotalRefunded = out.TotalRefunded.Add(r.Amount)
		}
	}
	out.NetRevenue = out.TotalReceived.Sub(out.TotalRefunded)
	out.SuccessRate = percentage(out.ByStatus[entity.PaymentCompleted], out.Total)
	return out
}

// percentage returns part/total*100 rounded to two places, 0 when total is 0.
func percentage(part, total int64) decimal.Decimal {
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(part).Mul(hundred).DivRound(decimal.NewFromInt(total), 2)
}
