package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/obakengshepherd/InsureClaim/internal/application"
	"github.com/obakengshepherd/InsureClaim/internal/domain/entity"
	"github.com/obakengshepherd/InsureClaim/pkg/response"
	"github.com/obakengshepherd/InsureClaim/pkg/validation"
)

// Resource payloads use camelCase keys, the shape the dashboard consumes.

// Money renders a decimal as a JSON number with two fractional digits.
// Percentages use it as well.
type Money decimal.Decimal

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(m).StringFixed(2)), nil
}

func money(d decimal.Decimal) Money { return Money(d) }

func nullMoney(d decimal.NullDecimal) *Money {
	if !d.Valid {
		return nil
	}
	m := Money(d.Decimal)
	return &m
}

// Date accepts either a calendar date or an RFC 3339 timestamp.
type Date struct{ time.Time }

var dateLayouts = []string{"2006-01-02", time.RFC3339, time.RFC3339Nano, "2006-01-02T15:04:05"}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("invalid date %q", s)
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		details := validation.ToDetails(err)
		if strings.Contains(err.Error(), "invalid date") {
			details = map[string]string{"payload": err.Error()}
		}
		response.Error[any](c, http.StatusBadRequest, "invalid payload", details)
		return false
	}
	return true
}

// requests

type registerRequest struct {
	FullName    string `json:"fullName" binding:"required,min=2,max=100,notblank"`
	Email       string `json:"email" binding:"required,email,max=255"`
	Password    string `json:"password" binding:"required,strongpwd"`
	PhoneNumber string `json:"phoneNumber" binding:"required,max=20"`
	Role        int    `json:"role" binding:"omitempty,min=1,max=3"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type createPolicyRequest struct {
	UserID         string          `json:"userId" binding:"omitempty,uuid"`
	Type           int             `json:"type" binding:"required,min=1,max=4"`
	CoverageAmount decimal.Decimal `json:"coverageAmount" binding:"required,gte=1000,lte=100000000,cents"`
	StartDate      *Date           `json:"startDate" binding:"required"`
	DurationMonths int             `json:"durationMonths" binding:"required,min=1,max=60"`
}

type updatePolicyRequest struct {
	CoverageAmount decimal.NullDecimal `json:"coverageAmount" binding:"omitempty,gte=1000,lte=100000000,cents"`
	Status         *int                `json:"status" binding:"omitempty,min=1,max=4"`
	EndDate        *Date               `json:"endDate"`
}

type submitClaimRequest struct {
	PolicyID     string          `json:"policyId" binding:"required,uuid"`
	Description  string          `json:"description" binding:"required,min=10,max=1000"`
	ClaimAmount  decimal.Decimal `json:"claimAmount" binding:"required,gte=100,lte=100000000,cents"`
	IncidentDate *Date           `json:"incidentDate" binding:"required"`
	DocumentPath *string         `json:"documentPath" binding:"omitempty,max=500"`
}

type reviewClaimRequest struct {
	Status         int                 `json:"status" binding:"required,min=1,max=5"`
	ApprovedAmount decimal.NullDecimal `json:"approvedAmount" binding:"omitempty,gte=0,lte=100000000,cents"`
	ReviewNotes    string              `json:"reviewNotes" binding:"max=1000"`
}

type recordPaymentRequest struct {
	PolicyID  string          `json:"policyId" binding:"required,uuid"`
	Amount    decimal.Decimal `json:"amount" binding:"required,gte=1,lte=10000000,cents"`
	Method    int             `json:"method" binding:"required,min=1,max=5"`
	Reference string          `json:"reference" binding:"max=200"`
}

type updatePaymentRequest struct {
	Status    int    `json:"status" binding:"required,min=1,max=4"`
	Reference string `json:"reference" binding:"max=200"`
}

// responses

type authResponse struct {
	UserID          string          `json:"userId"`
	FullName        string          `json:"fullName"`
	Email           string          `json:"email"`
	Role            entity.UserRole `json:"role"`
	Token           string          `json:"token"`
	TokenExpiration time.Time       `json:"tokenExpiration"`
}

func toAuthResponse(r *application.AuthResult) authResponse {
	return authResponse{
		UserID:          r.User.ID,
		FullName:        r.User.FullName,
		Email:           r.User.Email,
		Role:            r.User.Role,
		Token:           r.Token,
		TokenExpiration: r.ExpiresAt,
	}
}

type userResponse struct {
	ID          string          `json:"id"`
	FullName    string          `json:"fullName"`
	Email       string          `json:"email"`
	PhoneNumber string          `json:"phoneNumber"`
	Role        entity.UserRole `json:"role"`
	IsActive    bool            `json:"isActive"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func toUserResponse(u *entity.User) userResponse {
	return userResponse{
		ID:          u.ID,
		FullName:    u.FullName,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		Role:        u.Role,
		IsActive:    u.IsActive,
		CreatedAt:   u.CreatedAt,
	}
}

type policyResponse struct {
	ID             string              `json:"id"`
	PolicyNumber   string              `json:"policyNumber"`
	UserID         string              `json:"userId"`
	Type           entity.PolicyType   `json:"type"`
	CoverageAmount Money               `json:"coverageAmount"`
	PremiumAmount  Money               `json:"premiumAmount"`
	StartDate      time.Time           `json:"startDate"`
	EndDate        time.Time           `json:"endDate"`
	Status         entity.PolicyStatus `json:"status"`
	CreatedAt      time.Time           `json:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt"`
}

func toPolicyResponse(p *entity.Policy) policyResponse {
	return policyResponse{
		ID:             p.ID,
		PolicyNumber:   p.PolicyNumber,
		UserID:         p.UserID,
		Type:           p.Type,
		CoverageAmount: money(p.CoverageAmount),
		PremiumAmount:  money(p.PremiumAmount),
		StartDate:      p.StartDate,
		EndDate:        p.EndDate,
		Status:         p.Status,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

type claimResponse struct {
	ID             string             `json:"id"`
	ClaimNumber    string             `json:"claimNumber"`
	PolicyID       string             `json:"policyId"`
	PolicyNumber   string             `json:"policyNumber"`
	UserID         string             `json:"userId"`
	Description    string             `json:"description"`
	ClaimAmount    Money              `json:"claimAmount"`
	ApprovedAmount *Money             `json:"approvedAmount"`
	Status         entity.ClaimStatus `json:"status"`
	IncidentDate   time.Time          `json:"incidentDate"`
	SubmittedDate  time.Time          `json:"submittedDate"`
	ReviewedDate   *time.Time         `json:"reviewedDate"`
	DocumentPath   *string            `json:"documentPath"`
	ReviewNotes    *string            `json:"reviewNotes"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`
}

func toClaimResponse(c *entity.Claim) claimResponse {
	return claimResponse{
		ID:             c.ID,
		ClaimNumber:    c.ClaimNumber,
		PolicyID:       c.PolicyID,
		PolicyNumber:   c.PolicyNumber,
		UserID:         c.UserID,
		Description:    c.Description,
		ClaimAmount:    money(c.ClaimAmount),
		ApprovedAmount: nullMoney(c.ApprovedAmount),
		Status:         c.Status,
		IncidentDate:   c.IncidentDate,
		SubmittedDate:  c.SubmittedDate,
		ReviewedDate:   c.ReviewedDate,
		DocumentPath:   c.DocumentPath,
		ReviewNotes:    c.ReviewNotes,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

type paymentResponse struct {
	ID            string               `json:"id"`
	TransactionID string               `json:"transactionId"`
	PolicyID      string               `json:"policyId"`
	PolicyNumber  string               `json:"policyNumber"`
	Amount        Money                `json:"amount"`
	Method        entity.PaymentMethod `json:"method"`
	Status        entity.PaymentStatus `json:"status"`
	PaymentDate   time.Time            `json:"paymentDate"`
	ProcessedDate *time.Time           `json:"processedDate"`
	Reference     *string              `json:"reference"`
	CreatedAt     time.Time            `json:"createdAt"`
}

func toPaymentResponse(p *entity.Payment) paymentResponse {
	return paymentResponse{
		ID:            p.ID,
		TransactionID: p.TransactionID,
		PolicyID:      p.PolicyID,
		PolicyNumber:  p.PolicyNumber,
		Amount:        money(p.Amount),
		Method:        p.Method,
		Status:        p.Status,
		PaymentDate:   p.PaymentDate,
		ProcessedDate: p.ProcessedDate,
		Reference:     p.Reference,
		CreatedAt:     p.CreatedAt,
	}
}

func mapAll[E, R any](items []E, fn func(*E) R) []R {
	out := make([]R, 0, len(items))
	for i := range items {
		out = append(out, fn(&items[i]))
	}
	return out
}

type claimStatsResponse struct {
	TotalClaims int64            `json:"totalClaims"`
	ByStatus    map[string]int64 `json:"byStatus"`
	Amounts     struct {
		TotalClaimed  Money `json:"totalClaimed"`
		TotalApproved Money `json:"totalApproved"`
		ApprovalRate  Money `json:"approvalRate"`
	} `json:"amounts"`
}

func toClaimStats(s *application.ClaimStatistics) claimStatsResponse {
	var out claimStatsResponse
	out.TotalClaims = s.Total
	out.ByStatus = make(map[string]int64, len(s.ByStatus))
	for status, n := range s.ByStatus {
		out.ByStatus[lowerFirst(status.String())] = n
	}
	out.Amounts.TotalClaimed = money(s.TotalClaimed)
	out.Amounts.TotalApproved = money(s.TotalApproved)
	out.Amounts.ApprovalRate = money(s.ApprovalRate)
	return out
}

type paymentStatsResponse struct {
	TotalPayments int64            `json:"totalPayments"`
	ByStatus      map[string]int64 `json:"byStatus"`
	Amounts       struct {
		TotalReceived Money `json:"totalReceived"`
		TotalRefunded Money `json:"totalRefunded"`
		NetRevenue    Money `json:"netRevenue"`
		SuccessRate   Money `json:"successRate"`
	} `json:"amounts"`
	ByMethod map[string]Money `json:"byMethod"`
}

func toPaymentStats(s *application.PaymentStatistics) paymentStatsResponse {
	var out paymentStatsResponse
	out.TotalPayments = s.Total
	out.ByStatus = make(map[string]int64, len(s.ByStatus))
	for status, n := range s.ByStatus {
		out.ByStatus[lowerFirst(status.String())] = n
	}
	out.ByMethod = make(map[string]Money, len(s.ByMethod))
	for m, amount := range s.ByMethod {
		out.ByMethod[lowerFirst(m.String())] = money(amount)
	}
	out.Amounts.TotalReceived = money(s.TotalReceived)
	out.Amounts.TotalRefunded = money(s.TotalRefunded)
	out.Amounts.NetRevenue = money(s.NetRevenue)
	out.Amounts.SuccessRate = money(s.SuccessRate)
	return out
}

type searchHitResponse struct {
	ID           string  `json:"id"`
	ClaimNumber  string  `json:"claimNumber"`
	PolicyNumber string  `json:"policyNumber"`
	Description  string  `json:"description"`
	Status       string  `json:"status"`
	ClaimAmount  Money   `json:"claimAmount"`
	Score        float64 `json:"score"`
}

func toSearchHit(h *application.ClaimSearchHit) searchHitResponse {
	return searchHitResponse{
		ID:           h.ID,
		ClaimNumber:  h.ClaimNumber,
		PolicyNumber: h.PolicyNumber,
		Description:  h.Description,
		Status:       h.Status,
		ClaimAmount:  money(h.ClaimAmount),
		Score:        h.Score,
	}
}

func lowerFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 {
		return s
	}
	return string(unicode.ToLower(r)) + s[n:]
}
