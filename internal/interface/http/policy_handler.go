package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/obakengshepherd/InsureClaim/internal/application"
	"github.com/obakengshepherd/InsureClaim/internal/domain/entity"
	"github.com/obakengshepherd/InsureClaim/pkg/response"
)

type PolicyHandler struct {
	Svc    *application.PolicyService
	Logger *logrus.Logger
}

func NewPolicyHandler(svc *application.PolicyService, logger *logrus.Logger) *PolicyHandler {
	return &PolicyHandler{Svc: svc, Logger: logger}
}

// Create POST /api/policy
func (h *PolicyHandler) Create(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req createPolicyRequest
	if !bindJSON(c, &req) {
		return
	}
	typ, err := entity.ParsePolicyType(req.Type)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	pol, err := h.Svc.Create(c.Request.Context(), p, application.CreatePolicyInput{
		UserID:         req.UserID,
		Type:           typ,
		CoverageAmount: req.CoverageAmount,
		StartDate:      req.StartDate.Time,
		DurationMonths: req.DurationMonths,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, toPolicyResponse(pol), "policy created", nil)
}

// List GET /api/policy
func (h *PolicyHandler) List(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	items, err := h.Svc.List(c.Request.Context(), p)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, mapAll(items, toPolicyResponse), "policies", gin.H{"count": len(items)})
}

// Get GET /api/policy/:id
func (h *PolicyHandler) Get(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "policy")
	if !ok {
		return
	}
	pol, err := h.Svc.Get(c.Request.Context(), p, id)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toPolicyResponse(pol), "policy", nil)
}

// ListByUser GET /api/policy/user/:userId
func (h *PolicyHandler) ListByUser(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	userID, ok := pathID(c, "userId", "user")
	if !ok {
		return
	}
	items, err := h.Svc.ListByUser(c.Request.Context(), p, userID)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, mapAll(items, toPolicyResponse), "policies", gin.H{"count": len(items)})
}

// Update PUT /api/policy/:id
func (h *PolicyHandler) Update(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "policy")
	if !ok {
		return
	}
	var req updatePolicyRequest
	if !bindJSON(c, &req) {
		return
	}
	var in application.UpdatePolicyInput
	if req.CoverageAmount.Valid {
		in.CoverageAmount = &req.CoverageAmount.Decimal
	}
	if req.Status != nil {
		st, err := entity.ParsePolicyStatus(*req.Status)
		if err != nil {
			writeError(c, h.Logger, err)
			return
		}
		in.Status = &st
	}
	if req.EndDate != nil && !req.EndDate.IsZero() {
		end := req.EndDate.Time
		in.EndDate = &end
	}
	pol, err := h.Svc.Update(c.Request.Context(), p, id, in)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toPolicyResponse(pol), "policy updated", nil)
}

// Cancel DELETE /api/policy/:id marks the policy Cancelled; rows are never removed.
func (h *PolicyHandler) Cancel(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "policy")
	if !ok {
		return
	}
	if err := h.Svc.Cancel(c.Request.Context(), p, id); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.NoContent(c)
}
