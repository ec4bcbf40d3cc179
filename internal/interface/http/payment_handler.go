package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/obakengshepherd/InsureClaim/internal/application"
	"github.com/obakengshepherd/InsureClaim/internal/domain/entity"
	"github.com/obakengshepherd/InsureClaim/pkg/response"
)

type PaymentHandler struct {
	Svc    *application.PaymentService
	Logger *logrus.Logger
}

func NewPaymentHandler(svc *application.PaymentService, logger *logrus.Logger) *PaymentHandler {
	return &PaymentHandler{Svc: svc, Logger: logger}
}

// Record POST /api/payment
func (h *PaymentHandler) Record(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req recordPaymentRequest
	if !bindJSON(c, &req) {
		return
	}
	method, err := entity.ParsePaymentMethod(req.Method)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	pay, err := h.Svc.Record(c.Request.Context(), p, application.RecordPaymentInput{
		PolicyID:  req.PolicyID,
		Amount:    req.Amount,
		Method:    method,
		Reference: req.Reference,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, toPaymentResponse(pay), "payment recorded", nil)
}

// List GET /api/payment
func (h *PaymentHandler) List(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	items, err := h.Svc.List(c.Request.Context(), p)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, mapAll(items, toPaymentResponse), "payments", gin.H{"count": len(items)})
}

// Get GET /api/payment/:id
func (h *PaymentHandler) Get(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "payment")
	if !ok {
		return
	}
	pay, err := h.Svc.Get(c.Request.Context(), p, id)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toPaymentResponse(pay), "payment", nil)
}

// ListByPolicy GET /api/payment/policy/:policyId
func (h *PaymentHandler) ListByPolicy(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	policyID, ok := pathID(c, "policyId", "policy")
	if !ok {
		return
	}
	items, err := h.Svc.ListByPolicy(c.Request.Context(), p, policyID)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, mapAll(items, toPaymentResponse), "payments", gin.H{"count": len(items)})
}

// UpdateStatus PUT /api/payment/:id
func (h *PaymentHandler) UpdateStatus(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "payment")
	if !ok {
		return
	}
	var req updatePaymentRequest
	if !bindJSON(c, &req) {
		return
	}
	status, err := entity.ParsePaymentStatus(req.Status)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	pay, err := h.Svc.UpdateStatus(c.Request.Context(), p, id, application.UpdatePaymentStatusInput{
		Status:    status,
		Reference: req.Reference,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toPaymentResponse(pay), "payment updated", nil)
}

// Statistics GET /api/payment/statistics
func (h *PaymentHandler) Statistics(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	stats, err := h.Svc.Statistics(c.Request.Context(), p)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toPaymentStats(stats), "payment statistics", nil)
}
