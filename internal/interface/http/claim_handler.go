package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/obakengshepherd/InsureClaim/internal/application"
	"github.com/obakengshepherd/InsureClaim/internal/domain/entity"
	"github.com/obakengshepherd/InsureClaim/pkg/response"
)

type ClaimHandler struct {
	Svc    *application.ClaimService
	Logger *logrus.Logger
	// MaxUploadBytes caps the multipart body of document uploads.
	MaxUploadBytes int64
}

func NewClaimHandler(svc *application.ClaimService, logger *logrus.Logger, maxUploadBytes int64) *ClaimHandler {
	return &ClaimHandler{Svc: svc, Logger: logger, MaxUploadBytes: maxUploadBytes}
}

// Submit POST /api/claim
func (h *ClaimHandler) Submit(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req submitClaimRequest
	if !bindJSON(c, &req) {
		return
	}
	cl, err := h.Svc.Submit(c.Request.Context(), p, application.SubmitClaimInput{
		PolicyID:     req.PolicyID,
		Description:  req.Description,
		ClaimAmount:  req.ClaimAmount,
		IncidentDate: req.IncidentDate.Time,
		DocumentPath: req.DocumentPath,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, toClaimResponse(cl), "claim submitted", nil)
}

// List GET /api/claim
func (h *ClaimHandler) List(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	items, err := h.Svc.List(c.Request.Context(), p)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, mapAll(items, toClaimResponse), "claims", gin.H{"count": len(items)})
}

// Get GET /api/claim/:id
func (h *ClaimHandler) Get(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "claim")
	if !ok {
		return
	}
	cl, err := h.Svc.Get(c.Request.Context(), p, id)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toClaimResponse(cl), "claim", nil)
}

// ListByPolicy GET /api/claim/policy/:policyId
func (h *ClaimHandler) ListByPolicy(c *gin.Context) {
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
	response.Success(c, http.StatusOK, mapAll(items, toClaimResponse), "claims", gin.H{"count": len(items)})
}

// ListByUser GET /api/claim/user/:userId
func (h *ClaimHandler) ListByUser(c *gin.Context) {
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
	response.Success(c, http.StatusOK, mapAll(items, toClaimResponse), "claims", gin.H{"count": len(items)})
}

// Review PUT /api/claim/:id
func (h *ClaimHandler) Review(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "claim")
	if !ok {
		return
	}
	var req reviewClaimRequest
	if !bindJSON(c, &req) {
		return
	}
	status, err := entity.ParseClaimStatus(req.Status)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	cl, err := h.Svc.Review(c.Request.Context(), p, id, application.ReviewClaimInput{
		Status:         status,
		ApprovedAmount: req.ApprovedAmount,
		ReviewNotes:    req.ReviewNotes,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toClaimResponse(cl), "claim updated", nil)
}

// Statistics GET /api/claim/statistics
func (h *ClaimHandler) Statistics(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	stats, err := h.Svc.Statistics(c.Request.Context(), p)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toClaimStats(stats), "claim statistics", nil)
}

// Search GET /api/claim/search?q=&size=
func (h *ClaimHandler) Search(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	size, _ := strconv.Atoi(c.Query("size"))
	hits, err := h.Svc.Search(c.Request.Context(), p, c.Query("q"), size)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, mapAll(hits, toSearchHit), "claim search", gin.H{"count": len(hits)})
}

// UploadDocument POST /api/claim/:id/document (multipart field "file").
// The content type is sniffed from the payload, not taken from the client.
func (h *ClaimHandler) UploadDocument(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "claim")
	if !ok {
		return
	}
	if h.MaxUploadBytes > 0 {
		// Leave headroom for the multipart envelope; the store enforces the exact limit.
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes+64<<10)
	}
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			response.Error[any](c, http.StatusRequestEntityTooLarge, "document too large", nil)
			return
		}
		response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"file": "is required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	defer f.Close()

	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	contentType, _, _ := strings.Cut(mtype.String(), ";")

	cl, err := h.Svc.AttachDocument(c.Request.Context(), p, id, application.DocumentUpload{
		Filename:    fh.Filename,
		ContentType: contentType,
		Body:        f,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toClaimResponse(cl), "document attached", nil)
}
