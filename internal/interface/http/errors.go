package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/obakengshepherd/InsureClaim/internal/application"
	"github.com/obakengshepherd/InsureClaim/internal/domain/access"
	"github.com/obakengshepherd/InsureClaim/internal/domain/entity"
	"github.com/obakengshepherd/InsureClaim/internal/interface/middleware"
	"github.com/obakengshepherd/InsureClaim/pkg/response"
)

// statusFor maps the domain error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, application.ErrFeatureDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, entity.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, entity.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, entity.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, entity.ErrInvalidState), errors.Is(err, entity.ErrValidation):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// writeError renders err in the response envelope. Server-side failures are
// logged and answered with a generic message.
func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.WithError(err).WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"route":      c.FullPath(),
			"status":     status,
		}).Error("request failed")
		msg := "internal server error"
		switch status {
		case http.StatusServiceUnavailable:
			msg = "feature not available"
		case http.StatusGatewayTimeout:
			msg = "request timed out"
		}
		response.Error[any](c, status, msg, nil)
		return
	}
	response.Error[any](c, status, err.Error(), nil)
}

func principal(c *gin.Context) (access.Principal, bool) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		response.Error[any](c, http.StatusUnauthorized, "unauthorized", nil)
	}
	return p, ok
}

// pathID reads a UUID path parameter.
func pathID(c *gin.Context, name, what string) (string, bool) {
	id := c.Param(name)
	if _, err := uuid.Parse(id); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid "+what+" id", nil)
		return "", false
	}
	return id, true
}
