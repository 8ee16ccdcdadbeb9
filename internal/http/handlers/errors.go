package handlers

import (
	"errors"
	"log"
	"net/http"

	"campusbus/internal/domain"
	"campusbus/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// ErrorResponse standardizes error payloads.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string, details any) {
	if code == "" {
		code = http.StatusText(status)
	}
	resp := ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	}
	reqID := middleware.GetRequestID(c)
	if reqID != "" {
		c.JSON(status, gin.H{
			"error":      resp.Error,
			"code":       resp.Code,
			"details":    resp.Details,
			"request_id": reqID,
			"message":    message,
		})
		return
	}
	c.JSON(status, resp)
}

// RespondDomainError maps domain errors to HTTP responses. Internal errors
// are logged and answered with a generic message.
func RespondDomainError(c *gin.Context, err error) {
	var ve domain.ValidationError
	switch {
	case errors.As(err, &ve):
		var details any
		if ve.Field != "" {
			details = gin.H{"field": ve.Field}
		}
		respondError(c, http.StatusBadRequest, "validation_error", err.Error(), details)
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case domain.IsInvalidStateTransition(err):
		respondError(c, http.StatusBadRequest, "invalid_state_transition", err.Error(), nil)
	case domain.IsUnknownDevice(err):
		respondError(c, http.StatusBadRequest, "unknown_or_inactive_device", err.Error(), nil)
	case domain.IsUnauthorized(err):
		respondError(c, http.StatusUnauthorized, "unauthorized", err.Error(), nil)
	case domain.IsConflict(err):
		respondError(c, http.StatusConflict, "conflict", err.Error(), nil)
	default:
		cause := err
		if u := errors.Unwrap(err); u != nil {
			cause = u
		}
		log.Printf("[ERROR] request_id=%s path=%s err=%v", middleware.GetRequestID(c), c.Request.URL.Path, cause)
		respondError(c, http.StatusInternalServerError, "internal_error", "internal server error", nil)
	}
}
