package api

import (
	"errors"
	"net/http"

	"sms-ledger/internal/ingest"
	"sms-ledger/internal/logging"
	"sms-ledger/internal/parsererror"

	"github.com/gin-gonic/gin"
)

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	var stateErr *ingest.ErrInvalidState
	switch {
	case parsererror.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, parsererror.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, parsererror.ErrAlreadyExists):
		return http.StatusConflict
	case errors.As(err, &stateErr):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"error": msg}. Internal errors are logged and hidden from the client.
func (h *Handler) respondError(c *gin.Context, err error, msg string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.WithError(err).Error(msg, logging.F("path", c.FullPath()))
		c.JSON(status, gin.H{"error": "Internal Server Error"})
		return
	}
	if msg == "" {
		msg = err.Error()
	}
	c.JSON(status, gin.H{"error": msg, "detail": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
