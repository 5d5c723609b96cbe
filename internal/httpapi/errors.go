package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"quickDeliver/internal/backend"
	"quickDeliver/internal/logging"
)

func httpStatus(err error) (int, string) {
	switch {
	case errors.Is(err, backend.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, backend.ErrInvalidArgument):
		return http.StatusBadRequest, "invalid_argument"
	case errors.Is(err, backend.ErrPermissionDenied):
		return http.StatusForbidden, "permission_denied"
	case errors.Is(err, backend.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, backend.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// writeError renders a backend error. Internal errors are logged, not echoed.
func writeError(c *gin.Context, err error) {
	status, code := httpStatus(err)
	_ = c.Error(err)
	if status == http.StatusInternalServerError {
		logging.From(c).Error("request failed", "err", err)
		c.AbortWithStatusJSON(status, gin.H{"error": code})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": code, "error_description": err.Error()})
}

func badRequest(c *gin.Context, desc string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "bad_request", "error_description": desc})
}
