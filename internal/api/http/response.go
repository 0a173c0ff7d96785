package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/RouterPanel/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/RouterPanel/backend/internal/providers/filesystem"
	"github.com/GriffinCanCode/RouterPanel/backend/internal/providers/system"
)

// statusFor maps a provider error to an HTTP status code.
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge

	case errors.Is(err, filesystem.ErrPermissionDenied),
		errors.Is(err, system.ErrNotAllowed):
		return http.StatusForbidden

	case errors.Is(err, filesystem.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, filesystem.ErrAlreadyExists),
		errors.Is(err, filesystem.ErrNotADirectory),
		errors.Is(err, filesystem.ErrNotAFile),
		errors.Is(err, filesystem.ErrNotDecodable),
		errors.Is(err, filesystem.ErrInvalidArchive),
		errors.Is(err, filesystem.ErrEmptySelection),
		errors.Is(err, filesystem.ErrInvalidArgument),
		errors.Is(err, system.ErrInvalidArgument):
		return http.StatusBadRequest

	case errors.Is(err, filesystem.ErrTimeout),
		errors.Is(err, system.ErrCommandTimeout):
		return http.StatusGatewayTimeout

	case errors.Is(err, system.ErrUnavailable):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the failure envelope. Server side failures are logged
// at Error, client mistakes at Debug.
func (h *Handlers) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	logger := logging.FromContext(c.Request.Context(), h.logger)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", zap.String("route", c.FullPath()), zap.Int("status", status), zap.Error(err))
	} else {
		logger.Debug("request rejected", zap.String("route", c.FullPath()), zap.Int("status", status), zap.Error(err))
	}

	_ = c.Error(err)
	c.JSON(status, gin.H{
		"success": false,
		"error":   err.Error(),
	})
}

// badRequest reports a malformed request body.
func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   "Invalid request: " + err.Error(),
	})
}

// respondOK writes the success envelope merged with payload.
func respondOK(c *gin.Context, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}
