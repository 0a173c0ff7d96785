package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/RouterPanel/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/RouterPanel/backend/internal/providers/filesystem"
	"github.com/GriffinCanCode/RouterPanel/backend/internal/providers/system"
)

const (
	defaultOperationTimeout = 10 * time.Minute
	defaultMaxUploadBytes   = 100 << 20
)

// Options configures the handler set.
type Options struct {
	// OperationTimeout bounds mutating file operations.
	OperationTimeout time.Duration
	// MaxUploadBytes caps the size of an upload request body.
	MaxUploadBytes int64
	Logger         *zap.Logger
}

// Handlers contains all HTTP handlers
type Handlers struct {
	files   *filesystem.Manager
	system  *system.Provider
	metrics *monitoring.Metrics
	logger  *zap.Logger

	opTimeout time.Duration
	maxUpload int64
}

// NewHandlers creates a new handler set. sys may be nil, in which case the
// system routes are not registered.
func NewHandlers(files *filesystem.Manager, sys *system.Provider, metrics *monitoring.Metrics, opts Options) *Handlers {
	if opts.OperationTimeout <= 0 {
		opts.OperationTimeout = defaultOperationTimeout
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUploadBytes
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		files:     files,
		system:    sys,
		metrics:   metrics,
		logger:    logger.Named("http"),
		opTimeout: opts.OperationTimeout,
		maxUpload: opts.MaxUploadBytes,
	}
}

// operationContext detaches a mutation from the client connection: a
// disconnect must not abort a half done paste. The operation timeout still
// applies.
func (h *Handlers) operationContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(c.Request.Context()), h.opTimeout)
}

// track starts a metrics timer for a file operation.
func (h *Handlers) track(operation string) func(error) {
	if h.metrics == nil {
		return func(error) {}
	}
	return monitoring.NewTimer(h.metrics, operation).Stop
}

// Root handles the landing route.
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "Router Panel",
		"version": "1.0.0",
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	clip := h.files.Clipboard()
	body := gin.H{
		"status": "healthy",
		"files": gin.H{
			"root":            h.files.Root(),
			"clipboard_items": len(clip.Items),
			"clipboard_op":    clip.Operation,
		},
		"system": gin.H{"enabled": h.system != nil},
	}
	if h.metrics != nil {
		body["requests"] = h.metrics.Snapshot()
	}
	c.JSON(http.StatusOK, body)
}
