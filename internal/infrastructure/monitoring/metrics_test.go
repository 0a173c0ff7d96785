package monitoring

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsIsolated(t *testing.T) {
	// Two collectors must not collide on registration.
	a := NewMetrics()
	b := NewMetrics()

	a.RecordFileOp("delete", "success", time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(a.FileOps.WithLabelValues("delete", "success")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.FileOps.WithLabelValues("delete", "success")))
}

func TestRecordPaste(t *testing.T) {
	m := NewMetrics()
	m.RecordPaste("copy", 3, 1)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.PasteItems.WithLabelValues("copy", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PasteItems.WithLabelValues("copy", "failed")))
}

func TestUploadBytesIgnoresNonPositive(t *testing.T) {
	m := NewMetrics()
	m.AddUploadBytes(10)
	m.AddUploadBytes(-1)
	m.AddUploadBytes(0)

	assert.Equal(t, 10.0, testutil.ToFloat64(m.UploadBytes))
}

func TestTimerStatus(t *testing.T) {
	m := NewMetrics()
	NewTimer(m, "rename").Stop(nil)
	NewTimer(m, "rename").Stop(errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.FileOps.WithLabelValues("rename", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FileOps.WithLabelValues("rename", "error")))
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()

	r := gin.New()
	r.Use(Middleware(m))
	r.GET("/api/files", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	for _, path := range []string{"/api/files", "/api/files", "/missing"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/api/files", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "unmatched", "404")))

	snap := m.Snapshot()
	assert.EqualValues(t, 3, snap.TotalRequests)
	assert.EqualValues(t, 1, snap.TotalErrors)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "routerpanel_http_requests_total")
	assert.Contains(t, w.Body.String(), "routerpanel_uptime_seconds")
}
