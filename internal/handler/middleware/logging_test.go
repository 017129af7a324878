//go:build unit

package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"bookstore-choreography/internal/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLog(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	cfg := config.NewTestConfig().Log
	cfg.Level = "info"
	l := newLogger(cfg, &buf)

	engine := gin.New()
	engine.Use(l.RequestLog())
	var seenID string
	engine.POST("/payments/:orderId", func(c *gin.Context) {
		seenID = GetRequestID(c)
		c.Status(http.StatusServiceUnavailable)
	})

	req := httptest.NewRequest(http.MethodPost, "/payments/17", nil)
	req.Header.Set(HeaderIdempotencyKey, "order-17")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.NotEmpty(t, seenID)
	assert.Equal(t, seenID, rec.Header().Get(HeaderRequestID))
	line := buf.String()
	assert.Contains(t, line, "level=ERROR")
	assert.Contains(t, line, "route=/payments/:orderId")
	assert.Contains(t, line, "status=503")
	assert.Contains(t, line, "idempotency_key=order-17")
	assert.Contains(t, line, "request_id="+seenID)
}

func TestParseLevel(t *testing.T) {
	testCases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		" error ": slog.LevelError,
		"verbose": slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range testCases {
		assert.Equal(t, want, parseLevel(in), "level %q", in)
	}
}
