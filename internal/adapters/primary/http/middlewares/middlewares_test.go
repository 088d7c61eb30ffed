package middlewares

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(buf *bytes.Buffer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	router := gin.New()
	router.Use(RequestID(), Recovery(log), RequestLogger(log, "/health"))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.POST("/webhook/:secret", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/boom", func(*gin.Context) { panic("boom") })
	return router
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	router := newRouter(&bytes.Buffer{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "bad id\twith spaces")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("a", maxRequestIDLength+1))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)
}

func TestRequestLogger_RouteTemplateAndSkip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	router := newRouter(&buf)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Empty(t, buf.String())

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/webhook/s3cr3t", nil))
	require.NotEmpty(t, buf.String())
	assert.NotContains(t, buf.String(), "s3cr3t")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "request completed", entry["msg"])
	assert.Equal(t, "/webhook/:secret", entry["route"])
	assert.Equal(t, "INFO", entry["level"])
	assert.EqualValues(t, http.StatusOK, entry["status"])
	assert.NotEmpty(t, entry["request_id"])
}

func TestRecovery(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	router := newRouter(&buf)

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error","request_id":"req-1"}`, rec.Body.String())
	assert.Contains(t, buf.String(), "http handler panicked")
	assert.Contains(t, buf.String(), `"request_id":"req-1"`)
}

func TestRecovery_AbortHandlerIsRepanicked(t *testing.T) {
	t.Parallel()

	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	router := gin.New()
	router.Use(Recovery(slog.New(slog.NewJSONHandler(&buf, nil))))
	router.GET("/abort", func(*gin.Context) { panic(http.ErrAbortHandler) })

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/abort", nil))
	})
	assert.Empty(t, buf.String())
}
