package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(handlers...)
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"correlation_id": GetCorrelationID(c)})
	})
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	return r
}

func serve(r http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSecurityHeaders(t *testing.T) {
	w := serve(newRouter(SecurityHeaders()), http.MethodGet, "/ping", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.Equal(t, "no-referrer", w.Header().Get("Referrer-Policy"))
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"), "HSTS only in release mode")
}

func TestCorrelationID(t *testing.T) {
	r := newRouter(CorrelationID())

	t.Run("generated", func(t *testing.T) {
		w := serve(r, http.MethodGet, "/ping", nil)
		id := w.Header().Get(CorrelationIDHeader)
		_, err := uuid.Parse(id)
		require.NoError(t, err)
		assert.Contains(t, w.Body.String(), id)
	})

	t.Run("propagated", func(t *testing.T) {
		id := uuid.New().String()
		w := serve(r, http.MethodGet, "/ping", map[string]string{CorrelationIDHeader: id})
		assert.Equal(t, id, w.Header().Get(CorrelationIDHeader))
	})

	t.Run("malformed is replaced", func(t *testing.T) {
		w := serve(r, http.MethodGet, "/ping", map[string]string{CorrelationIDHeader: "<script>"})
		assert.NotEqual(t, "<script>", w.Header().Get(CorrelationIDHeader))
	})
}

func TestCORS(t *testing.T) {
	t.Run("allow list", func(t *testing.T) {
		r := newRouter(CORS([]string{"https://reading-room.example"}))

		w := serve(r, http.MethodGet, "/ping", map[string]string{"Origin": "https://reading-room.example"})
		assert.Equal(t, "https://reading-room.example", w.Header().Get("Access-Control-Allow-Origin"))

		w = serve(r, http.MethodGet, "/ping", map[string]string{"Origin": "https://elsewhere.example"})
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("wildcard and preflight", func(t *testing.T) {
		r := newRouter(CORS([]string{"*"}))
		w := serve(r, http.MethodOptions, "/ping", map[string]string{"Origin": "https://any.example"})
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRequestLogger(t *testing.T) {
	logger, hook := test.NewNullLogger()
	r := newRouter(CorrelationID(), RequestLogger(logger))

	serve(r, http.MethodGet, "/ping", nil)
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "Request completed", entry.Message)
	assert.Equal(t, "/ping", entry.Data["path"])
	assert.Equal(t, http.StatusOK, entry.Data["status"])
	assert.NotEmpty(t, entry.Data["correlation_id"])

	serve(r, http.MethodGet, "/missing", nil)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestRecovery(t *testing.T) {
	logger, hook := test.NewNullLogger()
	r := newRouter(CorrelationID(), Recovery(logger))

	w := serve(r, http.MethodGet, "/panic", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_SERVER_ERROR")
	assert.Equal(t, "Recovered from panic", hook.LastEntry().Message)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	r := newRouter(CorrelationID(), rl.Middleware())

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/ping", nil).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/ping", nil).Code)

	w := serve(r, http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "RATE_LIMIT_EXCEEDED")
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// buckets are per client
	assert.True(t, rl.Allow("10.0.0.9"))
}
