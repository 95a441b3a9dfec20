package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/evalguard/internal/shared/id"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})
	return r
}

func get(r http.Handler, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	r := newRouter(RequestID())

	t.Run("generates", func(t *testing.T) {
		w := get(r, nil)
		require.Equal(t, http.StatusOK, w.Code)

		reqID := w.Header().Get(RequestIDHeader)
		assert.True(t, id.IsValidRequestID(reqID))
		assert.Equal(t, reqID, w.Body.String())
	})

	t.Run("keeps valid incoming id", func(t *testing.T) {
		incoming := id.NewRequestID().String()
		w := get(r, http.Header{RequestIDHeader: {incoming}})
		assert.Equal(t, incoming, w.Header().Get(RequestIDHeader))
		assert.Equal(t, incoming, w.Body.String())
	})

	t.Run("replaces malformed incoming id", func(t *testing.T) {
		w := get(r, http.Header{RequestIDHeader: {"<script>"}})
		reqID := w.Header().Get(RequestIDHeader)
		assert.NotEqual(t, "<script>", reqID)
		assert.True(t, id.IsValidRequestID(reqID))
	})
}

func TestGetRequestIDWithoutMiddleware(t *testing.T) {
	w := get(newRouter(), nil)
	assert.Equal(t, "", w.Body.String())
}

func TestRateLimit(t *testing.T) {
	r := newRouter(RateLimit(RateLimitConfig{RequestsPerSecond: 1, Burst: 2}))

	assert.Equal(t, http.StatusOK, get(r, nil).Code)
	assert.Equal(t, http.StatusOK, get(r, nil).Code)

	w := get(r, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "rate limit exceeded")
}

func TestRateLimitPerClient(t *testing.T) {
	r := newRouter(RateLimit(RateLimitConfig{RequestsPerSecond: 1, Burst: 1}))

	serve := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, serve("10.0.0.1:1000"))
	assert.Equal(t, http.StatusTooManyRequests, serve("10.0.0.1:1000"))
	assert.Equal(t, http.StatusOK, serve("10.0.0.2:1000"))
}

func TestLimiterSetSweepsIdleClients(t *testing.T) {
	set := newLimiterSet(RateLimitConfig{RequestsPerSecond: 1, Burst: 1, IdleTTL: time.Minute})
	now := time.Unix(1_700_000_000, 0)
	set.now = func() time.Time { return now }

	assert.True(t, set.allow("a"))
	now = now.Add(30 * time.Second)
	assert.True(t, set.allow("b"))
	assert.Equal(t, 2, set.size())

	now = now.Add(45 * time.Second)
	assert.True(t, set.allow("c"))
	// a idle for 75s is dropped, b idle for 45s survives
	assert.Equal(t, 2, set.size())
}

func TestGlobalRateLimit(t *testing.T) {
	r := newRouter(GlobalRateLimit(RateLimitConfig{RequestsPerSecond: 1, Burst: 1}))

	assert.Equal(t, http.StatusOK, get(r, nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, get(r, nil).Code)
}

func TestCORS(t *testing.T) {
	r := newRouter(CORS(DefaultCORSConfig()))

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
}
