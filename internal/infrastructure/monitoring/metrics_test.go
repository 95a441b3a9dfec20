package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordValidation(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordValidation(true, "", 20, time.Millisecond)
	m.RecordValidation(false, "network", 30, time.Millisecond)
	m.RecordValidation(false, "network", 30, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Validations.WithLabelValues("safe", "none")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Validations.WithLabelValues("blocked", "network")))
}

func TestRecordEvaluationAndRules(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordEvaluation("ok", 10*time.Millisecond)
	m.SetRulesLoaded("default", 20)
	m.SetBreakerState(2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Evaluations.WithLabelValues("ok")))
	assert.Equal(t, 20.0, testutil.ToFloat64(m.RulesLoaded.WithLabelValues("default")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.BreakerState))
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics(prometheus.NewRegistry())

	router := gin.New()
	router.Use(Middleware(m))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/health", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "unmatched", "404")))
}

func TestTimer(t *testing.T) {
	timer := NewTimer()
	time.Sleep(time.Millisecond)
	assert.GreaterOrEqual(t, timer.Elapsed(), time.Millisecond)
}
