package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Validation metrics
	Validations        *prometheus.CounterVec
	ValidationDuration prometheus.Histogram
	SnippetSize        prometheus.Histogram

	// Sandbox metrics
	Evaluations        *prometheus.CounterVec
	EvaluationDuration prometheus.Histogram
	BreakerState       prometheus.Gauge

	// Rule catalog
	RulesLoaded *prometheus.GaugeVec
}

// NewMetrics registers the collectors on reg. Pass prometheus.NewRegistry()
// in tests to avoid duplicate registration on the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "evalguard_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "evalguard_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"method", "path"},
		),

		Validations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "evalguard_validations_total",
				Help: "Total number of snippet validations by verdict and rule category",
			},
			[]string{"verdict", "category"},
		),
		ValidationDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "evalguard_validation_duration_seconds",
				Help:    "Snippet validation duration in seconds",
				Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05},
			},
		),
		SnippetSize: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "evalguard_snippet_size_bytes",
				Help:    "Size of validated snippets in bytes",
				Buckets: []float64{16, 64, 256, 1024, 4096, 16384, 65536},
			},
		),

		Evaluations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "evalguard_sandbox_evaluations_total",
				Help: "Total number of sandbox dry-run evaluations",
			},
			[]string{"status"},
		),
		EvaluationDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "evalguard_sandbox_evaluation_duration_seconds",
				Help:    "Sandbox evaluation duration in seconds",
				Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 2.5, 5},
			},
		),

		BreakerState: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "evalguard_sandbox_breaker_state",
				Help: "Sandbox circuit breaker state (0 closed, 1 half-open, 2 open)",
			},
		),

		RulesLoaded: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "evalguard_rules_loaded",
				Help: "Number of rules in the active catalog by source",
			},
			[]string{"source"},
		),
	}
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordValidation records one verdict. category is empty for safe results.
func (m *Metrics) RecordValidation(safe bool, category string, size int, duration time.Duration) {
	verdict := "blocked"
	if safe {
		verdict = "safe"
	}
	if category == "" {
		category = "none"
	}
	m.Validations.WithLabelValues(verdict, category).Inc()
	m.ValidationDuration.Observe(duration.Seconds())
	m.SnippetSize.Observe(float64(size))
}

// RecordEvaluation records a sandbox run
func (m *Metrics) RecordEvaluation(status string, duration time.Duration) {
	m.Evaluations.WithLabelValues(status).Inc()
	m.EvaluationDuration.Observe(duration.Seconds())
}

// SetBreakerState records the sandbox breaker state
func (m *Metrics) SetBreakerState(state int) {
	m.BreakerState.Set(float64(state))
}

// SetRulesLoaded sets the catalog size for a source ("default", "file")
func (m *Metrics) SetRulesLoaded(source string, count int) {
	m.RulesLoaded.WithLabelValues(source).Set(float64(count))
}
