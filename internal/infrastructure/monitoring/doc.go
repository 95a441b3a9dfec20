/*
Package monitoring provides Prometheus metrics for evalguard.

# Features

- HTTP request metrics (count, latency)
- Validation verdicts by rule category
- Snippet size distribution
- Sandbox dry-run evaluations
- Active rule catalog size

# Usage

	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg)

	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	metrics.RecordValidation(false, "network", len(snippet), elapsed)
*/
package monitoring
