package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the process-wide Prometheus metrics. Subsystems with richer
// instrumentation (notifications, mirror sync) register their own collectors.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New creates and registers all shared Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "zgw_http_requests_total",
			Help: "Total HTTP requests by component, method and status.",
		}, []string{"component", "method", "status"}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "zgw_http_request_duration_seconds",
			Help:    "HTTP request latency by component.",
			Buckets: prometheus.DefBuckets,
		}, []string{"component"}),
	}
}
