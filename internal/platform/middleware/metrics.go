package middleware

import (
	"net/http"
	"strconv"
	"time"

	"zgw/internal/platform/metrics"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Metrics records request counts and latency for the given component.
func Metrics(m *metrics.Metrics, component string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			m.RequestsTotal.WithLabelValues(component, r.Method, strconv.Itoa(rec.status)).Inc()
			m.RequestDuration.WithLabelValues(component).Observe(time.Since(start).Seconds())
		})
	}
}
