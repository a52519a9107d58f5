package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"zgw/pkg/requestcontext"
)

// RequestID assigns every request a correlation id, reusing an inbound
// X-Request-Id header when present.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", requestID)
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestTime captures the current time at the start of the request so all
// operations within it share one "now".
func RequestTime(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AuditToelichting captures the X-Audit-Toelichting header so the audit
// trail engine can record the caller's explanation.
func AuditToelichting(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if note := r.Header.Get("X-Audit-Toelichting"); note != "" {
			ctx = requestcontext.WithAuditToelichting(ctx, note)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
