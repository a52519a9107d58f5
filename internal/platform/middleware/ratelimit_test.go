package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zgw/pkg/requestcontext"
)

func TestMemoryLimiterSlidingWindow(t *testing.T) {
	limiter := NewMemoryLimiter(2, time.Minute)

	first, err := limiter.Allow(t.Context(), "client-a")
	require.NoError(t, err)
	assert.True(t, first.Allowed)
	assert.Equal(t, 1, first.Remaining)

	second, err := limiter.Allow(t.Context(), "client-a")
	require.NoError(t, err)
	assert.True(t, second.Allowed)
	assert.Equal(t, 0, second.Remaining)

	third, err := limiter.Allow(t.Context(), "client-a")
	require.NoError(t, err)
	assert.False(t, third.Allowed)

	// Other keys are counted independently.
	other, err := limiter.Allow(t.Context(), "client-b")
	require.NoError(t, err)
	assert.True(t, other.Allowed)
}

func TestRateLimitMiddleware(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	handler := RateLimit(NewMemoryLimiter(1, time.Minute), logger)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}),
	)

	do := func(clientID string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/zaken", nil)
		if clientID != "" {
			req = req.WithContext(requestcontext.WithClientID(req.Context(), clientID))
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	rec := do("zrc-client")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = do("zrc-client")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "throttled")

	// A different client is not affected by the exhausted window.
	rec = do("brc-client")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
