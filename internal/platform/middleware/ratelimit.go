package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	platformredis "zgw/internal/platform/redis"
	"zgw/pkg/requestcontext"
)

// LimitResult reports the outcome of a single rate limit check.
type LimitResult struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Limiter decides whether a caller identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (LimitResult, error)
}

// MemoryLimiter is a sliding-window limiter for single-process deployments.
type MemoryLimiter struct {
	limit  int
	window time.Duration

	mu      sync.Mutex
	windows map[string][]time.Time
}

// NewMemoryLimiter allows limit requests per key per window.
func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		limit:   limit,
		window:  window,
		windows: make(map[string][]time.Time),
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (LimitResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-l.window)

	kept := l.windows[key][:0]
	for _, ts := range l.windows[key] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= l.limit {
		l.windows[key] = kept
		return LimitResult{
			Allowed:   false,
			Limit:     l.limit,
			Remaining: 0,
			ResetAt:   kept[0].Add(l.window),
		}, nil
	}

	kept = append(kept, now)
	l.windows[key] = kept
	return LimitResult{
		Allowed:   true,
		Limit:     l.limit,
		Remaining: l.limit - len(kept),
		ResetAt:   kept[0].Add(l.window),
	}, nil
}

// RedisLimiter is a fixed-window limiter shared across replicas.
type RedisLimiter struct {
	client *platformredis.Client
	limit  int
	window time.Duration
}

// NewRedisLimiter allows limit requests per key per window, counted in Redis.
func NewRedisLimiter(client *platformredis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, limit: limit, window: window}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (LimitResult, error) {
	bucket := "zgw:ratelimit:" + key + ":" + strconv.FormatInt(time.Now().Unix()/int64(l.window.Seconds()), 10)

	var incr *redis.IntCmd
	_, err := l.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, bucket)
		pipe.Expire(ctx, bucket, l.window)
		return nil
	})
	if err != nil {
		return LimitResult{}, err
	}

	count := int(incr.Val())
	remaining := l.limit - count
	if remaining < 0 {
		remaining = 0
	}
	resetAt := time.Now().Truncate(l.window).Add(l.window)
	return LimitResult{
		Allowed:   count <= l.limit,
		Limit:     l.limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}, nil
}

// RateLimit applies a per-caller request limit. Authenticated callers are
// keyed by client ID, anonymous callers by remote address. Limiter failures
// fail open so a Redis outage does not take the API down with it.
func RateLimit(limiter Limiter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			key := requestcontext.ClientID(ctx)
			if key == "" {
				if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
					key = host
				} else {
					key = r.RemoteAddr
				}
			}

			result, err := limiter.Allow(ctx, key)
			if err != nil {
				logger.Error("rate limit check failed", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

			if !result.Allowed {
				retryAfter := int(time.Until(result.ResetAt).Seconds())
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				w.Header().Set("Content-Type", "application/problem+json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]any{
					"code":   "throttled",
					"title":  "Too many requests",
					"status": http.StatusTooManyRequests,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
