package reference

import (
	"context"
	"log/slog"
	"sync"
	"time"

	platformredis "zgw/internal/platform/redis"
)

const cacheTTL = 5 * time.Minute

// RedisCache caches resolved remote bodies in Redis. Misses and Redis errors
// are both treated as cache misses; the resolver falls back to fetching.
type RedisCache struct {
	client *platformredis.Client
	logger *slog.Logger
}

func NewRedisCache(client *platformredis.Client, logger *slog.Logger) *RedisCache {
	return &RedisCache{client: client, logger: logger}
}

func cacheKey(url string) string { return "reference:body:" + url }

func (c *RedisCache) Get(ctx context.Context, url string) ([]byte, bool) {
	body, err := c.client.Get(ctx, cacheKey(url)).Bytes()
	if err != nil {
		return nil, false
	}
	return body, true
}

func (c *RedisCache) Set(ctx context.Context, url string, body []byte) {
	if err := c.client.Set(ctx, cacheKey(url), body, cacheTTL).Err(); err != nil {
		c.logger.Warn("reference cache write failed", "url", url, "error", err)
	}
}

// MemoryCache is a process-local cache used when Redis is not configured.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	body      []byte
	expiresAt time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: map[string]memoryEntry{}, now: time.Now}
}

func (c *MemoryCache) Get(_ context.Context, url string) ([]byte, bool) {
	c.mu.RLock()
	entry, ok := c.entries[url]
	c.mu.RUnlock()
	if !ok || c.now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.body, true
}

func (c *MemoryCache) Set(_ context.Context, url string, body []byte) {
	c.mu.Lock()
	c.entries[url] = memoryEntry{body: body, expiresAt: c.now().Add(cacheTTL)}
	c.mu.Unlock()
}
