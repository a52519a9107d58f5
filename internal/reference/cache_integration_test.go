//go:build integration

package reference

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zgw/internal/platform/config"
	platformredis "zgw/internal/platform/redis"
	"zgw/pkg/testutil/containers"
)

func TestRedisCacheRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	url := containers.StartRedis(t)
	client, err := platformredis.New(config.RedisConfig{
		URL:          url,
		PoolSize:     2,
		MinIdleConns: 1,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	cache := NewRedisCache(client, slog.New(slog.DiscardHandler))

	const typeURL = "https://catalogus.example.nl/api/v1/zaaktypen/0a1eb858-8e54-4ed1-92f8-6ef4b7a3a1d2"
	body := []byte(`{"url":"` + typeURL + `","concept":false}`)

	_, ok := cache.Get(t.Context(), typeURL)
	assert.False(t, ok)

	cache.Set(t.Context(), typeURL, body)

	got, ok := cache.Get(t.Context(), typeURL)
	require.True(t, ok)
	assert.Equal(t, body, got)
}
