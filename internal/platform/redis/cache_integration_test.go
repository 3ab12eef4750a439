//go:build integration

package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lessondeck/internal/config"
	"github.com/phrazzld/lessondeck/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageCacheRoundTrip(t *testing.T) {
	addr := os.Getenv("LESSONDECK_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("LESSONDECK_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()

	cache, closeFn, err := Connect(ctx, config.CacheConfig{RedisAddr: addr, TTLMinutes: 1}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeFn() })

	key := uuid.NewString()
	_, ok, err := cache.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	img := generation.Image{MIMEType: "image/png", Data: []byte{0x89, 'P', 'N', 'G', 0}}
	require.NoError(t, cache.Set(ctx, key, img))

	got, ok, err := cache.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, img, got)

	ttl, err := cache.client.TTL(ctx, Key(key)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 30*time.Second)
}
