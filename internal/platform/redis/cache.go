// Package redis provides the Redis-backed image cache used by the deck
// pipeline. Images are stored as hashes keyed by the hash of their visual
// prompt, so identical scenes are generated once.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/lessondeck/internal/config"
	"github.com/phrazzld/lessondeck/internal/deck"
	"github.com/phrazzld/lessondeck/internal/generation"
	goredis "github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces every cache key.
const KeyPrefix = "lessondeck:image:"

const (
	fieldMIME = "mime"
	fieldData = "data"
)

// ImageCache implements deck.ImageCache on Redis.
type ImageCache struct {
	client goredis.Cmdable
	ttl    time.Duration
	logger *slog.Logger
}

var _ deck.ImageCache = (*ImageCache)(nil)

// NewImageCache wraps an existing client. A zero ttl keeps entries forever.
func NewImageCache(client goredis.Cmdable, ttl time.Duration, log *slog.Logger) *ImageCache {
	if log == nil {
		log = slog.Default()
	}
	return &ImageCache{client: client, ttl: ttl, logger: log.With("component", "image_cache")}
}

// Connect dials Redis from the cache section and verifies it with PING.
// The returned close function releases the connection pool.
func Connect(ctx context.Context, cfg config.CacheConfig, log *slog.Logger) (*ImageCache, func() error, error) {
	if cfg.RedisAddr == "" {
		return nil, nil, errors.New("redis address is empty")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.RedisAddr,
		DB:          cfg.RedisDB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}

	ttl := time.Duration(cfg.TTLMinutes) * time.Minute
	return NewImageCache(rdb, ttl, log), rdb.Close, nil
}

// Key returns the Redis key for a prompt hash.
func Key(promptHash string) string {
	return KeyPrefix + promptHash
}

// Get returns the cached image for key. ok is false on a miss.
func (c *ImageCache) Get(ctx context.Context, key string) (generation.Image, bool, error) {
	vals, err := c.client.HGetAll(ctx, Key(key)).Result()
	if err != nil {
		return generation.Image{}, false, fmt.Errorf("image cache get: %w", err)
	}
	data, ok := vals[fieldData]
	if !ok || data == "" {
		return generation.Image{}, false, nil
	}
	return generation.Image{MIMEType: vals[fieldMIME], Data: []byte(data)}, true, nil
}

// Set stores img under key and refreshes its expiry.
func (c *ImageCache) Set(ctx context.Context, key string, img generation.Image) error {
	k := Key(key)
	_, err := c.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.HSet(ctx, k, fieldMIME, img.MIMEType, fieldData, img.Data)
		if c.ttl > 0 {
			pipe.Expire(ctx, k, c.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("image cache set: %w", err)
	}
	c.logger.DebugContext(ctx, "image cached", "key", k, "bytes", len(img.Data))
	return nil
}
