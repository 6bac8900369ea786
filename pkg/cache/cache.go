// Package cache stores predicted labels keyed by model and normalized text.
package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zpam/sentimento/pkg/config"
)

// Cache maps (model, normalized text) to a predicted label. Implementations
// must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, modelID, normalized string) (label string, ok bool, err error)
	Set(ctx context.Context, modelID, normalized, label string) error
	Ping(ctx context.Context) error
	Close() error
}

// New returns a Redis cache when enabled, otherwise a no-op cache
func New(cfg config.CacheConfig) (Cache, error) {
	if !cfg.Enabled {
		return Noop{}, nil
	}
	return NewRedisCache(cfg)
}

// Noop never stores anything
type Noop struct{}

func (Noop) Get(context.Context, string, string) (string, bool, error) { return "", false, nil }
func (Noop) Set(context.Context, string, string, string) error { return nil }
func (Noop) Ping(context.Context) error { return nil }
func (Noop) Close() error { return nil }

// RedisCache keeps labels in Redis under <prefix>:<model>:<sha1(text)>
type RedisCache struct {
	client  *redis.Client
	prefix  string
	ttl     time.Duration
	timeout time.Duration
}

// NewRedisCache connects to Redis and checks the connection
func NewRedisCache(cfg config.CacheConfig) (*RedisCache, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}
	opt.DB = cfg.DatabaseNum

	ttl, err := cfg.TTLDuration()
	if err != nil {
		return nil, fmt.Errorf("invalid cache ttl: %w", err)
	}

	c := &RedisCache{
		client:  redis.NewClient(opt),
		prefix:  cfg.KeyPrefix,
		ttl:     ttl,
		timeout: cfg.Timeout(),
	}

	if err := c.Ping(context.Background()); err != nil {
		c.client.Close()
		return nil, fmt.Errorf("Redis connection failed: %w", err)
	}

	return c, nil
}

// Key builds the Redis key for a normalized text
func Key(prefix, modelID, normalized string) string {
	sum := sha1.Sum([]byte(normalized))
	return prefix + ":" + modelID + ":" + hex.EncodeToString(sum[:])
}

// Get looks up a label. A missing key is not an error.
func (c *RedisCache) Get(ctx context.Context, modelID, normalized string) (string, bool, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	label, err := c.client.Get(ctx, Key(c.prefix, modelID, normalized)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return label, true, nil
}

// Set stores a label with the configured TTL
func (c *RedisCache) Set(ctx context.Context, modelID, normalized, label string) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	return c.client.Set(ctx, Key(c.prefix, modelID, normalized), label, c.ttl).Err()
}

// Ping checks the connection
func (c *RedisCache) Ping(ctx context.Context) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	return c.client.Ping(ctx).Err()
}

// Purge removes every key stored for modelID and returns how many were deleted
func (c *RedisCache) Purge(ctx context.Context, modelID string) (int, error) {
	pattern := c.prefix + ":" + modelID + ":*"

	var deleted int
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, iter.Err()
}

// Close releases the connection pool
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}
