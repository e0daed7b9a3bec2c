package transform

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rantsmith/backend/internal/logging"
)

// RedisCache is a ResultCache shared across service instances.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache verifies connectivity and returns a redis-backed cache.
func NewRedisCache(ctx context.Context, client *redis.Client) (*RedisCache, error) {
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisCache{client: client}, nil
}

// Get returns the cached value when present. Redis errors are logged and
// treated as misses.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			logging.FromContext(ctx).Warn("redis cache get", "key", key, "error", err)
		}
		return nil, false
	}
	return raw, true
}

// Set stores the value with the provided TTL. Failures are logged only.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		logging.FromContext(ctx).Warn("redis cache set", "key", key, "error", err)
	}
}
