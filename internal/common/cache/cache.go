// internal/common/cache/cache.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"recruitment-workers/internal/common/metrics"

	"github.com/redis/go-redis/v9"
)

var (
	ErrNotFound   = errors.New("key not found in cache")
	ErrInvalidKey = errors.New("invalid cache key")
)

const DefaultTTL = 5 * time.Minute

// Cache stores JSON-encoded values in Redis. A nil *Cache behaves as an
// always-missing cache so callers can run without Redis.
type Cache struct {
	client     *redis.Client
	defaultTTL time.Duration
}

func New(client *redis.Client, defaultTTL time.Duration) *Cache {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	return &Cache{client: client, defaultTTL: defaultTTL}
}

// GetJSON decodes the value stored at key into dest.
func (c *Cache) GetJSON(ctx context.Context, key string, dest interface{}) error {
	if key == "" {
		return ErrInvalidKey
	}
	if c == nil || c.client == nil {
		return ErrNotFound
	}

	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.ProfileCacheRequests.WithLabelValues(metrics.CacheMiss).Inc()
		return ErrNotFound
	}
	if err != nil {
		metrics.ProfileCacheRequests.WithLabelValues(metrics.CacheError).Inc()
		return fmt.Errorf("cache get %s: %w", key, err)
	}

	if err := json.Unmarshal(val, dest); err != nil {
		metrics.ProfileCacheRequests.WithLabelValues(metrics.CacheError).Inc()
		return fmt.Errorf("cache decode %s: %w", key, err)
	}
	metrics.ProfileCacheRequests.WithLabelValues(metrics.CacheHit).Inc()
	return nil
}

// SetJSON stores value at key. A zero ttl uses the cache default.
func (c *Cache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if key == "" {
		return ErrInvalidKey
	}
	if c == nil || c.client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if c == nil || c.client == nil || len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}
