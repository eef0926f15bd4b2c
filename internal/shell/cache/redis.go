package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces short-code entries in Redis.
const keyPrefix = "short_to_orig:"

// =============================================================================
// Redis Cache
// =============================================================================

// RedisCache implements Cache on Redis.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisCache connects to Redis at addr ("host:port"). A zero ttl means
// DefaultTTL.
func NewRedisCache(addr string, ttl time.Duration) (*RedisCache, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return &RedisCache{rdb: rdb, ttl: ttl}, nil
}

// GetOriginal returns the cached original URL for a code.
func (c *RedisCache) GetOriginal(ctx context.Context, code string) (string, bool, error) {
	original, err := c.rdb.Get(ctx, keyPrefix+code).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return original, true, nil
}

// SetOriginal caches the original URL for a code.
func (c *RedisCache) SetOriginal(ctx context.Context, code, original string) error {
	if err := c.rdb.Set(ctx, keyPrefix+code, original, c.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Invalidate drops the cached entry for a code.
func (c *RedisCache) Invalidate(ctx context.Context, code string) error {
	if err := c.rdb.Del(ctx, keyPrefix+code).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Ping checks backend connectivity.
func (c *RedisCache) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Close releases the backend connection.
func (c *RedisCache) Close() error {
	return c.rdb.Close()
}
