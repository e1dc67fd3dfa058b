package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"checkout-service/internal/domain"
)

// TokenCache stores provider credentials in Redis. Every call is bounded by
// timeout and any Redis failure is reported as domain.ErrCacheUnavailable.
type TokenCache struct {
	client  redis.Cmdable
	prefix  string
	timeout time.Duration
}

func NewTokenCache(client redis.Cmdable, prefix string, timeout time.Duration) *TokenCache {
	return &TokenCache{client: client, prefix: prefix, timeout: timeout}
}

func (c *TokenCache) key(k string) string {
	if c.prefix == "" {
		return k
	}
	return c.prefix + ":" + k
}

func (c *TokenCache) Get(ctx context.Context, key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	val, err := c.client.Get(ctx, c.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: get %s: %v", domain.ErrCacheUnavailable, key, err)
	}
	return val, val != "", nil
}

func (c *TokenCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.client.Set(ctx, c.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: set %s: %v", domain.ErrCacheUnavailable, key, err)
	}
	return nil
}
