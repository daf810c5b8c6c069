package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	Del(context.Context, ...string) *redis.IntCmd
}

// RedisListCache keeps serialized list responses in Redis for a fixed TTL.
type RedisListCache struct {
	store cmdable
	raw   *redis.Client
	ttl   time.Duration
}

// New connects to Redis at rawURL and verifies the connection.
func New(ctx context.Context, rawURL string, ttl time.Duration) (*RedisListCache, error) {
	opts, err := optionsFromURL(rawURL)
	if err != nil {
		return nil, err
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisListCache{store: raw, raw: raw, ttl: ttl}, nil
}

func optionsFromURL(rawURL string) (*redis.Options, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return nil, errors.New("redis url is required")
	}
	opts, err := redis.ParseURL(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = 2 * time.Second
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = time.Second
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = time.Second
	}
	return opts, nil
}

// Get returns the cached value. A missing key is reported as ok=false with no error.
func (c *RedisListCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if c == nil || c.store == nil {
		return nil, false, errors.New("redis client not initialized")
	}
	value, err := c.store.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// Set stores value under key with the cache TTL.
func (c *RedisListCache) Set(ctx context.Context, key string, value []byte) error {
	if c == nil || c.store == nil {
		return errors.New("redis client not initialized")
	}
	return c.store.Set(ctx, key, value, c.ttl).Err()
}

// Delete removes key.
func (c *RedisListCache) Delete(ctx context.Context, key string) error {
	if c == nil || c.store == nil {
		return errors.New("redis client not initialized")
	}
	return c.store.Del(ctx, key).Err()
}

// Ping checks connectivity.
func (c *RedisListCache) Ping(ctx context.Context) error {
	if c == nil || c.store == nil {
		return errors.New("redis client not initialized")
	}
	return c.store.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (c *RedisListCache) Close() error {
	if c == nil || c.raw == nil {
		return nil
	}
	return c.raw.Close()
}
