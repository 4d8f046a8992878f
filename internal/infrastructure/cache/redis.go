package cache

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/gomodule/redigo/redis"
	"github.com/shelfmatch/backend/internal/domain"
)

const (
	redisMaxIdle        = 8
	redisMaxActive      = 64
	redisIdleTimeout    = 4 * time.Minute
	redisConnectTimeout = 2 * time.Second
	redisIOTimeout      = 2 * time.Second
)

// RedisCache stores values in Redis through a connection pool.
type RedisCache struct {
	pool *redis.Pool
}

// NewRedisCache creates a pooled Redis cache for a redis:// or rediss:// URL.
// No connection is opened until the first command.
func NewRedisCache(rawURL string) (*RedisCache, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("invalid redis url scheme %q", u.Scheme)
	}

	pool := &redis.Pool{
		MaxIdle:     redisMaxIdle,
		MaxActive:   redisMaxActive,
		IdleTimeout: redisIdleTimeout,
		DialContext: func(ctx context.Context) (redis.Conn, error) {
			return redis.DialURLContext(ctx, rawURL,
				redis.DialConnectTimeout(redisConnectTimeout),
				redis.DialReadTimeout(redisIOTimeout),
				redis.DialWriteTimeout(redisIOTimeout),
			)
		},
		TestOnBorrow: func(c redis.Conn, t time.Time) error {
			if time.Since(t) < time.Minute {
				return nil
			}
			_, err := c.Do("PING")
			return err
		},
	}

	return &RedisCache{pool: pool}, nil
}

func (c *RedisCache) do(ctx context.Context, cmd string, args ...interface{}) (interface{}, error) {
	conn, err := c.pool.GetContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCacheUnavailable, err)
	}
	defer conn.Close()

	reply, err := redis.DoContext(conn, ctx, cmd, args...)
	if err != nil && !errors.Is(err, redis.ErrNil) {
		if _, ok := err.(redis.Error); !ok {
			return nil, fmt.Errorf("%w: %v", domain.ErrCacheUnavailable, err)
		}
	}
	return reply, err
}

// Get retrieves a value from Redis
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := redis.Bytes(c.do(ctx, "GET", key))
	if errors.Is(err, redis.ErrNil) {
		return nil, domain.ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Set stores a value with a millisecond-precision TTL. A non-positive ttl stores without expiry.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := []interface{}{key, value}
	if ttl > 0 {
		args = append(args, "PX", ttl.Milliseconds())
	}
	_, err := c.do(ctx, "SET", args...)
	return err
}

// Delete removes a value from Redis
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	_, err := c.do(ctx, "DEL", key)
	return err
}

// Exists checks if a key exists in Redis
func (c *RedisCache) Exists(ctx context.Context, key string) (bool, error) {
	return redis.Bool(c.do(ctx, "EXISTS", key))
}

// Ping checks that Redis answers.
func (c *RedisCache) Ping(ctx context.Context) error {
	_, err := c.do(ctx, "PING")
	return err
}

// Close releases every pooled connection.
func (c *RedisCache) Close() error {
	return c.pool.Close()
}
