package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/agrostack/agrauth/core"
	"github.com/agrostack/agrauth/internal/logger"
)

// Redis is the primary Cache backend. Every operation runs under a
// bounded timeout so a wedged connection fails closed instead of
// hanging the caller.
type Redis struct {
	client    *redis.Client
	opTimeout time.Duration
}

// NewRedis parses redisURL, bounds the client timeouts and verifies
// connectivity with a limited number of ping attempts. When the retry
// budget is exhausted it returns an error; the caller decides whether
// to run fallback-only.
func NewRedis(ctx context.Context, redisURL string, retries int, opTimeout time.Duration) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	opts.DialTimeout = opTimeout
	opts.ReadTimeout = opTimeout
	opts.WriteTimeout = opTimeout

	client := redis.NewClient(opts)

	var pingErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				_ = client.Close()
				return nil, ctx.Err()
			case <-time.After(time.Second):
			}
		}
		if pingErr = client.Ping(ctx).Err(); pingErr == nil {
			return &Redis{client: client, opTimeout: opTimeout}, nil
		}
		logger.Log.Warnf("redis ping failed (attempt %d/%d): %v", attempt+1, retries+1, pingErr)
	}

	_ = client.Close()
	return nil, fmt.Errorf("redis unreachable after %d attempts: %w", retries+1, pingErr)
}

func (r *Redis) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.opTimeout)
}

func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	value, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", core.ErrCacheMiss
		}
		return "", fmt.Errorf("%w: %v", core.ErrCacheUnavailable, err)
	}
	return value, nil
}

func (r *Redis) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", core.ErrCacheUnavailable, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%w: %v", core.ErrCacheUnavailable, err)
	}
	return nil
}

func (r *Redis) Increment(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	n, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", core.ErrCacheUnavailable, err)
	}
	if n == 1 && ttl > 0 {
		if err := r.client.Expire(ctx, key, ttl).Err(); err != nil {
			return n, fmt.Errorf("%w: %v", core.ErrCacheUnavailable, err)
		}
	}
	return n, nil
}

func (r *Redis) Flush(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if err := r.client.FlushDB(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", core.ErrCacheUnavailable, err)
	}
	return nil
}

// Client exposes the underlying redis client so main can share the
// connection with the watermill publisher.
func (r *Redis) Client() *redis.Client {
	return r.client
}

// Close closes the redis connection.
func (r *Redis) Close() error {
	return r.client.Close()
}
