package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/agrostack/agrauth/core"
	"github.com/agrostack/agrauth/internal/logger"
	"github.com/agrostack/agrauth/ports"
)

// Failover serves from a primary backend and transparently degrades to
// an in-process fallback when the primary errors. Writes always go to
// the fallback too, so a later primary outage does not lose state
// written during this process's lifetime. This is not cross-process
// durability: the fallback dies with the process.
type Failover struct {
	primary  ports.Cache // nil means fallback-only mode
	fallback ports.Cache
	warnOnce sync.Once
}

// NewFailover composes a primary and a fallback cache. Passing a nil
// primary puts the store in fallback-only mode from the start.
func NewFailover(primary, fallback ports.Cache) *Failover {
	if primary == nil {
		logger.Log.Warn("cache: no primary backend, running on in-process fallback only")
	}
	return &Failover{primary: primary, fallback: fallback}
}

func (f *Failover) degraded(err error) {
	f.warnOnce.Do(func() {
		logger.Log.Warnf("cache: primary backend failing, degrading to in-process fallback: %v", err)
	})
}

func (f *Failover) Get(ctx context.Context, key string) (string, error) {
	if f.primary == nil {
		return f.fallback.Get(ctx, key)
	}

	value, err := f.primary.Get(ctx, key)
	if err == nil || errors.Is(err, core.ErrCacheMiss) {
		return value, err
	}
	f.degraded(err)
	return f.fallback.Get(ctx, key)
}

func (f *Failover) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	// Write-through: the fallback copy is what survives a primary outage.
	if err := f.fallback.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	if f.primary == nil {
		return nil
	}
	if err := f.primary.Set(ctx, key, value, ttl); err != nil {
		f.degraded(err)
	}
	return nil
}

func (f *Failover) Delete(ctx context.Context, key string) error {
	if err := f.fallback.Delete(ctx, key); err != nil {
		return err
	}
	if f.primary == nil {
		return nil
	}
	if err := f.primary.Delete(ctx, key); err != nil {
		f.degraded(err)
	}
	return nil
}

func (f *Failover) Increment(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	if f.primary == nil {
		return f.fallback.Increment(ctx, key, ttl)
	}

	n, err := f.primary.Increment(ctx, key, ttl)
	if err != nil {
		f.degraded(err)
		return f.fallback.Increment(ctx, key, ttl)
	}
	// Keep the fallback counter in step so a mid-window outage does not
	// reset the attempt count.
	_, _ = f.fallback.Increment(ctx, key, ttl)
	return n, nil
}

func (f *Failover) Flush(ctx context.Context) error {
	if err := f.fallback.Flush(ctx); err != nil {
		return err
	}
	if f.primary == nil {
		return nil
	}
	if err := f.primary.Flush(ctx); err != nil {
		f.degraded(err)
	}
	return nil
}
