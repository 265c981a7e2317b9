package ports

import (
	"context"
	"time"
)

// Cache is a key-value store with per-key TTL. Values are opaque strings;
// callers encode at the boundary so every payload crosses it in exactly
// one serialized shape.
type Cache interface {
	// Get returns the value for key, or core.ErrCacheMiss if absent or
	// expired.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key for ttl. A zero ttl means no expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Increment atomically adds one to the counter at key, setting ttl
	// when the counter is created, and returns the new value.
	Increment(ctx context.Context, key string, ttl time.Duration) (int64, error)

	// Flush removes every key.
	Flush(ctx context.Context) error
}
