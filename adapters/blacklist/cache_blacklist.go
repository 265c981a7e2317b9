// Package blacklist implements token revocation on top of the cache
// store, so multi-instance deployments share it through redis while
// single instances fall back to process memory.
package blacklist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agrostack/agrauth/core"
	"github.com/agrostack/agrauth/ports"
)

const keyPrefix = "revoked:"

// CacheBlacklist stores revoked token IDs with the token's remaining
// lifetime as TTL, so entries forget themselves exactly when signature
// verification starts rejecting the token anyway.
type CacheBlacklist struct {
	cache ports.Cache
}

func New(cache ports.Cache) ports.Blacklist {
	return &CacheBlacklist{cache: cache}
}

func (b *CacheBlacklist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		// Already expired, nothing to remember.
		return nil
	}
	if err := b.cache.Set(ctx, keyPrefix+tokenID, "1", ttl); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (b *CacheBlacklist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	_, err := b.cache.Get(ctx, keyPrefix+tokenID)
	if err != nil {
		if errors.Is(err, core.ErrCacheMiss) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check revocation: %w", err)
	}
	return true, nil
}
