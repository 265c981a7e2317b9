package ports

import (
	"context"
	"time"
)

// Blacklist tracks revoked token IDs until their natural expiry. An
// entry never needs to outlive the token itself: once the token
// expires, signature verification rejects it anyway.
type Blacklist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
