package core

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrTokenExpired      = errors.New("token has expired")
	ErrTokenRevoked      = errors.New("token has been revoked")
	ErrInvalidToken      = errors.New("invalid token")
	ErrInvalidAudience   = errors.New("invalid token audience")
	ErrInvalidIdentifier = errors.New("invalid identifier")
	ErrCacheMiss         = errors.New("cache: key not found")
	ErrCacheUnavailable  = errors.New("cache: backend unavailable")
	ErrSigningConfig     = errors.New("token signing misconfigured")
)

// RateLimitError reports a resend-cooldown violation together with the
// remaining wait.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter.Round(time.Second))
}

// IsRateLimited extracts a RateLimitError from an error chain.
func IsRateLimited(err error) (*RateLimitError, bool) {
	var rle *RateLimitError
	if errors.As(err, &rle) {
		return rle, true
	}
	return nil, false
}
