package ports

import (
	"context"

	"github.com/agrostack/agrauth/core"
)

// EventPublisher notifies other instances about auth state changes.
type EventPublisher interface {
	PublishCodeVerified(ctx context.Context, otpType core.OTPType, identifier string) error
	PublishLogout(ctx context.Context, subject string, tokenID string) error
}
