package ports

import (
	"context"

	"github.com/agrostack/agrauth/core"
)

// Delivery hands a generated code to the recipient over the channel
// inferred from the identifier. Implementations wrap SMS or email
// providers; the core never inspects delivery outcomes beyond the error.
type Delivery interface {
	SendCode(ctx context.Context, channel core.DeliveryChannel, identifier, code string, otpType core.OTPType) error
}
