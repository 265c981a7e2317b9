package core

import (
	"strings"
	"time"
)

// OTPType identifies the purpose of a one-time code. Types prefixed with
// "phone_" are delivered over SMS and use the shorter phone expiry.
type OTPType string

const (
	OTPTypeLogin             OTPType = "login"
	OTPTypeRegister          OTPType = "register"
	OTPTypeResetPassword     OTPType = "reset_password"
	OTPTypeEmailVerification OTPType = "email_verification"
	OTPTypePhoneVerification OTPType = "phone_verification"
	OTPTypePhoneLogin        OTPType = "phone_login"
	OTPTypePhoneUpdate       OTPType = "phone_update"
	OTPTypeTwoFactor         OTPType = "2fa"
	OTPTypeVerification      OTPType = "verification"
)

// IsPhone reports whether this type uses phone-channel policy
// (shorter expiry, longer resend cooldown).
func (t OTPType) IsPhone() bool {
	return strings.HasPrefix(string(t), "phone_")
}

// DeliveryChannel is the transport used to hand a code to the user.
type DeliveryChannel string

const (
	ChannelEmail DeliveryChannel = "email"
	ChannelSMS   DeliveryChannel = "sms"
)

// ChannelFor infers the delivery channel from the identifier shape.
func ChannelFor(identifier string) DeliveryChannel {
	if strings.Contains(identifier, "@") {
		return ChannelEmail
	}
	return ChannelSMS
}

// OTPSession is one pending or recently-resolved verification attempt.
// The code is stored as an HMAC digest, never in the clear. At most one
// live session exists per (type, identifier); a new request replaces it.
type OTPSession struct {
	Type        OTPType           `json:"type"`
	Identifier  string            `json:"identifier"`
	CodeHash    string            `json:"code_hash"`
	MaxAttempts int               `json:"max_attempts"`
	CreatedAt   time.Time         `json:"created_at"`
	ExpiresAt   time.Time         `json:"expires_at"`
	Verified    bool              `json:"verified"`
	VerifiedAt  *time.Time        `json:"verified_at,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// CodeRequest is the outcome of requesting a new code.
type CodeRequest struct {
	ExpiresAt   time.Time       `json:"expires_at"`
	ResendAfter time.Duration   `json:"resend_after"`
	Channel     DeliveryChannel `json:"channel"`

	// TestCode carries the raw code only outside production, or for
	// allowlisted test identifiers. Empty otherwise.
	TestCode string `json:"test_code,omitempty"`
}

// Machine-readable verification result codes, stable across the HTTP
// surface.
const (
	CodeValid              = "VALID"
	CodeOTPNotFound        = "OTP_NOT_FOUND"
	CodeInvalidOTP         = "INVALID_OTP"
	CodeMaxAttemptsReached = "MAX_ATTEMPTS_REACHED"
)

// VerificationResult is the typed outcome of a code verification. It is
// returned as a value, not an error, so callers can map it to transport
// semantics deterministically.
type VerificationResult struct {
	Valid             bool              `json:"valid"`
	Code              string            `json:"code"`
	RemainingAttempts int               `json:"remaining_attempts,omitempty"`
	Metadata          map[string]string `json:"metadata,omitempty"`
}
