package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/agrostack/agrauth/config"
	"github.com/agrostack/agrauth/core"
	"github.com/agrostack/agrauth/internal/logger"
	"github.com/agrostack/agrauth/internal/otpcode"
	"github.com/agrostack/agrauth/ports"
)

// verifiedTTL is the residual lifetime of a session after successful
// verification, so callers can still query the verified window.
const verifiedTTL = 2 * time.Minute

// OTPService owns the lifecycle of pending verifications: creation,
// attempt tracking, expiry and resend throttling. State lives in the
// cache store; expiry is enforced by key TTLs, not by a sweeper here.
type OTPService struct {
	cache      ports.Cache
	delivery   ports.Delivery
	events     ports.EventPublisher // optional
	policy     config.OTP
	production bool
}

// NewOTPService creates the session manager. events may be nil when no
// broker is wired.
func NewOTPService(cache ports.Cache, delivery ports.Delivery, events ports.EventPublisher, policy config.OTP, production bool) *OTPService {
	return &OTPService{
		cache:      cache,
		delivery:   delivery,
		events:     events,
		policy:     policy,
		production: production,
	}
}

func sessionKey(otpType core.OTPType, identifier string) string {
	return fmt.Sprintf("otp:%s:%s", otpType, identifier)
}

func lastRequestKey(otpType core.OTPType, identifier string) string {
	return sessionKey(otpType, identifier) + ":last_request"
}

func attemptsKey(otpType core.OTPType, identifier string) string {
	return sessionKey(otpType, identifier) + ":attempts"
}

// expiryFor returns the session TTL for a type: phone types burn out
// faster than email ones.
func (s *OTPService) expiryFor(otpType core.OTPType) time.Duration {
	if otpType.IsPhone() {
		return s.policy.PhoneExpiry
	}
	return s.policy.Expiry
}

// resendDelayFor returns the cooldown for a delivery channel. SMS gets
// the longer window; each message costs money.
func (s *OTPService) resendDelayFor(channel core.DeliveryChannel) time.Duration {
	if channel == core.ChannelSMS {
		return s.policy.PhoneResendDelay
	}
	return s.policy.ResendDelay
}

func (s *OTPService) isTestIdentifier(identifier string) bool {
	for _, t := range s.policy.TestIdentifiers {
		if t == identifier {
			return true
		}
	}
	return false
}

// RequestCode generates, stores and dispatches a new code for the
// (type, identifier) pair, replacing any prior live session for that
// key. It rejects requests inside the resend-cooldown window with a
// core.RateLimitError.
func (s *OTPService) RequestCode(ctx context.Context, otpType core.OTPType, identifier string, metadata map[string]string) (*core.CodeRequest, error) {
	identifier, err := core.NormalizeIdentifier(identifier, s.policy.CountryCode)
	if err != nil {
		return nil, err
	}

	channel := core.ChannelFor(identifier)
	expiry := s.expiryFor(otpType)
	resendDelay := s.resendDelayFor(channel)
	now := time.Now()

	// Resend gate: a marker written on every request, with the cooldown
	// as its TTL. Its presence alone means "too soon"; the stored
	// timestamp gives the caller an accurate retry-after.
	raw, err := s.cache.Get(ctx, lastRequestKey(otpType, identifier))
	switch {
	case err == nil:
		retryAfter := resendDelay
		if last, parseErr := strconv.ParseInt(raw, 10, 64); parseErr == nil {
			elapsed := now.Sub(time.Unix(last, 0))
			if remaining := resendDelay - elapsed; remaining > 0 {
				retryAfter = remaining
			} else {
				retryAfter = 0
			}
		}
		if retryAfter > 0 {
			return nil, &core.RateLimitError{RetryAfter: retryAfter}
		}
	case errors.Is(err, core.ErrCacheMiss):
		// no recent request
	default:
		return nil, fmt.Errorf("failed to check resend gate: %w", err)
	}

	code, err := otpcode.Generate(s.policy.Length)
	if err != nil {
		return nil, err
	}

	session := core.OTPSession{
		Type:        otpType,
		Identifier:  identifier,
		CodeHash:    otpcode.Hash(code, s.policy.Secret),
		MaxAttempts: s.policy.AttemptsLimit,
		CreatedAt:   now,
		ExpiresAt:   now.Add(expiry),
		Metadata:    metadata,
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}

	// Replacing the session resets the attempt budget too.
	if err := s.cache.Set(ctx, sessionKey(otpType, identifier), string(payload), expiry); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	if err := s.cache.Delete(ctx, attemptsKey(otpType, identifier)); err != nil {
		return nil, fmt.Errorf("failed to reset attempts: %w", err)
	}
	if err := s.cache.Set(ctx, lastRequestKey(otpType, identifier), strconv.FormatInt(now.Unix(), 10), resendDelay); err != nil {
		return nil, fmt.Errorf("failed to store resend gate: %w", err)
	}

	isTest := s.isTestIdentifier(identifier)
	if !isTest {
		// Delivery failures do not invalidate the session; the caller
		// can still resend after the cooldown.
		if err := s.delivery.SendCode(ctx, channel, identifier, code, otpType); err != nil {
			logger.Log.Warnf("otp: delivery failed for %s: %v", identifier, err)
		}
	}

	result := &core.CodeRequest{
		ExpiresAt:   session.ExpiresAt,
		ResendAfter: resendDelay,
		Channel:     channel,
	}
	if !s.production || isTest {
		result.TestCode = code
	}
	return result, nil
}

// VerifyCode checks a submitted code against the live session for the
// (type, identifier) pair. Outcomes are values, never errors; the error
// return is reserved for backend failures, on which verification fails
// closed.
func (s *OTPService) VerifyCode(ctx context.Context, otpType core.OTPType, identifier, code string) (*core.VerificationResult, error) {
	identifier, err := core.NormalizeIdentifier(identifier, s.policy.CountryCode)
	if err != nil {
		return nil, err
	}

	key := sessionKey(otpType, identifier)
	payload, err := s.cache.Get(ctx, key)
	if err != nil {
		if errors.Is(err, core.ErrCacheMiss) {
			return &core.VerificationResult{Code: core.CodeOTPNotFound}, nil
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var session core.OTPSession
	if err := json.Unmarshal([]byte(payload), &session); err != nil {
		// Corrupt payloads are unusable; drop them and force a fresh
		// request rather than guessing at their shape.
		logger.Log.Warnf("otp: dropping undecodable session for %s: %v", key, err)
		_ = s.cache.Delete(ctx, key)
		return &core.VerificationResult{Code: core.CodeOTPNotFound}, nil
	}

	// Verified sessions are terminal; a correct code replayed after
	// success must not validate twice.
	if session.Verified {
		return &core.VerificationResult{Code: core.CodeOTPNotFound}, nil
	}

	if !otpcode.SecureEquals(otpcode.Hash(code, s.policy.Secret), session.CodeHash) {
		attempts, err := s.cache.Increment(ctx, attemptsKey(otpType, identifier), time.Until(session.ExpiresAt))
		if err != nil {
			return nil, fmt.Errorf("failed to count attempt: %w", err)
		}
		if attempts >= int64(session.MaxAttempts) {
			_ = s.cache.Delete(ctx, key)
			_ = s.cache.Delete(ctx, attemptsKey(otpType, identifier))
			return &core.VerificationResult{Code: core.CodeMaxAttemptsReached}, nil
		}
		return &core.VerificationResult{
			Code:              core.CodeInvalidOTP,
			RemainingAttempts: session.MaxAttempts - int(attempts),
		}, nil
	}

	now := time.Now()
	session.Verified = true
	session.VerifiedAt = &now
	verified, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.cache.Set(ctx, key, string(verified), verifiedTTL); err != nil {
		return nil, fmt.Errorf("failed to finalize session: %w", err)
	}
	_ = s.cache.Delete(ctx, attemptsKey(otpType, identifier))

	if s.events != nil {
		if err := s.events.PublishCodeVerified(ctx, otpType, identifier); err != nil {
			logger.Log.Warnf("otp: failed to publish verification event: %v", err)
		}
	}

	return &core.VerificationResult{
		Valid:    true,
		Code:     core.CodeValid,
		Metadata: session.Metadata,
	}, nil
}

// IsVerified reports whether the session for (type, identifier) has
// been verified and is still inside its residual window.
func (s *OTPService) IsVerified(ctx context.Context, otpType core.OTPType, identifier string) (bool, error) {
	identifier, err := core.NormalizeIdentifier(identifier, s.policy.CountryCode)
	if err != nil {
		return false, err
	}

	payload, err := s.cache.Get(ctx, sessionKey(otpType, identifier))
	if err != nil {
		if errors.Is(err, core.ErrCacheMiss) {
			return false, nil
		}
		return false, fmt.Errorf("failed to load session: %w", err)
	}

	var session core.OTPSession
	if err := json.Unmarshal([]byte(payload), &session); err != nil {
		return false, nil
	}
	return session.Verified, nil
}

// Invalidate drops the session for (type, identifier), if any.
func (s *OTPService) Invalidate(ctx context.Context, otpType core.OTPType, identifier string) error {
	identifier, err := core.NormalizeIdentifier(identifier, s.policy.CountryCode)
	if err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, sessionKey(otpType, identifier)); err != nil {
		return fmt.Errorf("failed to invalidate session: %w", err)
	}
	return s.cache.Delete(ctx, attemptsKey(otpType, identifier))
}
