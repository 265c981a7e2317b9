package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agrostack/agrauth/core"
	"github.com/agrostack/agrauth/internal/logger"
	"github.com/agrostack/agrauth/ports"
)

// AuthService mints token pairs for verified identities and maintains
// the revocation list.
type AuthService struct {
	tokenizer ports.Tokenizer
	blacklist ports.Blacklist
	events    ports.EventPublisher // optional
}

// NewAuthService creates the token issuer. events may be nil.
func NewAuthService(tokenizer ports.Tokenizer, blacklist ports.Blacklist, events ports.EventPublisher) *AuthService {
	return &AuthService{
		tokenizer: tokenizer,
		blacklist: blacklist,
		events:    events,
	}
}

// IssueTokens mints an access/refresh pair. Callers invoke this only
// after a successful code verification.
func (s *AuthService) IssueTokens(identity core.Identity) (core.TokenPair, error) {
	pair, err := s.tokenizer.IssuePair(identity)
	if err != nil {
		return core.TokenPair{}, fmt.Errorf("failed to issue tokens: %w", err)
	}
	return pair, nil
}

// ValidateAccessToken verifies signature, expiry, issuer and audience,
// then rejects revoked tokens. Blacklist lookup failures fail closed.
func (s *AuthService) ValidateAccessToken(ctx context.Context, token string) (*core.Identity, error) {
	info, err := s.tokenizer.VerifyAccess(token)
	if err != nil {
		return nil, err
	}

	revoked, err := s.blacklist.IsRevoked(ctx, info.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check revocation: %w", err)
	}
	if revoked {
		return nil, core.ErrTokenRevoked
	}

	return &info.Identity, nil
}

// RotateTokens validates a refresh token, revokes it for its remaining
// lifetime and mints a fresh pair.
func (s *AuthService) RotateTokens(ctx context.Context, refreshToken string) (core.TokenPair, error) {
	info, err := s.tokenizer.VerifyRefresh(refreshToken)
	if err != nil {
		return core.TokenPair{}, err
	}

	revoked, err := s.blacklist.IsRevoked(ctx, info.ID)
	if err != nil {
		return core.TokenPair{}, fmt.Errorf("failed to check revocation: %w", err)
	}
	if revoked {
		return core.TokenPair{}, core.ErrTokenRevoked
	}

	// The old refresh token must die with the rotation, or a stolen
	// copy stays valid until natural expiry.
	if err := s.blacklist.Revoke(ctx, info.ID, time.Until(info.ExpiresAt)); err != nil {
		return core.TokenPair{}, fmt.Errorf("failed to revoke rotated token: %w", err)
	}

	return s.IssueTokens(info.Identity)
}

// RevokeToken blacklists a single token until its natural expiry. It is
// idempotent and always succeeds for tokens that verification would
// already reject: expired or malformed input is a no-op.
func (s *AuthService) RevokeToken(ctx context.Context, token string) error {
	info, err := s.tokenizer.VerifyAccess(token)
	if err != nil {
		info, err = s.tokenizer.VerifyRefresh(token)
	}
	if err != nil {
		if errors.Is(err, core.ErrTokenExpired) {
			return nil
		}
		// Unverifiable tokens cannot authenticate anything; nothing to
		// record.
		return nil
	}

	if err := s.blacklist.Revoke(ctx, info.ID, time.Until(info.ExpiresAt)); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	if s.events != nil {
		if err := s.events.PublishLogout(ctx, info.Identity.Subject, info.ID); err != nil {
			logger.Log.Warnf("auth: failed to publish logout event: %v", err)
		}
	}
	return nil
}

// Logout revokes both tokens of a session. Either may be absent.
func (s *AuthService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	if accessToken != "" {
		if err := s.RevokeToken(ctx, accessToken); err != nil {
			return err
		}
	}
	if refreshToken != "" {
		if err := s.RevokeToken(ctx, refreshToken); err != nil {
			return err
		}
	}
	return nil
}

// IsRevoked reports whether a still-valid token has been blacklisted.
func (s *AuthService) IsRevoked(ctx context.Context, token string) (bool, error) {
	info, err := s.tokenizer.VerifyAccess(token)
	if err != nil {
		info, err = s.tokenizer.VerifyRefresh(token)
	}
	if err != nil {
		return false, err
	}
	return s.blacklist.IsRevoked(ctx, info.ID)
}
