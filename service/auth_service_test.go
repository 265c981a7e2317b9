package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrostack/agrauth/adapters/blacklist"
	"github.com/agrostack/agrauth/adapters/cache"
	"github.com/agrostack/agrauth/adapters/tokenizer"
	"github.com/agrostack/agrauth/core"
)

func newTestAuthService(t *testing.T, accessTTL, refreshTTL time.Duration) *AuthService {
	t.Helper()
	tk, err := tokenizer.NewJWTTokenizer(
		"access-secret-for-tests-0123456789ab",
		"refresh-secret-for-tests-0123456789a",
		"agrauth-test",
		accessTTL,
		refreshTTL,
	)
	require.NoError(t, err)

	store := cache.NewMemory()
	t.Cleanup(store.Close)
	return NewAuthService(tk, blacklist.New(store), nil)
}

func TestIssueAndValidate(t *testing.T) {
	s := newTestAuthService(t, 15*time.Minute, 7*24*time.Hour)
	ctx := context.Background()

	pair, err := s.IssueTokens(core.Identity{Subject: "+919900112233", Role: "farmer"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)

	identity, err := s.ValidateAccessToken(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "+919900112233", identity.Subject)
	assert.Equal(t, "farmer", identity.Role)

	// Refresh tokens never pass the access gate.
	_, err = s.ValidateAccessToken(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, core.ErrInvalidAudience)
}

func TestRevokedAccessTokenRejected(t *testing.T) {
	s := newTestAuthService(t, 15*time.Minute, 7*24*time.Hour)
	ctx := context.Background()

	pair, err := s.IssueTokens(core.Identity{Subject: "user@example.com", Role: "user"})
	require.NoError(t, err)

	require.NoError(t, s.RevokeToken(ctx, pair.AccessToken))

	_, err = s.ValidateAccessToken(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, core.ErrTokenRevoked)

	revoked, err := s.IsRevoked(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.True(t, revoked)

	// The refresh token is an independent grant and survives.
	revoked, err = s.IsRevoked(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRotateTokensRetiresOldRefresh(t *testing.T) {
	s := newTestAuthService(t, 15*time.Minute, 7*24*time.Hour)
	ctx := context.Background()

	pair, err := s.IssueTokens(core.Identity{Subject: "user@example.com", Role: "user"})
	require.NoError(t, err)

	next, err := s.RotateTokens(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	// Replay of the spent refresh token is the classic theft signal.
	_, err = s.RotateTokens(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, core.ErrTokenRevoked)

	// The fresh pair keeps working.
	identity, err := s.ValidateAccessToken(ctx, next.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", identity.Subject)
}

func TestRotateTokensRejectsAccessToken(t *testing.T) {
	s := newTestAuthService(t, 15*time.Minute, 7*24*time.Hour)
	ctx := context.Background()

	pair, err := s.IssueTokens(core.Identity{Subject: "user@example.com"})
	require.NoError(t, err)

	_, err = s.RotateTokens(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, core.ErrInvalidAudience)
}

func TestRevokeTokenIdempotent(t *testing.T) {
	s := newTestAuthService(t, 15*time.Minute, 7*24*time.Hour)
	ctx := context.Background()

	pair, err := s.IssueTokens(core.Identity{Subject: "user@example.com"})
	require.NoError(t, err)

	require.NoError(t, s.RevokeToken(ctx, pair.AccessToken))
	require.NoError(t, s.RevokeToken(ctx, pair.AccessToken))

	// Garbage cannot authenticate anything, so revoking it succeeds
	// without recording state.
	assert.NoError(t, s.RevokeToken(ctx, "not.a.token"))
}

func TestRevokeExpiredTokenIsNoop(t *testing.T) {
	s := newTestAuthService(t, -time.Minute, -time.Minute)
	ctx := context.Background()

	pair, err := s.IssueTokens(core.Identity{Subject: "user@example.com"})
	require.NoError(t, err)

	assert.NoError(t, s.RevokeToken(ctx, pair.AccessToken))

	_, err = s.ValidateAccessToken(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, core.ErrTokenExpired)
}

func TestLogoutRevokesBothTokens(t *testing.T) {
	s := newTestAuthService(t, 15*time.Minute, 7*24*time.Hour)
	ctx := context.Background()

	pair, err := s.IssueTokens(core.Identity{Subject: "user@example.com"})
	require.NoError(t, err)

	require.NoError(t, s.Logout(ctx, pair.AccessToken, pair.RefreshToken))

	_, err = s.ValidateAccessToken(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, core.ErrTokenRevoked)

	_, err = s.RotateTokens(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, core.ErrTokenRevoked)
}

func TestLogoutToleratesMissingTokens(t *testing.T) {
	s := newTestAuthService(t, 15*time.Minute, 7*24*time.Hour)
	assert.NoError(t, s.Logout(context.Background(), "", ""))
}
