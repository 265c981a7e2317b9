package tokenizer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrostack/agrauth/core"
)

func newTestTokenizer(t *testing.T, accessTTL, refreshTTL time.Duration) *JWTTokenizer {
	t.Helper()
	tk, err := NewJWTTokenizer("access-secret-for-tests", "refresh-secret-for-tests", "agrauth-test", accessTTL, refreshTTL)
	require.NoError(t, err)
	return tk.(*JWTTokenizer)
}

func TestNewJWTTokenizerValidatesConfig(t *testing.T) {
	_, err := NewJWTTokenizer("", "refresh", "iss", time.Minute, time.Hour)
	assert.ErrorIs(t, err, core.ErrSigningConfig)

	_, err = NewJWTTokenizer("same", "same", "iss", time.Minute, time.Hour)
	assert.ErrorIs(t, err, core.ErrSigningConfig)

	_, err = NewJWTTokenizer("access", "refresh", "", time.Minute, time.Hour)
	assert.ErrorIs(t, err, core.ErrSigningConfig)
}

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	tk := newTestTokenizer(t, 15*time.Minute, 7*24*time.Hour)

	pair, err := tk.IssuePair(core.Identity{Subject: "+919900112233", Role: "farmer"})
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.Equal(t, int64(900), pair.ExpiresIn)

	info, err := tk.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "+919900112233", info.Identity.Subject)
	assert.Equal(t, "farmer", info.Identity.Role)
	assert.NotEmpty(t, info.ID)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), info.ExpiresAt, 5*time.Second)

	rinfo, err := tk.VerifyRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "+919900112233", rinfo.Identity.Subject)
	assert.NotEqual(t, info.ID, rinfo.ID)
}

func TestVerifyRejectsCrossAudience(t *testing.T) {
	tk := newTestTokenizer(t, time.Minute, time.Hour)

	pair, err := tk.IssuePair(core.Identity{Subject: "u1", Role: "user"})
	require.NoError(t, err)

	// An access token is signed with the access secret and carries the
	// access audience; it must fail refresh verification on both counts.
	_, err = tk.VerifyRefresh(pair.AccessToken)
	assert.Error(t, err)

	_, err = tk.VerifyAccess(pair.RefreshToken)
	assert.Error(t, err)
}

func TestVerifyRejectsForeignIssuer(t *testing.T) {
	issuerA := newTestTokenizer(t, time.Minute, time.Hour)
	issuerB, err := NewJWTTokenizer("access-secret-for-tests", "refresh-secret-for-tests", "someone-else", time.Minute, time.Hour)
	require.NoError(t, err)

	pair, err := issuerB.IssuePair(core.Identity{Subject: "u1"})
	require.NoError(t, err)

	// Same secrets, wrong issuer claim: still rejected.
	_, err = issuerA.VerifyAccess(pair.AccessToken)
	assert.Error(t, err)
}

func TestVerifyRejectsExpired(t *testing.T) {
	tk := newTestTokenizer(t, -time.Minute, time.Hour)

	pair, err := tk.IssuePair(core.Identity{Subject: "u1"})
	require.NoError(t, err)

	_, err = tk.VerifyAccess(pair.AccessToken)
	assert.ErrorIs(t, err, core.ErrTokenExpired)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	tk := newTestTokenizer(t, time.Minute, time.Hour)

	_, err := tk.VerifyAccess("not-a-jwt")
	assert.ErrorIs(t, err, core.ErrInvalidToken)
}
