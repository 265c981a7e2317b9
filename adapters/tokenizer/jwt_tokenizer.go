package tokenizer

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/agrostack/agrauth/core"
	"github.com/agrostack/agrauth/ports"
)

const (
	AudienceAccess  = "auth:access"
	AudienceRefresh = "auth:refresh"
)

// JWTTokenizer mints HS256 token pairs. Access and refresh tokens are
// signed with distinct secrets so leaking one does not compromise the
// other class. Issuer and audience are fixed at construction and
// validated symmetrically on parse.
type JWTTokenizer struct {
	accessSecret  []byte
	refreshSecret []byte
	issuer        string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewJWTTokenizer validates the signing configuration up front; a bad
// secret must fail startup, never an individual request.
func NewJWTTokenizer(accessSecret, refreshSecret, issuer string, accessTTL, refreshTTL time.Duration) (ports.Tokenizer, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, fmt.Errorf("%w: empty signing secret", core.ErrSigningConfig)
	}
	if accessSecret == refreshSecret {
		return nil, fmt.Errorf("%w: access and refresh secrets must differ", core.ErrSigningConfig)
	}
	if issuer == "" {
		return nil, fmt.Errorf("%w: empty issuer", core.ErrSigningConfig)
	}
	return &JWTTokenizer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		issuer:        issuer,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}, nil
}

// IssuePair mints an access/refresh pair for the identity.
func (j *JWTTokenizer) IssuePair(identity core.Identity) (core.TokenPair, error) {
	now := time.Now()

	accessClaims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Subject,
			Issuer:    j.issuer,
			Audience:  jwt.ClaimStrings{AudienceAccess},
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.accessTTL)),
		},
		Role: identity.Role,
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString(j.accessSecret)
	if err != nil {
		return core.TokenPair{}, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshClaims := RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Subject,
			Issuer:    j.issuer,
			Audience:  jwt.ClaimStrings{AudienceRefresh},
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.refreshTTL)),
		},
		Role: identity.Role,
	}
	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString(j.refreshSecret)
	if err != nil {
		return core.TokenPair{}, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return core.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(j.accessTTL.Seconds()),
	}, nil
}

// VerifyAccess validates an access token and resolves it.
func (j *JWTTokenizer) VerifyAccess(token string) (*core.TokenInfo, error) {
	return j.verify(token, j.accessSecret, AudienceAccess)
}

// VerifyRefresh validates a refresh token and resolves it.
func (j *JWTTokenizer) VerifyRefresh(token string) (*core.TokenInfo, error) {
	return j.verify(token, j.refreshSecret, AudienceRefresh)
}

func (j *JWTTokenizer) verify(tokenStr string, secret []byte, audience string) (*core.TokenInfo, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithAudience(audience), jwt.WithIssuer(j.issuer))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, core.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenInvalidAudience):
			return nil, core.ErrInvalidAudience
		default:
			return nil, fmt.Errorf("%w: %v", core.ErrInvalidToken, err)
		}
	}
	if !token.Valid {
		return nil, core.ErrInvalidToken
	}

	claims, ok := token.Claims.(*AccessClaims)
	if !ok {
		return nil, core.ErrInvalidToken
	}

	return &core.TokenInfo{
		Identity:  core.Identity{Subject: claims.Subject, Role: claims.Role},
		ID:        claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
