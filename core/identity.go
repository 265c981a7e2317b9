package core

import "time"

// Identity is the verified principal a token pair is bound to.
type Identity struct {
	Subject string // user id or normalized identifier
	Role    string
}

// TokenPair carries freshly minted tokens. The core never persists it;
// callers decide how to hand the refresh token to the client.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"` // access token lifetime, seconds
}

// TokenInfo is what a verified token resolves to.
type TokenInfo struct {
	Identity  Identity
	ID        string // jti, the revocation key
	ExpiresAt time.Time
}
