package ports

import "github.com/agrostack/agrauth/core"

// Tokenizer mints and verifies signed token pairs bound to an identity.
type Tokenizer interface {
	// IssuePair mints an access/refresh pair for the identity.
	IssuePair(identity core.Identity) (core.TokenPair, error)

	// VerifyAccess validates an access token and resolves it.
	VerifyAccess(token string) (*core.TokenInfo, error)

	// VerifyRefresh validates a refresh token and resolves it.
	VerifyRefresh(token string) (*core.TokenInfo, error)
}
