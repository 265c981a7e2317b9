package tokenizer

import "github.com/golang-jwt/jwt/v5"

// AccessClaims combines standard claims with the subject's role.
type AccessClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}

// RefreshClaims carry the same shape; the audience tells them apart.
type RefreshClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}
