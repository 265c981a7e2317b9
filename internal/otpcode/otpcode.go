// Package otpcode generates and checks one-time numeric codes.
package otpcode

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math/big"
)

// DefaultLength is used when the caller does not configure one.
const DefaultLength = 6

// Generate returns a fixed-length string of decimal digits drawn from a
// cryptographically secure source. Predictable codes defeat the whole
// mechanism, so math/rand is never acceptable here.
func Generate(length int) (string, error) {
	if length <= 0 {
		length = DefaultLength
	}

	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}

	return fmt.Sprintf("%0*d", length, n), nil
}

// Hash returns the hex HMAC-SHA256 of code under secret. Sessions store
// this digest, never the raw code.
func Hash(code, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(code))
	return hex.EncodeToString(mac.Sum(nil))
}

// SecureEquals compares two strings in constant time with respect to
// mismatch position. Differing lengths fail closed; length itself is not
// secret, so the early return does not leak anything useful.
func SecureEquals(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
