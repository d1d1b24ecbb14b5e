package auth

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const DefaultBcryptCost = 12

// HashToken returns a bcrypt hash suitable for MTS_API_TOKEN_HASH.
func HashToken(token string) (string, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return "", fmt.Errorf("token is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(trimmed), DefaultBcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash token: %w", err)
	}
	return string(hash), nil
}

// VerifyTokenHash checks token against a bcrypt hash.
func VerifyTokenHash(token, hash string) bool {
	trimmedToken := strings.TrimSpace(token)
	trimmedHash := strings.TrimSpace(hash)
	if trimmedToken == "" || trimmedHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(trimmedHash), []byte(trimmedToken)) == nil
}

// VerifyToken compares token with the expected plain value in constant time.
func VerifyToken(token, expected string) bool {
	trimmedToken := strings.TrimSpace(token)
	trimmedExpected := strings.TrimSpace(expected)
	if trimmedToken == "" || trimmedExpected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(trimmedToken), []byte(trimmedExpected)) == 1
}

// Verifier accepts a token matching either a plain secret or a bcrypt hash.
type Verifier struct {
	Token     string
	TokenHash string
}

// Enabled reports whether any secret is configured.
func (v Verifier) Enabled() bool {
	return strings.TrimSpace(v.Token) != "" || strings.TrimSpace(v.TokenHash) != ""
}

func (v Verifier) Verify(token string) bool {
	if VerifyToken(token, v.Token) {
		return true
	}
	return VerifyTokenHash(token, v.TokenHash)
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	value := strings.TrimSpace(header)
	const prefix = "bearer "
	if len(value) < len(prefix) || !strings.EqualFold(value[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(value[len(prefix):])
}
