package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// Token sizes in bytes before encoding.
const (
	// TokenSize128 gives 128 bits of entropy (22 chars base64url).
	TokenSize128 = 16
	// TokenSize256 gives 256 bits of entropy (43 chars base64url).
	TokenSize256 = 32
)

// GenerateToken returns size bytes from crypto/rand encoded as base64url
// without padding, so the result is safe in URLs and query strings. It fails
// only when size is not positive or the random source errors.
//
// Common sizes:
//   - TokenSize128 (16 bytes): single-use redirect correlation codes
//   - TokenSize256 (32 bytes): long-lived secrets such as generated peppers
func GenerateToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("cryptox: token size must be positive, got %d", size)
	}
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("cryptox: read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// FingerprintToken returns the SHA-256 of token as unpadded base64url
// (43 chars). The result is deterministic, so it can be stored and indexed
// in place of a bearer secret and looked up when the secret is presented.
//
// A fingerprint is not a password hash. Use it only for high-entropy values
// such as those from GenerateToken.
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
