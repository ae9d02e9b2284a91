// Package jwtx issues and verifies the bearer tokens that bind API calls to
// a gateway session.
package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrUnknownKID  = errors.New("jwtx: unknown kid")
	ErrIssuer      = errors.New("jwtx: issuer mismatch")
	ErrAudience    = errors.New("jwtx: audience mismatch")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
)

// Claims are session-token claims. Subject is the user id.
type Claims struct {
	jwt.RegisteredClaims

	// SID is the gateway session the token was issued for.
	SID string `json:"sid"`

	Username string `json:"username,omitempty"`
}

// NewSessionClaims builds claims for a freshly created session.
func NewSessionClaims(userID, sessionID, username, issuer string, audience []string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			Audience:  jwt.ClaimStrings(audience),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		SID:      sessionID,
		Username: username,
	}
}

// NewJTI returns a random URL-safe token id.
func NewJTI() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// Validate checks issuer, audience and the exp/nbf window with leeway.
// Empty expectations are not enforced.
func (c *Claims) Validate(issuer string, audience []string, leeway time.Duration, now time.Time) error {
	if issuer != "" && c.Issuer != issuer {
		return ErrIssuer
	}
	if len(audience) > 0 && !slices.ContainsFunc(audience, func(a string) bool {
		return slices.Contains(c.Audience, a)
	}) {
		return ErrAudience
	}
	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)) {
		return ErrNotYetValid
	}
	return nil
}
