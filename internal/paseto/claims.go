package paseto

import (
	"errors"
	"time"
)

// Token lifetimes are part of the wire contract: access tokens are verified
// locally on every request and stay short-lived, refresh tokens live a week
// and are exchanged through rotation.
const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// Values of the tokenType claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// ErrInvalidToken is the only error token validation exposes. Malformed
// input, failed decryption, bad signatures and rejected claims all collapse
// into it so callers cannot be used as a validation oracle.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the payload embedded in both token kinds.
type Claims struct {
	Issuer    string `json:"iss"`
	Subject   string `json:"sub"` // user ID, stringified
	Audience  string `json:"aud"`
	ExpiresAt int64  `json:"exp"` // Unix seconds
	IssuedAt  int64  `json:"iat"`
	NotBefore int64  `json:"nbf"`
	TokenID   string `json:"jti"`
	Username  string `json:"username"`
	TokenType string `json:"tokenType"` // "access" or "refresh"
}

// validateClaims enforces the temporal and identity rules shared by both
// token kinds. Authenticity has already been proven by the codec.
func (s *Service) validateClaims(c *Claims, tokenType, audience string) error {
	now := time.Now().Unix()
	if c.ExpiresAt < now {
		return ErrInvalidToken
	}
	if c.NotBefore > now {
		return ErrInvalidToken
	}
	if c.Issuer != s.issuer {
		return ErrInvalidToken
	}
	if c.TokenType != tokenType {
		return ErrInvalidToken
	}
	if c.Audience != audience {
		return ErrInvalidToken
	}
	return nil
}
