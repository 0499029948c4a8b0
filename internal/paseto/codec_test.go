package paseto

import (
	"strings"
	"testing"
	"time"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(&Config{
		LocalKey:        "test-secret-key-for-codec-testing",
		Issuer:          "paseto-api",
		AccessAudience:  "paseto-api",
		RefreshAudience: "paseto-api-refresh",
	})
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return svc
}

func TestGenerateAccessToken_Format(t *testing.T) {
	svc := newTestService(t)

	token, err := svc.GenerateAccessToken(42, "alice")
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	if !strings.HasPrefix(token, "v4.local.") {
		t.Errorf("access token should start with v4.local., got %q", token[:20])
	}
	if len(token) < 50 {
		t.Errorf("token seems too short: %d chars", len(token))
	}
}

func TestGenerateRefreshToken_Format(t *testing.T) {
	svc := newTestService(t)

	token, err := svc.GenerateRefreshToken(42, "alice", NewTokenID())
	if err != nil {
		t.Fatalf("GenerateRefreshToken() error = %v", err)
	}

	if !strings.HasPrefix(token, "v4.public.") {
		t.Errorf("refresh token should start with v4.public., got %q", token[:20])
	}
}

func TestAccessToken_RoundTrip(t *testing.T) {
	svc := newTestService(t)

	token, _ := svc.GenerateAccessToken(42, "alice")
	claims, err := svc.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("ValidateAccessToken() error = %v", err)
	}

	if claims.Subject != "42" {
		t.Errorf("Subject = %q, expected %q", claims.Subject, "42")
	}
	if claims.Username != "alice" {
		t.Errorf("Username = %q, expected %q", claims.Username, "alice")
	}
	if claims.Issuer != "paseto-api" {
		t.Errorf("Issuer = %q, expected %q", claims.Issuer, "paseto-api")
	}
	if claims.Audience != "paseto-api" {
		t.Errorf("Audience = %q, expected %q", claims.Audience, "paseto-api")
	}
	if claims.TokenType != TokenTypeAccess {
		t.Errorf("TokenType = %q, expected %q", claims.TokenType, TokenTypeAccess)
	}
	if claims.TokenID == "" {
		t.Error("TokenID should not be empty")
	}
	if claims.ExpiresAt-claims.IssuedAt != int64(AccessTokenTTL/time.Second) {
		t.Errorf("access token lifetime = %d seconds, expected %d", claims.ExpiresAt-claims.IssuedAt, int64(AccessTokenTTL/time.Second))
	}
	if claims.NotBefore > claims.IssuedAt {
		t.Errorf("nbf %d should not be after iat %d", claims.NotBefore, claims.IssuedAt)
	}
}

func TestRefreshToken_RoundTrip(t *testing.T) {
	svc := newTestService(t)

	tokenID := NewTokenID()
	token, _ := svc.GenerateRefreshToken(7, "bob", tokenID)
	claims, err := svc.ValidateRefreshToken(token)
	if err != nil {
		t.Fatalf("ValidateRefreshToken() error = %v", err)
	}

	if claims.Subject != "7" {
		t.Errorf("Subject = %q, expected %q", claims.Subject, "7")
	}
	if claims.TokenID != tokenID {
		t.Errorf("TokenID = %q, expected %q", claims.TokenID, tokenID)
	}
	if claims.Audience != "paseto-api-refresh" {
		t.Errorf("Audience = %q, expected %q", claims.Audience, "paseto-api-refresh")
	}
	if claims.TokenType != TokenTypeRefresh {
		t.Errorf("TokenType = %q, expected %q", claims.TokenType, TokenTypeRefresh)
	}
	if claims.ExpiresAt-claims.IssuedAt != int64(RefreshTokenTTL/time.Second) {
		t.Errorf("refresh token lifetime = %d seconds, expected %d", claims.ExpiresAt-claims.IssuedAt, int64(RefreshTokenTTL/time.Second))
	}
}

func TestAccessToken_TamperSensitivity(t *testing.T) {
	svc := newTestService(t)
	token, _ := svc.GenerateAccessToken(1, "alice")

	for i := 0; i < len(token); i++ {
		tampered := []byte(token)
		tampered[i] ^= 0x01
		if _, err := svc.ValidateAccessToken(string(tampered)); err == nil {
			t.Fatalf("flipping byte %d should invalidate the token", i)
		}
	}
}

func TestRefreshToken_TamperSensitivity(t *testing.T) {
	svc := newTestService(t)
	token, _ := svc.GenerateRefreshToken(1, "alice", NewTokenID())

	for i := 0; i < len(token); i++ {
		tampered := []byte(token)
		tampered[i] ^= 0x01
		if _, err := svc.ValidateRefreshToken(string(tampered)); err == nil {
			t.Fatalf("flipping byte %d should invalidate the token", i)
		}
	}
}

func TestValidate_SingleEncodingPerToken(t *testing.T) {
	svc := newTestService(t)

	access, _ := svc.GenerateAccessToken(1, "alice")
	refresh, _ := svc.GenerateRefreshToken(1, "alice", NewTokenID())

	// Swapping the final base64 character must never yield a second valid
	// string for the same token. Without strict decoding, characters that
	// differ only in trailing padding bits decode to identical bytes.
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	for _, token := range []string{access, refresh} {
		last := token[len(token)-1]
		for i := 0; i < len(alphabet); i++ {
			if alphabet[i] == last {
				continue
			}
			tampered := token[:len(token)-1] + string(alphabet[i])
			if _, err := svc.ValidateAccessToken(tampered); err == nil {
				t.Fatalf("substituting final char %q with %q should invalidate the token", last, alphabet[i])
			}
			if _, err := svc.ValidateRefreshToken(tampered); err == nil {
				t.Fatalf("substituting final char %q with %q should invalidate the token", last, alphabet[i])
			}
		}
	}
}

func TestTokenKind_Isolation(t *testing.T) {
	svc := newTestService(t)

	accessToken, _ := svc.GenerateAccessToken(1, "alice")
	refreshToken, _ := svc.GenerateRefreshToken(1, "alice", NewTokenID())

	if _, err := svc.ValidateRefreshToken(accessToken); err == nil {
		t.Error("an access token must never pass refresh validation")
	}
	if _, err := svc.ValidateAccessToken(refreshToken); err == nil {
		t.Error("a refresh token must never pass access validation")
	}
}

func TestValidate_MalformedTokens(t *testing.T) {
	svc := newTestService(t)

	malformed := []string{
		"",
		"v4.local.",
		"v4.local.!!!not-base64!!!",
		"v4.local.YWJj", // too short for nonce+tag
		"v4.public.YWJj",
		"v2.local.abcdef",
		"not a token at all",
	}

	for _, token := range malformed {
		if _, err := svc.ValidateAccessToken(token); err == nil {
			t.Errorf("ValidateAccessToken(%q) should return error", token)
		}
		if _, err := svc.ValidateRefreshToken(token); err == nil {
			t.Errorf("ValidateRefreshToken(%q) should return error", token)
		}
	}
}

func TestValidate_ClaimRejections(t *testing.T) {
	svc := newTestService(t)
	now := time.Now().Unix()

	base := Claims{
		Issuer:    "paseto-api",
		Subject:   "1",
		Audience:  "paseto-api",
		ExpiresAt: now + 900,
		IssuedAt:  now,
		NotBefore: now,
		TokenID:   NewTokenID(),
		Username:  "alice",
		TokenType: TokenTypeAccess,
	}

	tests := []struct {
		name   string
		mutate func(c *Claims)
	}{
		{"expired", func(c *Claims) { c.ExpiresAt = now - 1 }},
		{"not yet valid", func(c *Claims) { c.NotBefore = now + 3600 }},
		{"wrong issuer", func(c *Claims) { c.Issuer = "someone-else" }},
		{"wrong type", func(c *Claims) { c.TokenType = TokenTypeRefresh }},
		{"wrong audience", func(c *Claims) { c.Audience = "paseto-api-refresh" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := base
			tt.mutate(&claims)

			token, err := svc.sealLocal(&claims)
			if err != nil {
				t.Fatalf("sealLocal() error = %v", err)
			}

			if _, err := svc.ValidateAccessToken(token); err != ErrInvalidToken {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestValidate_RefreshClaimRejections(t *testing.T) {
	svc := newTestService(t)
	now := time.Now().Unix()

	claims := Claims{
		Issuer:    "paseto-api",
		Subject:   "1",
		Audience:  "paseto-api-refresh",
		ExpiresAt: now - 1, // already expired
		IssuedAt:  now - 3600,
		NotBefore: now - 3600,
		TokenID:   NewTokenID(),
		Username:  "alice",
		TokenType: TokenTypeRefresh,
	}

	token, err := svc.signPublic(&claims)
	if err != nil {
		t.Fatalf("signPublic() error = %v", err)
	}

	if _, err := svc.ValidateRefreshToken(token); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken for expired refresh token, got %v", err)
	}
}

func TestLocalKey_Normalization(t *testing.T) {
	// A short key and its zero-padded form are the same key; a long key and
	// its 32-byte prefix are the same key.
	shortKey := "short-key"
	longKey := "this-key-is-longer-than-thirty-two-bytes-for-sure"

	svcShort, _ := NewService(&Config{LocalKey: shortKey, Issuer: "i", AccessAudience: "a", RefreshAudience: "r"})
	svcShort2, _ := NewService(&Config{LocalKey: shortKey, Issuer: "i", AccessAudience: "a", RefreshAudience: "r"})
	svcLong, _ := NewService(&Config{LocalKey: longKey, Issuer: "i", AccessAudience: "a", RefreshAudience: "r"})
	svcLongPrefix, _ := NewService(&Config{LocalKey: longKey[:32], Issuer: "i", AccessAudience: "a", RefreshAudience: "r"})

	token, _ := svcShort.GenerateAccessToken(1, "alice")
	if _, err := svcShort2.ValidateAccessToken(token); err != nil {
		t.Errorf("same short key should validate across instances: %v", err)
	}

	token, _ = svcLong.GenerateAccessToken(1, "alice")
	if _, err := svcLongPrefix.ValidateAccessToken(token); err != nil {
		t.Errorf("truncated long key should validate: %v", err)
	}
}

func TestRefreshToken_KeyPairPerProcess(t *testing.T) {
	// Each service instance generates its own signing key pair, so refresh
	// tokens do not survive a restart.
	svc1 := newTestService(t)
	svc2 := newTestService(t)

	token, _ := svc1.GenerateRefreshToken(1, "alice", NewTokenID())
	if _, err := svc2.ValidateRefreshToken(token); err == nil {
		t.Error("refresh token should not verify under a different key pair")
	}
}

func TestNewTokenID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewTokenID()
		if id == "" {
			t.Fatal("NewTokenID() returned empty string")
		}
		if seen[id] {
			t.Fatalf("duplicate token ID %q", id)
		}
		seen[id] = true
	}
}
