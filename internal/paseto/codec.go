// Package paseto implements the v4 token formats used by the API: encrypted
// v4.local access tokens (AES-256-GCM) and signed v4.public refresh tokens
// (Ed25519). Tokens are opaque strings everywhere else in the application.
package paseto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	localPrefix  = "v4.local."
	publicPrefix = "v4.public."

	localKeySize  = 32 // AES-256
	signatureSize = ed25519.SignatureSize
)

// b64 encodes and decodes token bodies. Strict mode rejects encodings with
// non-zero trailing padding bits, so every token has exactly one string form.
var b64 = base64.RawURLEncoding.Strict()

// Config carries the process-wide token settings, built once at startup from
// the application configuration.
type Config struct {
	LocalKey        string // operator-supplied symmetric key material
	Issuer          string
	AccessAudience  string
	RefreshAudience string
}

// Service mints and validates both token kinds. The AEAD and the Ed25519
// key pair are fixed at construction and read-only afterwards.
type Service struct {
	aead       cipher.AEAD
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey
	issuer     string
	accessAud  string
	refreshAud string
}

// NewService builds a codec from explicit configuration. A fresh signing key
// pair is generated per process: refresh tokens issued before a restart stop
// verifying and force a re-login.
func NewService(cfg *Config) (*Service, error) {
	block, err := aes.NewCipher(normalizeLocalKey(cfg.LocalKey))
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}

	return &Service{
		aead:       aead,
		privateKey: privateKey,
		publicKey:  publicKey,
		issuer:     cfg.Issuer,
		accessAud:  cfg.AccessAudience,
		refreshAud: cfg.RefreshAudience,
	}, nil
}

// normalizeLocalKey zero-pads short keys and truncates long ones to the
// AES-256 key size. A short operator key is not strengthened by the padding;
// this keeps the established key-configuration contract.
func normalizeLocalKey(key string) []byte {
	normalized := make([]byte, localKeySize)
	copy(normalized, key)
	return normalized
}

// NewTokenID returns a fresh unique token ID (the jti claim, and the session
// ID for refresh tokens).
func NewTokenID() string {
	return uuid.NewString()
}

// GenerateAccessToken mints a v4.local token:
// "v4.local." + base64url(nonce || ciphertext||tag).
func (s *Service) GenerateAccessToken(userID uint, username string) (string, error) {
	now := time.Now().Unix()
	claims := &Claims{
		Issuer:    s.issuer,
		Subject:   strconv.FormatUint(uint64(userID), 10),
		Audience:  s.accessAud,
		ExpiresAt: now + int64(AccessTokenTTL/time.Second),
		IssuedAt:  now,
		NotBefore: now,
		TokenID:   NewTokenID(),
		Username:  username,
		TokenType: TokenTypeAccess,
	}

	return s.sealLocal(claims)
}

// sealLocal serializes claims and encrypts them under a fresh random nonce.
func (s *Service) sealLocal(claims *Claims) (string, error) {
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	sealed := s.aead.Seal(nil, nonce, payload, localAAD(nonce))
	return localPrefix + b64.EncodeToString(append(nonce, sealed...)), nil
}

// ValidateAccessToken decrypts and validates a v4.local token.
func (s *Service) ValidateAccessToken(token string) (*Claims, error) {
	raw, ok := strings.CutPrefix(token, localPrefix)
	if !ok {
		return nil, ErrInvalidToken
	}

	data, err := b64.DecodeString(raw)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if len(data) < s.aead.NonceSize()+s.aead.Overhead() {
		return nil, ErrInvalidToken
	}

	nonce, sealed := data[:s.aead.NonceSize()], data[s.aead.NonceSize():]
	payload, err := s.aead.Open(nil, nonce, sealed, localAAD(nonce))
	if err != nil {
		return nil, ErrInvalidToken
	}

	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, ErrInvalidToken
	}
	if err := s.validateClaims(&claims, TokenTypeAccess, s.accessAud); err != nil {
		return nil, err
	}
	return &claims, nil
}

// GenerateRefreshToken mints a v4.public token bound to tokenID:
// "v4.public." + base64url(payload || signature).
func (s *Service) GenerateRefreshToken(userID uint, username, tokenID string) (string, error) {
	now := time.Now().Unix()
	claims := &Claims{
		Issuer:    s.issuer,
		Subject:   strconv.FormatUint(uint64(userID), 10),
		Audience:  s.refreshAud,
		ExpiresAt: now + int64(RefreshTokenTTL/time.Second),
		IssuedAt:  now,
		NotBefore: now,
		TokenID:   tokenID,
		Username:  username,
		TokenType: TokenTypeRefresh,
	}

	return s.signPublic(claims)
}

// signPublic serializes claims and appends the fixed-length signature.
func (s *Service) signPublic(claims *Claims) (string, error) {
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}

	signature := ed25519.Sign(s.privateKey, payload)
	return publicPrefix + b64.EncodeToString(append(payload, signature...)), nil
}

// ValidateRefreshToken verifies and validates a v4.public token.
func (s *Service) ValidateRefreshToken(token string) (*Claims, error) {
	raw, ok := strings.CutPrefix(token, publicPrefix)
	if !ok {
		return nil, ErrInvalidToken
	}

	data, err := b64.DecodeString(raw)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if len(data) <= signatureSize {
		return nil, ErrInvalidToken
	}

	payload, signature := data[:len(data)-signatureSize], data[len(data)-signatureSize:]
	if !ed25519.Verify(s.publicKey, payload, signature) {
		return nil, ErrInvalidToken
	}

	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, ErrInvalidToken
	}
	if err := s.validateClaims(&claims, TokenTypeRefresh, s.refreshAud); err != nil {
		return nil, err
	}
	return &claims, nil
}

// localAAD binds the token header and nonce into the authentication tag.
func localAAD(nonce []byte) []byte {
	return append([]byte(localPrefix), nonce...)
}
