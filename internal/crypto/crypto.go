package crypto

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
)

// tokenBytes is the amount of randomness in a session token.
const tokenBytes = 32

// TokenService issues opaque bearer tokens and derives the digests under which
// they are stored, so a leaked sessions table does not leak usable tokens.
type TokenService struct {
	digestKey []byte
	random    io.Reader
}

// NewTokenService creates a token service.
// digestKey must be at least 32 bytes for HMAC-SHA256.
func NewTokenService(digestKey []byte) (*TokenService, error) {
	if len(digestKey) < 32 {
		return nil, errors.New("digest key must be at least 32 bytes")
	}
	return &TokenService{digestKey: digestKey, random: rand.Reader}, nil
}

// NewToken returns a fresh random token, base64url encoded without padding.
func (s *TokenService) NewToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := io.ReadFull(s.random, buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Digest creates a deterministic HMAC-SHA256 of the token for lookups.
func (s *TokenService) Digest(token string) string {
	if token == "" {
		return ""
	}
	h := hmac.New(sha256.New, s.digestKey)
	h.Write([]byte(token))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}
