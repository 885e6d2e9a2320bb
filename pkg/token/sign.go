package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
)

// Sign returns the unpadded base64url HMAC-SHA256 of subject under secret.
func Sign(secret []byte, subject string) string {
	h := hmac.New(sha256.New, secret)
	h.Write([]byte(subject))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

// Verify reports whether tok is the signature of subject under secret.
func Verify(secret []byte, subject, tok string) bool {
	if tok == "" {
		return false
	}
	expected := Sign(secret, subject)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(tok)) == 1
}

// Signer binds a secret so callers don't pass it around.
type Signer struct {
	secret []byte
}

// NewSigner returns ErrMissingSecret for an empty secret.
func NewSigner(secret string) (*Signer, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	return &Signer{secret: []byte(secret)}, nil
}

func (s *Signer) Sign(subject string) string {
	return Sign(s.secret, subject)
}

func (s *Signer) Verify(subject, tok string) bool {
	return Verify(s.secret, subject, tok)
}
