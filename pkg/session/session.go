package session

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"
)

// Identity is the authenticated principal held by a session.
type Identity struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
}

// Session is the server-side state of one browser.
type Session struct {
	ID         string    `json:"id"`
	Identity   *Identity `json:"identity,omitempty"`
	CSRFState  string    `json:"csrf_state,omitempty"`
	LoginState string    `json:"login_state,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// New returns an anonymous session with a fresh random id.
func New(now time.Time, ttl time.Duration) (*Session, error) {
	id, err := generateID()
	if err != nil {
		return nil, err
	}
	return &Session{
		ID:        id,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}, nil
}

// IsAuthenticated reports whether an identity is attached.
func (s *Session) IsAuthenticated() bool {
	return s != nil && s.Identity != nil && s.Identity.Email != ""
}

// Email returns the authenticated email or "".
func (s *Session) Email() string {
	if !s.IsAuthenticated() {
		return ""
	}
	return s.Identity.Email
}

func (s *Session) IsExpired(now time.Time) bool {
	return s != nil && !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Authenticate attaches id. The pending CSRF state is dropped.
func (s *Session) Authenticate(id Identity) {
	s.Identity = &id
	s.CSRFState = ""
}

// Logout removes the identity and any pending CSRF state.
func (s *Session) Logout() {
	s.Identity = nil
	s.CSRFState = ""
	s.LoginState = ""
}

// Clone returns a deep copy.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	if s.Identity != nil {
		id := *s.Identity
		c.Identity = &id
	}
	return &c
}

func generateID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrIDGeneration, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
