package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/regdesk/pkg/logger"
)

// Manager loads and persists sessions for HTTP requests.
type Manager struct {
	store     Store
	transport Transport
	config    Config
	now       func() time.Time
	logger    *slog.Logger
}

// Option is a functional option for configuring the Manager
type Option func(*Manager)

func WithConfig(cfg Config) Option {
	return func(m *Manager) { m.config = cfg }
}

// WithTransport replaces the default cookie transport.
func WithTransport(t Transport) Option {
	return func(m *Manager) { m.transport = t }
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewManager creates a manager over store. A nil store means an in-memory one.
func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		config: DefaultConfig(),
		now:    time.Now,
		logger: logger.Discard(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.store == nil {
		m.store = NewMemoryStore()
	}
	if m.config.TTL <= 0 {
		m.config.TTL = DefaultConfig().TTL
	}
	if m.transport == nil {
		name := m.config.CookieName
		if name == "" {
			name = DefaultConfig().CookieName
		}
		m.transport = NewCookieTransport(name, m.config.SecureCookies)
	}
	return m
}

// Load returns the request's session, starting and persisting a new
// anonymous one when the id is missing, unknown or expired.
func (m *Manager) Load(ctx context.Context, w http.ResponseWriter, r *http.Request) (*Session, error) {
	if id, err := m.transport.GetID(r); err == nil {
		s, err := m.store.Get(ctx, id)
		switch {
		case err == nil && !s.IsExpired(m.now()):
			return s, nil
		case err == nil, errors.Is(err, ErrSessionNotFound):
			m.logger.DebugContext(ctx, "session missing or expired, starting a new one")
		default:
			return nil, err
		}
	}

	s, err := New(m.now(), m.config.TTL)
	if err != nil {
		return nil, err
	}
	if err := m.Save(ctx, w, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Save persists s, extends its expiry and refreshes the transport.
func (m *Manager) Save(ctx context.Context, w http.ResponseWriter, s *Session) error {
	if s == nil || s.ID == "" {
		return ErrInvalidSession
	}
	s.ExpiresAt = m.now().Add(m.config.TTL)
	if err := m.store.Save(ctx, s); err != nil {
		return err
	}
	m.transport.SetID(w, s.ID, m.config.TTL)
	return nil
}

// Rotate moves s to a new id, deleting the old record. Used after sign-in
// so a pre-login id cannot be fixated.
func (m *Manager) Rotate(ctx context.Context, w http.ResponseWriter, s *Session) error {
	id, err := generateID()
	if err != nil {
		return err
	}
	old := s.ID
	s.ID = id
	if err := m.Save(ctx, w, s); err != nil {
		s.ID = old
		return err
	}
	if err := m.store.Delete(ctx, old); err != nil {
		m.logger.WarnContext(ctx, "failed to delete rotated session", logger.Error(err))
	}
	return nil
}

// Destroy deletes s and clears the transport.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, s *Session) error {
	m.transport.ClearID(w)
	if s == nil || s.ID == "" {
		return nil
	}
	return m.store.Delete(ctx, s.ID)
}

// Middleware loads the session and exposes it through the request context.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, err := m.Load(r.Context(), w, r)
		if err != nil {
			m.logger.ErrorContext(r.Context(), "failed to load session", logger.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
	})
}
