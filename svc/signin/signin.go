package signin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/dmitrymomot/regdesk/pkg/auth"
	"github.com/dmitrymomot/regdesk/pkg/logger"
	"github.com/dmitrymomot/regdesk/pkg/session"
	"github.com/dmitrymomot/regdesk/pkg/token"
	"github.com/dmitrymomot/regdesk/svc/directory"
)

// Source tells how a request became authenticated.
type Source string

const (
	SourceNone          Source = "none"
	SourceSession       Source = "session"
	SourceRememberToken Source = "remember_token"
	SourceCallback      Source = "callback"
)

// Callback query parameters.
const (
	ParamCode  = "code"
	ParamState = "state"
	ParamError = "error"
)

// Result of Resolve. Remember is set for the remember-token and callback
// sources.
type Result struct {
	Source   Source
	Identity *session.Identity
	Remember *token.RememberToken
}

func (r Result) Authenticated() bool { return r.Identity != nil }

// OAuthFlow is implemented by *auth.Flow.
type OAuthFlow interface {
	Begin(ctx context.Context, s *session.Session) (string, error)
	Complete(ctx context.Context, s *session.Session, code, state string) (*session.Identity, error)
	Reset(s *session.Session) error
}

// UserDirectory is implemented by *directory.Directory.
type UserDirectory interface {
	Get(ctx context.Context, email string) (*directory.User, error)
}

// Manager resolves sign-in for one request at a time.
type Manager struct {
	flow   OAuthFlow
	users  UserDirectory
	signer *token.Signer
	logger *slog.Logger
}

type Option func(*Manager)

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

func New(flow OAuthFlow, users UserDirectory, signer *token.Signer, opts ...Option) *Manager {
	m := &Manager{flow: flow, users: users, signer: signer, logger: logger.Discard()}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With(logger.Component("signin"))
	return m
}

// Resolve authenticates s from the request query when it is not already,
// or when the query carries the callback of a login begun on s. Failures of the OAuth flow are returned as is; the session is left
// unauthenticated.
func (m *Manager) Resolve(ctx context.Context, s *session.Session, q url.Values) (Result, error) {
	if s == nil {
		return Result{Source: SourceNone}, ErrNilSession
	}
	// A signed-in user may be switching accounts: a callback for the
	// attempt in flight replaces the current identity.
	pending := auth.StateOf(s) == auth.StateAwaitingCallback
	if s.IsAuthenticated() && !(pending && q.Get(ParamCode) != "") {
		id := *s.Identity
		if pending && q.Get(ParamError) != "" {
			if err := auth.Restore(s, id); err != nil {
				return Result{Source: SourceNone}, err
			}
			m.logger.InfoContext(ctx, "account switch cancelled", slog.String("reason", q.Get(ParamError)))
		}
		return Result{Source: SourceSession, Identity: &id}, nil
	}

	if rt, ok := token.RememberFromQuery(q); ok {
		res, err := m.redeem(ctx, s, rt)
		if err != nil || res.Authenticated() {
			return res, err
		}
	}

	if q.Get(ParamError) != "" {
		if err := m.flow.Reset(s); err != nil {
			return Result{Source: SourceNone}, err
		}
		m.logger.InfoContext(ctx, "login cancelled", slog.String("reason", q.Get(ParamError)))
		return Result{Source: SourceNone}, ErrLoginCancelled
	}

	if code := q.Get(ParamCode); code != "" {
		id, err := m.flow.Complete(ctx, s, code, q.Get(ParamState))
		if err != nil {
			return Result{Source: SourceNone}, err
		}
		if id != nil {
			rt := m.signer.Remember(id.Email)
			return Result{Source: SourceCallback, Identity: id, Remember: &rt}, nil
		}
	}

	return Result{Source: SourceNone}, nil
}

// redeem returns an unauthenticated result when the token is invalid or its
// email is unknown, so resolution can continue.
func (m *Manager) redeem(ctx context.Context, s *session.Session, rt token.RememberToken) (Result, error) {
	none := Result{Source: SourceNone}
	if !m.signer.VerifyRemember(rt) {
		m.logger.WarnContext(ctx, "invalid remember token", logger.Email(rt.Email))
		return none, nil
	}

	u, err := m.users.Get(ctx, rt.Email)
	switch {
	case errors.Is(err, directory.ErrUserNotFound):
		m.logger.WarnContext(ctx, "remember token for unknown user", logger.Email(rt.Email))
		return none, nil
	case err != nil:
		return none, errors.Join(ErrDirectory, fmt.Errorf("lookup remembered user: %w", err))
	}

	id := session.Identity{Email: u.Email, Name: u.Name, Picture: u.Picture}
	if err := auth.Restore(s, id); err != nil {
		return none, err
	}
	m.logger.InfoContext(ctx, "signed in with remember token", logger.Email(id.Email))
	return Result{Source: SourceRememberToken, Identity: &id, Remember: &rt}, nil
}

// BeginLogin starts an OAuth attempt and returns the provider URL.
func (m *Manager) BeginLogin(ctx context.Context, s *session.Session) (string, error) {
	if s == nil {
		return "", ErrNilSession
	}
	return m.flow.Begin(ctx, s)
}

// Logout drops the identity and any pending login attempt from s.
func (m *Manager) Logout(ctx context.Context, s *session.Session) error {
	if s == nil {
		return ErrNilSession
	}
	email := s.Email()
	s.Logout()
	if email != "" {
		m.logger.InfoContext(ctx, "signed out", logger.Email(email))
	}
	return nil
}

// RememberQuery returns the u/t parameters for email.
func (m *Manager) RememberQuery(email string) url.Values {
	return m.signer.Remember(email).Query()
}

var (
	_ OAuthFlow     = (*auth.Flow)(nil)
	_ UserDirectory = (*directory.Directory)(nil)
)
