package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/dmitrymomot/regdesk/pkg/logger"
	"github.com/dmitrymomot/regdesk/pkg/sanitizer"
	"github.com/dmitrymomot/regdesk/pkg/session"
)

const stateBytes = 32

// Flow runs the OAuth authorization code flow for one provider.
type Flow struct {
	provider     ProviderAdapter
	identities   IdentityStore
	logger       *slog.Logger
	random       io.Reader
	verifiedOnly bool
	strictState  bool
}

// FlowOption configures a Flow.
type FlowOption func(*Flow)

// WithLogger sets the logger. Defaults to a discard logger.
func WithLogger(l *slog.Logger) FlowOption {
	return func(f *Flow) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithVerifiedOnly rejects profiles whose email the provider has not verified.
func WithVerifiedOnly(v bool) FlowOption {
	return func(f *Flow) {
		f.verifiedOnly = v
	}
}

// WithStrictState rejects callbacks for sessions that never called Begin.
func WithStrictState(v bool) FlowOption {
	return func(f *Flow) {
		f.strictState = v
	}
}

// WithRandom replaces the state entropy source.
func WithRandom(r io.Reader) FlowOption {
	return func(f *Flow) {
		if r != nil {
			f.random = r
		}
	}
}

// NewFlow creates a Flow over provider. identities receives every successful login.
func NewFlow(provider ProviderAdapter, identities IdentityStore, opts ...FlowOption) *Flow {
	f := &Flow{
		provider:   provider,
		identities: identities,
		logger:     logger.Discard(),
		random:     rand.Reader,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Begin starts a login attempt. Any state issued earlier for s is superseded.
func (f *Flow) Begin(ctx context.Context, s *session.Session) (string, error) {
	if s == nil {
		return "", ErrNilSession
	}
	state, err := f.newState()
	if err != nil {
		return "", err
	}
	if err := transition(s, StateAwaitingCallback); err != nil {
		return "", err
	}
	s.CSRFState = state

	f.logger.DebugContext(ctx, "oauth login started", logger.Component("auth"))
	return f.provider.AuthURL(state), nil
}

// Complete handles the provider callback.
//
// An empty code means the request is not a callback: it returns (nil, nil)
// and leaves s untouched. On success the identity is recorded in the
// IdentityStore and attached to s.
func (f *Flow) Complete(ctx context.Context, s *session.Session, code, state string) (*session.Identity, error) {
	if s == nil {
		return nil, ErrNilSession
	}
	if code == "" {
		return nil, nil
	}

	expected := s.CSRFState
	if StateOf(s) != StateAwaitingCallback {
		if err := transition(s, StateAwaitingCallback); err != nil {
			return nil, err
		}
	}

	if expected == "" && f.strictState {
		return nil, f.fail(ctx, s, fmt.Errorf("%w: no login in progress", ErrStateMismatch))
	}
	if expected != "" && subtle.ConstantTimeCompare([]byte(expected), []byte(state)) != 1 {
		return nil, f.fail(ctx, s, ErrStateMismatch)
	}

	accessToken, err := f.provider.Exchange(ctx, code)
	if err != nil {
		return nil, f.fail(ctx, s, ensure(err, ErrTokenExchangeFailed))
	}
	if accessToken == "" {
		return nil, f.fail(ctx, s, fmt.Errorf("%w: empty access token", ErrTokenExchangeFailed))
	}

	profile, err := f.provider.UserInfo(ctx, accessToken)
	if err != nil {
		return nil, f.fail(ctx, s, ensure(err, ErrUserInfoFailed))
	}

	email := sanitizer.NormalizeEmail(profile.Email)
	if email == "" {
		return nil, f.fail(ctx, s, errors.Join(ErrUserInfoFailed, ErrMissingEmail))
	}
	if f.verifiedOnly && !profile.EmailVerified {
		return nil, f.fail(ctx, s, ErrUnverifiedEmail)
	}

	id := session.Identity{
		Email:   email,
		Name:    sanitizer.Trim(profile.Name),
		Picture: sanitizer.Trim(profile.Picture),
	}
	if err := f.identities.Upsert(ctx, id.Email, id.Name, id.Picture); err != nil {
		return nil, f.fail(ctx, s, errors.Join(ErrIdentityStore, err))
	}

	if err := transition(s, StateAuthenticated); err != nil {
		return nil, err
	}
	s.Authenticate(id)

	f.logger.InfoContext(ctx, "oauth login completed",
		logger.Component("auth"),
		logger.Email(id.Email),
	)
	return &id, nil
}

// Reset returns a failed attempt to Idle. Idle sessions are left as they are.
func (f *Flow) Reset(s *session.Session) error {
	if s == nil {
		return ErrNilSession
	}
	if StateOf(s) == StateIdle {
		return nil
	}
	if err := transition(s, StateIdle); err != nil {
		return err
	}
	s.CSRFState = ""
	return nil
}

func (f *Flow) fail(ctx context.Context, s *session.Session, err error) error {
	s.CSRFState = ""
	if terr := transition(s, StateFailed); terr != nil {
		return errors.Join(err, terr)
	}
	f.logger.WarnContext(ctx, "oauth login failed",
		logger.Component("auth"),
		logger.Error(err),
	)
	return err
}

func (f *Flow) newState() (string, error) {
	b := make([]byte, stateBytes)
	if _, err := io.ReadFull(f.random, b); err != nil {
		return "", errors.Join(ErrStateGeneration, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func ensure(err, target error) error {
	if errors.Is(err, target) {
		return err
	}
	return errors.Join(target, err)
}
