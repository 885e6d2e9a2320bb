package auth

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/regdesk/pkg/session"
)

func newSession(t *testing.T) *session.Session {
	t.Helper()
	s, err := session.New(time.Now(), time.Hour)
	require.NoError(t, err)
	return s
}

func TestFlow_Begin(t *testing.T) {
	t.Parallel()

	t.Run("stores a fresh state and returns provider url", func(t *testing.T) {
		t.Parallel()

		provider := &MockProvider{}
		provider.On("AuthURL", mock.AnythingOfType("string")).Return("https://accounts.example/auth")
		flow := NewFlow(provider, &MockIdentityStore{})
		s := newSession(t)

		url, err := flow.Begin(context.Background(), s)
		require.NoError(t, err)

		assert.Equal(t, "https://accounts.example/auth", url)
		assert.Len(t, s.CSRFState, 43)
		assert.Equal(t, StateAwaitingCallback, StateOf(s))
		provider.AssertCalled(t, "AuthURL", s.CSRFState)
	})

	t.Run("supersedes an earlier state", func(t *testing.T) {
		t.Parallel()

		provider := &MockProvider{}
		provider.On("AuthURL", mock.Anything).Return("u")
		flow := NewFlow(provider, &MockIdentityStore{})
		s := newSession(t)

		_, err := flow.Begin(context.Background(), s)
		require.NoError(t, err)
		first := s.CSRFState

		_, err = flow.Begin(context.Background(), s)
		require.NoError(t, err)
		assert.NotEqual(t, first, s.CSRFState)
		assert.Equal(t, StateAwaitingCallback, StateOf(s))
	})

	t.Run("restarts after failure", func(t *testing.T) {
		t.Parallel()

		provider := &MockProvider{}
		provider.On("AuthURL", mock.Anything).Return("u")
		flow := NewFlow(provider, &MockIdentityStore{})
		s := newSession(t)
		s.LoginState = string(StateFailed)

		_, err := flow.Begin(context.Background(), s)
		require.NoError(t, err)
		assert.Equal(t, StateAwaitingCallback, StateOf(s))
	})

	t.Run("entropy failure", func(t *testing.T) {
		t.Parallel()

		flow := NewFlow(&MockProvider{}, &MockIdentityStore{}, WithRandom(bytes.NewReader(nil)))
		s := newSession(t)

		_, err := flow.Begin(context.Background(), s)
		require.ErrorIs(t, err, ErrStateGeneration)
		assert.Empty(t, s.CSRFState)
		assert.Equal(t, StateIdle, StateOf(s))
	})

	t.Run("nil session", func(t *testing.T) {
		t.Parallel()

		_, err := NewFlow(&MockProvider{}, &MockIdentityStore{}).Begin(context.Background(), nil)
		require.ErrorIs(t, err, ErrNilSession)
	})
}

func TestFlow_Complete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	profile := Profile{Email: " Alice@Example.com ", Name: "Alice", Picture: "https://img/a.png", EmailVerified: true}

	started := func(t *testing.T, provider *MockProvider, flow *Flow) *session.Session {
		t.Helper()
		provider.On("AuthURL", mock.Anything).Return("u")
		s := newSession(t)
		_, err := flow.Begin(ctx, s)
		require.NoError(t, err)
		return s
	}

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		provider := &MockProvider{}
		store := &MockIdentityStore{}
		flow := NewFlow(provider, store)
		s := started(t, provider, flow)

		provider.On("Exchange", ctx, "code-1").Return("access", nil).Once()
		provider.On("UserInfo", ctx, "access").Return(profile, nil).Once()
		store.On("Upsert", ctx, "alice@example.com", "Alice", "https://img/a.png").Return(nil).Once()

		id, err := flow.Complete(ctx, s, "code-1", s.CSRFState)
		require.NoError(t, err)
		require.NotNil(t, id)

		assert.Equal(t, "alice@example.com", id.Email)
		assert.True(t, s.IsAuthenticated())
		assert.Equal(t, "alice@example.com", s.Email())
		assert.Empty(t, s.CSRFState)
		assert.Equal(t, StateAuthenticated, StateOf(s))
		provider.AssertExpectations(t)
		store.AssertNumberOfCalls(t, "Upsert", 1)
	})

	t.Run("missing code is a no-op", func(t *testing.T) {
		t.Parallel()

		provider := &MockProvider{}
		store := &MockIdentityStore{}
		flow := NewFlow(provider, store)
		s := started(t, provider, flow)
		before := s.Clone()

		id, err := flow.Complete(ctx, s, "", "whatever")
		require.NoError(t, err)
		assert.Nil(t, id)
		assert.Equal(t, before, s)
		provider.AssertNotCalled(t, "Exchange", mock.Anything, mock.Anything)
		store.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("state mismatch skips exchange", func(t *testing.T) {
		t.Parallel()

		provider := &MockProvider{}
		store := &MockIdentityStore{}
		flow := NewFlow(provider, store)
		s := started(t, provider, flow)

		id, err := flow.Complete(ctx, s, "code", "forged")
		require.ErrorIs(t, err, ErrStateMismatch)
		assert.Nil(t, id)
		assert.False(t, s.IsAuthenticated())
		assert.Empty(t, s.CSRFState)
		assert.Equal(t, StateFailed, StateOf(s))
		provider.AssertNotCalled(t, "Exchange", mock.Anything, mock.Anything)
	})

	t.Run("no recorded state proceeds", func(t *testing.T) {
		t.Parallel()

		provider := &MockProvider{}
		store := &MockIdentityStore{}
		flow := NewFlow(provider, store)
		s := newSession(t)

		provider.On("Exchange", ctx, "code").Return("access", nil)
		provider.On("UserInfo", ctx, "access").Return(profile, nil)
		store.On("Upsert", ctx, "alice@example.com", "Alice", "https://img/a.png").Return(nil)

		id, err := flow.Complete(ctx, s, "code", "")
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", id.Email)
		assert.Equal(t, StateAuthenticated, StateOf(s))
	})

	t.Run("strict mode requires a recorded state", func(t *testing.T) {
		t.Parallel()

		provider := &MockProvider{}
		flow := NewFlow(provider, &MockIdentityStore{}, WithStrictState(true))
		s := newSession(t)

		_, err := flow.Complete(ctx, s, "code", "anything")
		require.ErrorIs(t, err, ErrStateMismatch)
		assert.Equal(t, StateFailed, StateOf(s))
		provider.AssertNotCalled(t, "Exchange", mock.Anything, mock.Anything)
	})

	t.Run("exchange failure", func(t *testing.T) {
		t.Parallel()

		provider := &MockProvider{}
		store := &MockIdentityStore{}
		flow := NewFlow(provider, store)
		s := started(t, provider, flow)

		provider.On("Exchange", ctx, "code").Return("", errors.New("bad code"))

		_, err := flow.Complete(ctx, s, "code", s.CSRFState)
		require.ErrorIs(t, err, ErrTokenExchangeFailed)
		assert.Empty(t, s.CSRFState)
		assert.Equal(t, StateFailed, StateOf(s))
		provider.AssertNotCalled(t, "UserInfo", mock.Anything, mock.Anything)
		store.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("empty access token", func(t *testing.T) {
		t.Parallel()

		provider := &MockProvider{}
		flow := NewFlow(provider, &MockIdentityStore{})
		s := started(t, provider, flow)

		provider.On("Exchange", ctx, "code").Return("", nil)

		_, err := flow.Complete(ctx, s, "code", s.CSRFState)
		require.ErrorIs(t, err, ErrTokenExchangeFailed)
		assert.Equal(t, StateFailed, StateOf(s))
	})

	t.Run("userinfo failure", func(t *testing.T) {
		t.Parallel()

		provider := &MockProvider{}
		store := &MockIdentityStore{}
		flow := NewFlow(provider, store)
		s := started(t, provider, flow)

		provider.On("Exchange", ctx, "code").Return("access", nil)
		provider.On("UserInfo", ctx, "access").Return(Profile{}, errors.New("503"))

		_, err := flow.Complete(ctx, s, "code", s.CSRFState)
		require.ErrorIs(t, err, ErrUserInfoFailed)
		assert.False(t, s.IsAuthenticated())
		assert.Equal(t, StateFailed, StateOf(s))
		store.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("profile without email", func(t *testing.T) {
		t.Parallel()

		provider := &MockProvider{}
		flow := NewFlow(provider, &MockIdentityStore{})
		s := started(t, provider, flow)

		provider.On("Exchange", ctx, "code").Return("access", nil)
		provider.On("UserInfo", ctx, "access").Return(Profile{Name: "Nobody"}, nil)

		_, err := flow.Complete(ctx, s, "code", s.CSRFState)
		require.ErrorIs(t, err, ErrUserInfoFailed)
		require.ErrorIs(t, err, ErrMissingEmail)
	})

	t.Run("unverified email rejected when required", func(t *testing.T) {
		t.Parallel()

		provider := &MockProvider{}
		flow := NewFlow(provider, &MockIdentityStore{}, WithVerifiedOnly(true))
		s := started(t, provider, flow)

		unverified := profile
		unverified.EmailVerified = false
		provider.On("Exchange", ctx, "code").Return("access", nil)
		provider.On("UserInfo", ctx, "access").Return(unverified, nil)

		_, err := flow.Complete(ctx, s, "code", s.CSRFState)
		require.ErrorIs(t, err, ErrUnverifiedEmail)
		assert.False(t, s.IsAuthenticated())
	})

	t.Run("identity store failure keeps session anonymous", func(t *testing.T) {
		t.Parallel()

		provider := &MockProvider{}
		store := &MockIdentityStore{}
		flow := NewFlow(provider, store)
		s := started(t, provider, flow)

		storeErr := errors.New("sheet unavailable")
		provider.On("Exchange", ctx, "code").Return("access", nil)
		provider.On("UserInfo", ctx, "access").Return(profile, nil)
		store.On("Upsert", ctx, "alice@example.com", "Alice", "https://img/a.png").Return(storeErr).Once()

		_, err := flow.Complete(ctx, s, "code", s.CSRFState)
		require.ErrorIs(t, err, ErrIdentityStore)
		require.ErrorIs(t, err, storeErr)
		assert.False(t, s.IsAuthenticated())
		assert.Equal(t, StateFailed, StateOf(s))
		store.AssertNumberOfCalls(t, "Upsert", 1)
	})
}

func TestFlow_Reset(t *testing.T) {
	t.Parallel()

	flow := NewFlow(&MockProvider{}, &MockIdentityStore{})

	t.Run("failed to idle", func(t *testing.T) {
		t.Parallel()

		s := newSession(t)
		s.LoginState = string(StateFailed)
		require.NoError(t, flow.Reset(s))
		assert.Equal(t, StateIdle, StateOf(s))
	})

	t.Run("idle stays idle", func(t *testing.T) {
		t.Parallel()

		s := newSession(t)
		require.NoError(t, flow.Reset(s))
		assert.Equal(t, StateIdle, StateOf(s))
	})

	t.Run("nil session", func(t *testing.T) {
		t.Parallel()

		require.ErrorIs(t, flow.Reset(nil), ErrNilSession)
	})
}

func TestLoginTransitions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from, to LoginState
		allowed  bool
	}{
		{StateIdle, StateAwaitingCallback, true},
		{StateIdle, StateAuthenticated, false},
		{StateIdle, StateFailed, false},
		{StateAwaitingCallback, StateAuthenticated, true},
		{StateAwaitingCallback, StateFailed, true},
		{StateAuthenticated, StateIdle, true},
		{StateAuthenticated, StateFailed, false},
		{StateFailed, StateIdle, true},
		{StateFailed, StateAuthenticated, false},
		{StateFailed, StateAwaitingCallback, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to))
		})
	}
}

func TestStateOf(t *testing.T) {
	t.Parallel()

	s := newSession(t)
	assert.Equal(t, StateIdle, StateOf(s))
	assert.Equal(t, StateIdle, StateOf(nil))

	s.Authenticate(session.Identity{Email: "a@b.c"})
	assert.Equal(t, StateAuthenticated, StateOf(s), "restored sessions without a recorded state are authenticated")

	s.LoginState = "bogus"
	assert.Equal(t, StateAuthenticated, StateOf(s))
}

func TestRestore(t *testing.T) {
	t.Parallel()

	s := newSession(t)
	s.LoginState = string(StateAwaitingCallback)
	s.CSRFState = "pending"

	require.NoError(t, Restore(s, session.Identity{Email: "alice@example.com", Name: "Alice"}))
	assert.True(t, s.IsAuthenticated())
	assert.Empty(t, s.CSRFState)
	assert.Equal(t, StateAuthenticated, StateOf(s))

	assert.ErrorIs(t, Restore(nil, session.Identity{}), ErrNilSession)
}
