package signin_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/regdesk/pkg/auth"
	"github.com/dmitrymomot/regdesk/pkg/session"
	"github.com/dmitrymomot/regdesk/svc/directory"
)

// MockFlow is a mock implementation of signin.OAuthFlow.
type MockFlow struct {
	mock.Mock
}

func (m *MockFlow) Begin(ctx context.Context, s *session.Session) (string, error) {
	args := m.Called(ctx, s)
	return args.String(0), args.Error(1)
}

func (m *MockFlow) Complete(ctx context.Context, s *session.Session, code, state string) (*session.Identity, error) {
	args := m.Called(ctx, s, code, state)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*session.Identity), args.Error(1)
}

func (m *MockFlow) Reset(s *session.Session) error {
	return m.Called(s).Error(0)
}

// MockUserDirectory is a mock implementation of signin.UserDirectory.
type MockUserDirectory struct {
	mock.Mock
}

func (m *MockUserDirectory) Get(ctx context.Context, email string) (*directory.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*directory.User), args.Error(1)
}

// MockProvider is a mock implementation of auth.ProviderAdapter.
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) AuthURL(state string) string {
	return m.Called(state).String(0)
}

func (m *MockProvider) Exchange(ctx context.Context, code string) (string, error) {
	args := m.Called(ctx, code)
	return args.String(0), args.Error(1)
}

func (m *MockProvider) UserInfo(ctx context.Context, accessToken string) (auth.Profile, error) {
	args := m.Called(ctx, accessToken)
	return args.Get(0).(auth.Profile), args.Error(1)
}

// MockIdentityStore is a mock implementation of auth.IdentityStore.
type MockIdentityStore struct {
	mock.Mock
}

func (m *MockIdentityStore) Upsert(ctx context.Context, email, name, picture string) error {
	return m.Called(ctx, email, name, picture).Error(0)
}
