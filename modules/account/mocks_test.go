package account_test

import (
	"context"
	"net/http"
	"net/url"

	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/regdesk/pkg/session"
	"github.com/dmitrymomot/regdesk/svc/directory"
	"github.com/dmitrymomot/regdesk/svc/signin"
)

type MockSignIn struct {
	mock.Mock
}

func (m *MockSignIn) Resolve(ctx context.Context, s *session.Session, q url.Values) (signin.Result, error) {
	args := m.Called(ctx, s, q)
	return args.Get(0).(signin.Result), args.Error(1)
}

func (m *MockSignIn) BeginLogin(ctx context.Context, s *session.Session) (string, error) {
	args := m.Called(ctx, s)
	return args.String(0), args.Error(1)
}

func (m *MockSignIn) Logout(ctx context.Context, s *session.Session) error {
	return m.Called(ctx, s).Error(0)
}

type MockSessions struct {
	mock.Mock
}

func (m *MockSessions) Save(ctx context.Context, w http.ResponseWriter, s *session.Session) error {
	return m.Called(ctx, w, s).Error(0)
}

func (m *MockSessions) Rotate(ctx context.Context, w http.ResponseWriter, s *session.Session) error {
	return m.Called(ctx, w, s).Error(0)
}

type MockUsers struct {
	mock.Mock
}

func (m *MockUsers) Get(ctx context.Context, email string) (*directory.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*directory.User), args.Error(1)
}

func (m *MockUsers) Upsert(ctx context.Context, email, name, picture string) error {
	return m.Called(ctx, email, name, picture).Error(0)
}
