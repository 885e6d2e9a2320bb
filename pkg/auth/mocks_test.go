package auth

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockProvider is a mock implementation of ProviderAdapter.
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) AuthURL(state string) string {
	args := m.Called(state)
	return args.String(0)
}

func (m *MockProvider) Exchange(ctx context.Context, code string) (string, error) {
	args := m.Called(ctx, code)
	return args.String(0), args.Error(1)
}

func (m *MockProvider) UserInfo(ctx context.Context, accessToken string) (Profile, error) {
	args := m.Called(ctx, accessToken)
	return args.Get(0).(Profile), args.Error(1)
}

// MockIdentityStore is a mock implementation of IdentityStore.
type MockIdentityStore struct {
	mock.Mock
}

func (m *MockIdentityStore) Upsert(ctx context.Context, email, name, picture string) error {
	args := m.Called(ctx, email, name, picture)
	return args.Error(0)
}
