package directory_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/regdesk/pkg/records"
)

// MockRecordStore is a mock implementation of directory.RecordStore.
type MockRecordStore struct {
	mock.Mock
}

func (m *MockRecordStore) LoadAll(ctx context.Context) ([]records.Row, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]records.Row), args.Error(1)
}

func (m *MockRecordStore) Find(ctx context.Context, match func(records.Row) bool) (records.Row, int, error) {
	args := m.Called(ctx, match)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).(records.Row), args.Int(1), args.Error(2)
}

func (m *MockRecordStore) AppendRow(ctx context.Context, row records.Row) error {
	return m.Called(ctx, row).Error(0)
}

func (m *MockRecordStore) UpdateRow(ctx context.Context, pos int, row records.Row) error {
	return m.Called(ctx, pos, row).Error(0)
}
