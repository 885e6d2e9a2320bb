package records_test

import (
	"context"
	"sync/atomic"

	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/regdesk/pkg/records"
)

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) OpenTable(ctx context.Context, name string) (records.Table, error) {
	args := m.Called(ctx, name)
	if t := args.Get(0); t != nil {
		return t.(records.Table), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBackend) CreateTable(ctx context.Context, name string) (records.Table, error) {
	args := m.Called(ctx, name)
	if t := args.Get(0); t != nil {
		return t.(records.Table), args.Error(1)
	}
	return nil, args.Error(1)
}

// countingTable wraps a table and counts reads so cache behaviour can be observed.
type countingTable struct {
	records.Table
	reads atomic.Int32
}

func (c *countingTable) Rows(ctx context.Context) ([][]string, error) {
	c.reads.Add(1)
	return c.Table.Rows(ctx)
}

type countingBackend struct {
	*records.MemoryBackend
	tables map[string]*countingTable
}

func newCountingBackend() *countingBackend {
	return &countingBackend{
		MemoryBackend: records.NewMemoryBackend(),
		tables:        make(map[string]*countingTable),
	}
}

func (b *countingBackend) OpenTable(ctx context.Context, name string) (records.Table, error) {
	t, err := b.MemoryBackend.OpenTable(ctx, name)
	if err != nil {
		return nil, err
	}
	return b.wrap(name, t), nil
}

func (b *countingBackend) CreateTable(ctx context.Context, name string) (records.Table, error) {
	t, err := b.MemoryBackend.CreateTable(ctx, name)
	if err != nil {
		return nil, err
	}
	return b.wrap(name, t), nil
}

func (b *countingBackend) wrap(name string, t records.Table) *countingTable {
	if ct, ok := b.tables[name]; ok {
		return ct
	}
	ct := &countingTable{Table: t}
	b.tables[name] = ct
	return ct
}
