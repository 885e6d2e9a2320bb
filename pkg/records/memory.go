package records

import (
	"context"
	"slices"
	"sync"
)

// MemoryBackend keeps tables in process memory. Used for development and tests.
type MemoryBackend struct {
	mu     sync.Mutex
	tables map[string]*MemoryTable
}

var _ Backend = (*MemoryBackend)(nil)

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{tables: make(map[string]*MemoryTable)}
}

func (b *MemoryBackend) OpenTable(_ context.Context, name string) (Table, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.tables[name]
	if !ok {
		return nil, ErrTableNotFound
	}
	return t, nil
}

// CreateTable returns the existing table when name is already present.
func (b *MemoryBackend) CreateTable(_ context.Context, name string) (Table, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if t, ok := b.tables[name]; ok {
		return t, nil
	}
	t := &MemoryTable{name: name}
	b.tables[name] = t
	return t, nil
}

// Table returns the named table, creating it if needed. Test helper for seeding rows.
func (b *MemoryBackend) Table(name string) *MemoryTable {
	t, _ := b.CreateTable(context.Background(), name)
	return t.(*MemoryTable)
}

// MemoryTable is a Table backed by a slice of rows.
type MemoryTable struct {
	mu   sync.Mutex
	name string
	rows [][]string
}

var _ Table = (*MemoryTable)(nil)

func (t *MemoryTable) Name() string { return t.name }

func (t *MemoryTable) Rows(ctx context.Context) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([][]string, len(t.rows))
	for i, r := range t.rows {
		out[i] = slices.Clone(r)
	}
	return out, nil
}

func (t *MemoryTable) WriteRow(ctx context.Context, pos int, values []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if pos < 1 {
		return ErrRowNotFound
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	for len(t.rows) < pos {
		t.rows = append(t.rows, nil)
	}
	t.rows[pos-1] = slices.Clone(values)
	return nil
}

func (t *MemoryTable) AppendRow(ctx context.Context, values []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	t.rows = append(t.rows, slices.Clone(values))
	return nil
}

// Seed replaces the table contents, header row included.
func (t *MemoryTable) Seed(rows ...[]string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.rows = make([][]string, len(rows))
	for i, r := range rows {
		t.rows[i] = slices.Clone(r)
	}
}
