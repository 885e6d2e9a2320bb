package records

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/dmitrymomot/regdesk/pkg/cache"
	"github.com/dmitrymomot/regdesk/pkg/logger"
)

// Store is a schema-bound view over one table.
type Store struct {
	table        Table
	schema       Schema
	provisioning Provisioning
	cacheTTL     time.Duration
	cache        *cache.LRUCache[string, []Row]
	now          func() time.Time
	logger       *slog.Logger
}

// Open resolves the named table according to the provisioning policy and
// makes sure its header row matches headers.
func Open(ctx context.Context, backend Backend, name string, headers []string, opts ...Option) (*Store, error) {
	if len(headers) == 0 {
		return nil, errors.Join(ErrConfiguration, ErrEmptySchema)
	}

	s := &Store{
		schema:       Schema(slices.Clone(headers)),
		provisioning: ProvisionStrict,
		cacheTTL:     DefaultCacheTTL,
		now:          time.Now,
		logger:       logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil && s.cacheTTL > 0 {
		s.cache = cache.NewLRUCache[string, []Row](1,
			cache.WithTTL(s.cacheTTL),
			cache.WithClock(s.now),
		)
	}
	s.logger = s.logger.With(logger.Component("records"), logger.Table(name))

	table, err := backend.OpenTable(ctx, name)
	switch {
	case errors.Is(err, ErrTableNotFound) && s.provisioning == ProvisionAuto:
		s.logger.InfoContext(ctx, "creating missing table")
		table, err = backend.CreateTable(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("%w: create table %q: %w", ErrConfiguration, name, err)
		}
	case errors.Is(err, ErrTableNotFound):
		return nil, fmt.Errorf("%w: table %q does not exist and provisioning is %s: %w",
			ErrConfiguration, name, s.provisioning, err)
	case err != nil:
		return nil, fmt.Errorf("%w: open table %q: %w", ErrConfiguration, name, err)
	}
	s.table = table

	if err := s.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Name returns the underlying table name.
func (s *Store) Name() string { return s.table.Name() }

// Schema returns a copy of the column headers.
func (s *Store) Schema() Schema { return slices.Clone(s.schema) }

// EnsureSchema writes the headers to row 1 when the table is empty, and
// overwrites row 1 when it differs from the headers after padding or
// truncating it to the schema width. Existing data rows are not migrated.
func (s *Store) EnsureSchema(ctx context.Context) error {
	defer s.invalidate()

	raw, err := s.table.Rows(ctx)
	if err != nil {
		return fmt.Errorf("records: read header of %q: %w", s.Name(), err)
	}

	if len(raw) == 0 || isBlank(raw[0]) {
		if err := s.table.WriteRow(ctx, 1, s.schema); err != nil {
			return fmt.Errorf("records: write header of %q: %w", s.Name(), err)
		}
		s.logger.DebugContext(ctx, "header row written")
		return nil
	}

	current := s.schema.headerRow(trimAll(raw[0]))
	if slices.Equal(current, []string(s.schema)) {
		return nil
	}
	if err := s.table.WriteRow(ctx, 1, s.schema); err != nil {
		return fmt.Errorf("records: rewrite header of %q: %w", s.Name(), err)
	}
	s.logger.WarnContext(ctx, "header row replaced",
		slog.Any("previous", raw[0]),
		slog.Any("headers", []string(s.schema)),
	)
	return nil
}

// LoadAll returns every non-blank data row. Results are served from cache
// until the TTL passes or a write through this store invalidates them.
func (s *Store) LoadAll(ctx context.Context) ([]Row, error) {
	if s.cache != nil {
		if rows, ok := s.cache.Get(s.Name()); ok {
			return cloneRows(rows), nil
		}
	}

	raw, err := s.table.Rows(ctx)
	if err != nil {
		return nil, fmt.Errorf("records: load %q: %w", s.Name(), err)
	}

	rows := make([]Row, 0, max(len(raw)-1, 0))
	for _, cells := range dataRows(raw) {
		if isBlank(cells) {
			continue
		}
		rows = append(rows, s.schema.Row(cells))
	}

	if s.cache != nil {
		s.cache.Put(s.Name(), rows)
	}
	return cloneRows(rows), nil
}

// FindByKey returns the first data row whose column equals value, with its
// 1-based position. It always reads fresh rows.
func (s *Store) FindByKey(ctx context.Context, column, value string) (Row, int, error) {
	if !s.schema.Has(column) {
		return nil, 0, fmt.Errorf("%w: %q", ErrUnknownColumn, column)
	}
	return s.Find(ctx, func(r Row) bool {
		return r.Get(column) == value
	})
}

// Find returns the first data row matching match, with its 1-based
// position. It always reads fresh rows.
func (s *Store) Find(ctx context.Context, match func(Row) bool) (Row, int, error) {
	raw, err := s.table.Rows(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("records: scan %q: %w", s.Name(), err)
	}
	for i, cells := range dataRows(raw) {
		if isBlank(cells) {
			continue
		}
		row := s.schema.Row(cells)
		if match(row) {
			return row, i + 2, nil
		}
	}
	return nil, 0, ErrRowNotFound
}

// AppendRow adds row after the last row. No uniqueness check is made.
func (s *Store) AppendRow(ctx context.Context, row Row) error {
	values, err := s.schema.Values(row)
	if err != nil {
		return err
	}

	defer s.invalidate()
	if err := s.table.AppendRow(ctx, values); err != nil {
		return fmt.Errorf("records: append to %q: %w", s.Name(), err)
	}
	s.logger.DebugContext(ctx, "row appended")
	return nil
}

// UpdateRow overwrites the data row at pos. Positions below 2 or past the
// last row yield ErrRowNotFound.
func (s *Store) UpdateRow(ctx context.Context, pos int, row Row) error {
	values, err := s.schema.Values(row)
	if err != nil {
		return err
	}
	if pos < 2 {
		return ErrRowNotFound
	}

	raw, err := s.table.Rows(ctx)
	if err != nil {
		return fmt.Errorf("records: scan %q: %w", s.Name(), err)
	}
	if pos > len(raw) {
		return ErrRowNotFound
	}

	defer s.invalidate()
	if err := s.table.WriteRow(ctx, pos, values); err != nil {
		return fmt.Errorf("records: update %q row %d: %w", s.Name(), pos, err)
	}
	s.logger.DebugContext(ctx, "row updated", logger.Position(pos))
	return nil
}

// Invalidate drops the cached snapshot so the next LoadAll reads the backend.
func (s *Store) Invalidate() { s.invalidate() }

func (s *Store) invalidate() {
	if s.cache != nil {
		s.cache.Remove(s.Name())
	}
}

func dataRows(raw [][]string) [][]string {
	if len(raw) < 2 {
		return nil
	}
	return raw[1:]
}

func cloneRows(rows []Row) []Row {
	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = r.Clone()
	}
	return out
}

func trimAll(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.TrimSpace(c)
	}
	return out
}
