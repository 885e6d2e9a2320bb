package pg

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/regdesk/pkg/records"
)

// DB is the subset of *pgxpool.Pool the backend needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

var _ DB = (*pgxpool.Pool)(nil)

// Backend stores record tables in PostgreSQL.
type Backend struct {
	db DB
}

var _ records.Backend = (*Backend)(nil)

func NewBackend(db DB) *Backend {
	return &Backend{db: db}
}

const (
	selectTableSQL = `SELECT name FROM record_tables WHERE name = $1`
	insertTableSQL = `INSERT INTO record_tables (name) VALUES ($1)`
	lockTableSQL   = `SELECT name FROM record_tables WHERE name = $1 FOR UPDATE`
	selectRowsSQL  = `SELECT position, cells FROM record_rows WHERE table_name = $1 ORDER BY position`
	nextPosSQL     = `SELECT COALESCE(MAX(position), 0) + 1 FROM record_rows WHERE table_name = $1`
	insertRowSQL   = `INSERT INTO record_rows (table_name, position, cells) VALUES ($1, $2, $3)`
	upsertRowSQL   = `
		INSERT INTO record_rows (table_name, position, cells)
		VALUES ($1, $2, $3)
		ON CONFLICT (table_name, position)
		DO UPDATE SET cells = EXCLUDED.cells, updated_at = now()`
)

func (b *Backend) OpenTable(ctx context.Context, name string) (records.Table, error) {
	var found string
	if err := b.db.QueryRow(ctx, selectTableSQL, name).Scan(&found); err != nil {
		if IsNotFoundError(err) {
			return nil, records.ErrTableNotFound
		}
		return nil, fmt.Errorf("pg: open table %q: %w", name, err)
	}
	return &Table{db: b.db, name: found}, nil
}

// CreateTable registers name. An existing table is returned as is.
func (b *Backend) CreateTable(ctx context.Context, name string) (records.Table, error) {
	if _, err := b.db.Exec(ctx, insertTableSQL, name); err != nil && !IsDuplicateKeyError(err) {
		return nil, fmt.Errorf("pg: create table %q: %w", name, err)
	}
	return &Table{db: b.db, name: name}, nil
}

// Table is one logical table inside record_rows.
type Table struct {
	db   DB
	name string
}

var _ records.Table = (*Table)(nil)

func (t *Table) Name() string { return t.name }

// Rows returns rows in position order. Missing positions come back as
// empty rows so indexes line up with positions.
func (t *Table) Rows(ctx context.Context) ([][]string, error) {
	rows, err := t.db.Query(ctx, selectRowsSQL, t.name)
	if err != nil {
		return nil, fmt.Errorf("pg: read %q: %w", t.name, err)
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		var (
			pos   int
			cells []string
		)
		if err := rows.Scan(&pos, &cells); err != nil {
			return nil, fmt.Errorf("pg: scan %q: %w", t.name, err)
		}
		for len(out) < pos-1 {
			out = append(out, []string{})
		}
		out = append(out, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pg: read %q: %w", t.name, err)
	}
	return out, nil
}

func (t *Table) WriteRow(ctx context.Context, pos int, values []string) error {
	if pos < 1 {
		return records.ErrRowNotFound
	}
	if _, err := t.db.Exec(ctx, upsertRowSQL, t.name, pos, cellsOf(values)); err != nil {
		return fmt.Errorf("pg: write %q row %d: %w", t.name, pos, err)
	}
	return nil
}

// AppendRow locks the table entry so concurrent appends get distinct,
// consecutive positions.
func (t *Table) AppendRow(ctx context.Context, values []string) error {
	err := pgx.BeginFunc(ctx, t.db, func(tx pgx.Tx) error {
		var name string
		if err := tx.QueryRow(ctx, lockTableSQL, t.name).Scan(&name); err != nil {
			if IsNotFoundError(err) {
				return records.ErrTableNotFound
			}
			return err
		}
		var pos int
		if err := tx.QueryRow(ctx, nextPosSQL, t.name).Scan(&pos); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, insertRowSQL, t.name, pos, cellsOf(values))
		return err
	})
	if err != nil {
		return fmt.Errorf("pg: append to %q: %w", t.name, err)
	}
	return nil
}

// cellsOf never returns nil so the NOT NULL column gets an empty array.
func cellsOf(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
