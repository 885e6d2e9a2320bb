// Package pg connects to PostgreSQL with pgx/v5, applies the embedded goose
// migrations and implements records.Backend on two tables:
//
//	record_tables(name)                        one row per logical table
//	record_rows(table_name, position, cells)   one row per table row, cells as text[]
//
// Positions follow spreadsheet addressing: 1 is the header row. Appends
// lock the owning record_tables row so concurrent appends to one table get
// consecutive positions. Updates are plain upserts by position, so a
// find-then-update sequence is still last-write-wins across writers.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil { ... }
//	if err := pg.Migrate(ctx, pool, cfg, log); err != nil { ... }
//	store, err := records.Open(ctx, pg.NewBackend(pool), "Users", headers)
package pg
