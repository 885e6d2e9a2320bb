// Package mongo connects to MongoDB and implements records.Backend on two
// collections: record_tables keeps one document per table with the last
// used row position, record_rows keeps one document per row keyed by
// (table, position).
//
// Appends reserve a position with an atomic $inc on the table document, so
// concurrent appends never collide. Row overwrites are upserts by position.
package mongo
