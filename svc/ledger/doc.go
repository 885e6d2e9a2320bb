// Package ledger records workshop registrations in the registrations table.
//
// The table schema is [Name, Email, Contact, ShirtNeeded, EquipmentChoice,
// PendingAmount, Timestamp, ID]. Two write policies are supported:
//
//   - PolicySingle keeps one registration per email and overwrites it on
//     every submission.
//   - PolicyMulti appends a row per submission and rejects an exact
//     duplicate of an existing one with ErrDuplicateRegistration.
//
// The pending amount is never taken from the caller. It is derived from the
// equipment choice and the configured fee on every write and every read.
//
// Rows are addressed by the ID column. Rows written before that column
// existed have no ID and are located by UpdateMatching, which assigns one.
//
// No lock spans the read and the write of a single operation, so two
// concurrent edits of the same row resolve as last write wins.
package ledger
