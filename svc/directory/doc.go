// Package directory keeps one row per signed-in user in the users table.
//
// The table schema is [Email, Name, Picture]. Upsert is the only write path
// and keeps emails unique by looking the row up before writing. Rows added
// by other means can break that invariant; lookups return the first match,
// so such duplicates stay hidden rather than surfacing as errors.
package directory
