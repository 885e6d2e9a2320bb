package records

import "errors"

var (
	// ErrTableNotFound is returned by backends when the named table does not exist.
	ErrTableNotFound = errors.New("records: table not found")
	// ErrAccessDenied is returned by backends when the table exists but cannot be used.
	ErrAccessDenied = errors.New("records: access to table denied")
	// ErrConfiguration marks a store that cannot be opened as configured.
	// It is fatal at startup.
	ErrConfiguration = errors.New("records: store misconfigured")
	ErrRowNotFound   = errors.New("records: row not found")
	ErrUnknownColumn = errors.New("records: unknown column")
	ErrEmptySchema   = errors.New("records: schema has no columns")
)
