package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/regdesk/pkg/logger"
	"github.com/dmitrymomot/regdesk/pkg/records"
	"github.com/dmitrymomot/regdesk/pkg/sanitizer"
)

// Column names of the users table.
const (
	ColEmail   = "Email"
	ColName    = "Name"
	ColPicture = "Picture"
)

// Headers is the users table schema.
var Headers = []string{ColEmail, ColName, ColPicture}

// User is one directory entry.
type User struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
}

// RecordStore is the subset of *records.Store used here.
type RecordStore interface {
	LoadAll(ctx context.Context) ([]records.Row, error)
	Find(ctx context.Context, match func(records.Row) bool) (records.Row, int, error)
	AppendRow(ctx context.Context, row records.Row) error
	UpdateRow(ctx context.Context, pos int, row records.Row) error
}

// Directory is the user directory service.
type Directory struct {
	store  RecordStore
	logger *slog.Logger
}

// Option configures a Directory.
type Option func(*Directory)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Directory) {
		if l != nil {
			d.logger = l
		}
	}
}

// New creates a Directory over store.
func New(store RecordStore, opts ...Option) *Directory {
	d := &Directory{store: store, logger: logger.Discard()}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With(logger.Component("directory"))
	return d
}

// Upsert records the user. The row for email is updated in place when it
// exists, otherwise a new row is appended. Repeating a call is a no-op.
func (d *Directory) Upsert(ctx context.Context, email, name, picture string) error {
	email = sanitizer.NormalizeEmail(email)
	if email == "" {
		return ErrInvalidEmail
	}
	row := records.Row{
		ColEmail:   email,
		ColName:    sanitizer.Trim(name),
		ColPicture: sanitizer.Trim(picture),
	}

	_, pos, err := d.store.Find(ctx, matchEmail(email))
	switch {
	case errors.Is(err, records.ErrRowNotFound):
		if err := d.store.AppendRow(ctx, row); err != nil {
			return fmt.Errorf("directory: add %s: %w", email, err)
		}
		d.logger.InfoContext(ctx, "user added", logger.Email(email))
		return nil
	case err != nil:
		return fmt.Errorf("directory: lookup: %w", err)
	}

	if err := d.store.UpdateRow(ctx, pos, row); err != nil {
		return fmt.Errorf("directory: update %s: %w", email, err)
	}
	d.logger.DebugContext(ctx, "user updated", logger.Email(email), logger.Position(pos))
	return nil
}

// Get returns the first entry for email.
func (d *Directory) Get(ctx context.Context, email string) (*User, error) {
	email = sanitizer.NormalizeEmail(email)
	if email == "" {
		return nil, ErrUserNotFound
	}
	rows, err := d.store.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("directory: load: %w", err)
	}
	match := matchEmail(email)
	for _, r := range rows {
		if match(r) {
			return userFromRow(r), nil
		}
	}
	return nil, ErrUserNotFound
}

// Exists reports whether email has an entry.
func (d *Directory) Exists(ctx context.Context, email string) (bool, error) {
	_, err := d.Get(ctx, email)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrUserNotFound):
		return false, nil
	default:
		return false, err
	}
}

// List returns every entry in table order.
func (d *Directory) List(ctx context.Context) ([]User, error) {
	rows, err := d.store.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("directory: load: %w", err)
	}
	users := make([]User, 0, len(rows))
	for _, r := range rows {
		users = append(users, *userFromRow(r))
	}
	return users, nil
}

func matchEmail(email string) func(records.Row) bool {
	return func(r records.Row) bool {
		return sanitizer.NormalizeEmail(r.Get(ColEmail)) == email
	}
}

func userFromRow(r records.Row) *User {
	return &User{
		Email:   sanitizer.NormalizeEmail(r.Get(ColEmail)),
		Name:    r.Get(ColName),
		Picture: r.Get(ColPicture),
	}
}

var _ RecordStore = (*records.Store)(nil)
