package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/regdesk/pkg/logger"
	"github.com/dmitrymomot/regdesk/pkg/records"
	"github.com/dmitrymomot/regdesk/pkg/sanitizer"
	"github.com/dmitrymomot/regdesk/pkg/validator"
)

// RecordStore is the subset of *records.Store used here.
type RecordStore interface {
	LoadAll(ctx context.Context) ([]records.Row, error)
	Find(ctx context.Context, match func(records.Row) bool) (records.Row, int, error)
	AppendRow(ctx context.Context, row records.Row) error
	UpdateRow(ctx context.Context, pos int, row records.Row) error
}

// Ledger is the registration service.
type Ledger struct {
	store  RecordStore
	policy Policy
	fee    int
	now    func() time.Time
	newID  func() string
	logger *slog.Logger
}

type Option func(*Ledger)

func WithPolicy(p Policy) Option {
	return func(l *Ledger) {
		if p == PolicySingle || p == PolicyMulti {
			l.policy = p
		}
	}
}

// WithFee sets the amount charged for bought equipment.
func WithFee(fee int) Option {
	return func(l *Ledger) {
		if fee >= 0 {
			l.fee = fee
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

// WithIDGenerator replaces the uuid generator used for the ID column.
func WithIDGenerator(gen func() string) Option {
	return func(l *Ledger) {
		if gen != nil {
			l.newID = gen
		}
	}
}

func WithLogger(lg *slog.Logger) Option {
	return func(l *Ledger) {
		if lg != nil {
			l.logger = lg
		}
	}
}

// New creates a Ledger over store. Defaults: PolicySingle, DefaultFee.
func New(store RecordStore, opts ...Option) *Ledger {
	l := &Ledger{
		store:  store,
		policy: PolicySingle,
		fee:    DefaultFee,
		now:    time.Now,
		newID:  uuid.NewString,
		logger: logger.Discard(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.With(logger.Component("ledger"), slog.String("policy", string(l.policy)))
	return l
}

func (l *Ledger) Policy() Policy { return l.policy }
func (l *Ledger) Fee() int       { return l.fee }

// Register writes in according to the configured policy.
func (l *Ledger) Register(ctx context.Context, in Input) (*Registration, error) {
	if l.policy == PolicyMulti {
		return l.AppendIfNew(ctx, in)
	}
	return l.Upsert(ctx, in)
}

// Upsert keeps a single registration per email, overwriting the existing
// row when there is one.
func (l *Ledger) Upsert(ctx context.Context, in Input) (*Registration, error) {
	in, err := normalizeInput(in)
	if err != nil {
		return nil, err
	}

	existing, pos, err := l.store.Find(ctx, matchEmail(in.Email))
	switch {
	case errors.Is(err, records.ErrRowNotFound):
		return l.append(ctx, in)
	case err != nil:
		return nil, fmt.Errorf("ledger: lookup: %w", err)
	}

	id := existing.Get(ColID)
	if id == "" {
		id = l.newID()
	}
	row := l.toRow(id, in.Name, in.Email, in.Details)
	if err := l.store.UpdateRow(ctx, pos, row); err != nil {
		return nil, fmt.Errorf("ledger: update %s: %w", id, err)
	}
	l.logger.InfoContext(ctx, "registration updated",
		logger.Email(in.Email), logger.Position(pos))
	reg := l.fromRow(row)
	return &reg, nil
}

// AppendIfNew appends in unless a row with the same name, email, contact,
// shirt and equipment already exists.
func (l *Ledger) AppendIfNew(ctx context.Context, in Input) (*Registration, error) {
	in, err := normalizeInput(in)
	if err != nil {
		return nil, err
	}

	want := tupleOf(in.Name, in.Email, in.Details)
	_, _, err = l.store.Find(ctx, func(r records.Row) bool { return rowTuple(r) == want })
	switch {
	case err == nil:
		return nil, ErrDuplicateRegistration
	case !errors.Is(err, records.ErrRowNotFound):
		return nil, fmt.Errorf("ledger: duplicate check: %w", err)
	}
	return l.append(ctx, in)
}

func (l *Ledger) append(ctx context.Context, in Input) (*Registration, error) {
	row := l.toRow(l.newID(), in.Name, in.Email, in.Details)
	if err := l.store.AppendRow(ctx, row); err != nil {
		return nil, fmt.Errorf("ledger: append: %w", err)
	}
	l.logger.InfoContext(ctx, "registration added", logger.Email(in.Email))
	reg := l.fromRow(row)
	return &reg, nil
}

// Update changes the registration with the given id owned by email.
// A registration owned by someone else is reported as not found.
func (l *Ledger) Update(ctx context.Context, email, id string, d Details) (*Registration, error) {
	email = sanitizer.NormalizeEmail(email)
	if id == "" || email == "" {
		return nil, ErrRegistrationNotFound
	}
	d, err := normalizeDetails(d)
	if err != nil {
		return nil, err
	}

	match := matchEmail(email)
	existing, pos, err := l.store.Find(ctx, func(r records.Row) bool {
		return r.Get(ColID) == id && match(r)
	})
	if err != nil {
		return nil, l.lookupErr(err)
	}
	return l.rewrite(ctx, existing, pos, id, d)
}

// UpdateMatching changes the first registration of email whose details
// equal original. It serves rows that have no ID yet and assigns one.
func (l *Ledger) UpdateMatching(ctx context.Context, email string, original, d Details) (*Registration, error) {
	email = sanitizer.NormalizeEmail(email)
	if email == "" {
		return nil, ErrRegistrationNotFound
	}
	d, err := normalizeDetails(d)
	if err != nil {
		return nil, err
	}

	want := tupleOf("", email, original)
	existing, pos, err := l.store.Find(ctx, func(r records.Row) bool {
		return rowTuple(r).sameDetails(want)
	})
	if err != nil {
		return nil, l.lookupErr(err)
	}

	id := existing.Get(ColID)
	if id == "" {
		id = l.newID()
	}
	return l.rewrite(ctx, existing, pos, id, d)
}

// rewrite keeps the row's name and email and replaces the rest.
func (l *Ledger) rewrite(ctx context.Context, existing records.Row, pos int, id string, d Details) (*Registration, error) {
	name, email := existing.Get(ColName), existing.Get(ColEmail)

	// An unchanged save cannot create a duplicate, and for a legacy row
	// without an ID the row itself would match below.
	if want := tupleOf(name, email, d); l.policy == PolicyMulti && want != rowTuple(existing) {
		_, _, err := l.store.Find(ctx, func(r records.Row) bool {
			return r.Get(ColID) != id && rowTuple(r) == want
		})
		switch {
		case err == nil:
			return nil, ErrDuplicateRegistration
		case !errors.Is(err, records.ErrRowNotFound):
			return nil, fmt.Errorf("ledger: duplicate check: %w", err)
		}
	}

	row := l.toRow(id, name, email, d)
	if err := l.store.UpdateRow(ctx, pos, row); err != nil {
		if errors.Is(err, records.ErrRowNotFound) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("ledger: update %s: %w", id, err)
	}
	l.logger.InfoContext(ctx, "registration edited",
		logger.Email(email), logger.Position(pos))
	reg := l.fromRow(row)
	return &reg, nil
}

func (l *Ledger) lookupErr(err error) error {
	if errors.Is(err, records.ErrRowNotFound) {
		return ErrRegistrationNotFound
	}
	return fmt.Errorf("ledger: lookup: %w", err)
}

// ListByEmail returns the registrations of email in table order.
func (l *Ledger) ListByEmail(ctx context.Context, email string) ([]Registration, error) {
	email = sanitizer.NormalizeEmail(email)
	if email == "" {
		return nil, nil
	}
	return l.list(ctx, matchEmail(email))
}

// List returns every registration in table order.
func (l *Ledger) List(ctx context.Context) ([]Registration, error) {
	return l.list(ctx, func(records.Row) bool { return true })
}

func (l *Ledger) list(ctx context.Context, match func(records.Row) bool) ([]Registration, error) {
	rows, err := l.store.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("ledger: load: %w", err)
	}
	var regs []Registration
	for _, r := range rows {
		if match(r) {
			regs = append(regs, l.fromRow(r))
		}
	}
	return regs, nil
}

// Latest returns the last registration of email.
func (l *Ledger) Latest(ctx context.Context, email string) (*Registration, error) {
	regs, err := l.ListByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if len(regs) == 0 {
		return nil, ErrRegistrationNotFound
	}
	return &regs[len(regs)-1], nil
}

// Summary aggregates the registrations of email, or of everyone when email
// is empty.
func (l *Ledger) Summary(ctx context.Context, email string) (Summary, error) {
	var (
		regs []Registration
		err  error
	)
	if sanitizer.NormalizeEmail(email) == "" {
		regs, err = l.List(ctx)
	} else {
		regs, err = l.ListByEmail(ctx, email)
	}
	if err != nil {
		return Summary{}, err
	}

	var s Summary
	for _, r := range regs {
		s.Registrations++
		if r.Equipment == EquipmentBuy {
			s.Buying++
		}
		if r.ShirtNeeded {
			s.Shirts++
		}
		s.PendingTotal += r.PendingAmount
	}
	return s, nil
}

func normalizeInput(in Input) (Input, error) {
	in.Name = sanitizer.Trim(in.Name)
	in.Email = sanitizer.NormalizeEmail(in.Email)
	in.Contact = sanitizer.Trim(in.Contact)
	if eq, err := ParseEquipment(string(in.Equipment)); err == nil {
		in.Equipment = eq
	}
	if err := validator.Apply(
		validator.Required("name", in.Name),
		validator.MaxLen("name", in.Name, 200),
		validator.ValidEmail("email", in.Email),
		validator.Required("contact", in.Contact),
		validator.MaxLen("contact", in.Contact, 64),
		validator.NoControlChars("contact", in.Contact),
		validator.OneOf("equipment", in.Equipment, equipmentChoices),
	); err != nil {
		return in, err
	}
	return in, nil
}

func normalizeDetails(d Details) (Details, error) {
	d.Contact = sanitizer.Trim(d.Contact)
	if eq, err := ParseEquipment(string(d.Equipment)); err == nil {
		d.Equipment = eq
	}
	if err := validator.Apply(
		validator.Required("contact", d.Contact),
		validator.MaxLen("contact", d.Contact, 64),
		validator.NoControlChars("contact", d.Contact),
		validator.OneOf("equipment", d.Equipment, equipmentChoices),
	); err != nil {
		return d, err
	}
	return d, nil
}

func matchEmail(email string) func(records.Row) bool {
	return func(r records.Row) bool {
		return sanitizer.NormalizeEmail(r.Get(ColEmail)) == email
	}
}

var _ RecordStore = (*records.Store)(nil)
