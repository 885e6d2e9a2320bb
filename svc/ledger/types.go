package ledger

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrymomot/regdesk/pkg/records"
	"github.com/dmitrymomot/regdesk/pkg/sanitizer"
)

// Column names of the registrations table.
const (
	ColName      = "Name"
	ColEmail     = "Email"
	ColContact   = "Contact"
	ColShirt     = "ShirtNeeded"
	ColEquipment = "EquipmentChoice"
	ColPending   = "PendingAmount"
	ColTimestamp = "Timestamp"
	ColID        = "ID"
)

// Headers is the registrations table schema.
var Headers = []string{ColName, ColEmail, ColContact, ColShirt, ColEquipment, ColPending, ColTimestamp, ColID}

const (
	// DefaultFee is charged when equipment is bought.
	DefaultFee = 200
	// TimestampLayout is the format of the Timestamp column.
	TimestampLayout = "2006-01-02 15:04:05"
)

type Equipment string

const (
	EquipmentReturn Equipment = "Return"
	EquipmentBuy    Equipment = "Buy"
)

var equipmentChoices = []Equipment{EquipmentReturn, EquipmentBuy}

// ParseEquipment accepts "return" or "buy" in any case.
func ParseEquipment(s string) (Equipment, error) {
	for _, e := range equipmentChoices {
		if strings.EqualFold(strings.TrimSpace(s), string(e)) {
			return e, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidEquipment, s)
}

// Policy selects how Register writes.
type Policy string

const (
	PolicySingle Policy = "single"
	PolicyMulti  Policy = "multi"
)

func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicySingle, PolicyMulti:
		return p, nil
	case "":
		return PolicySingle, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPolicy, s)
	}
}

// Details are the fields a registrant may change.
type Details struct {
	Contact     string    `json:"contact"`
	ShirtNeeded bool      `json:"shirt_needed"`
	Equipment   Equipment `json:"equipment"`
}

// Input is a new submission.
type Input struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Details
}

// Registration is one row of the ledger.
type Registration struct {
	ID            string    `json:"id,omitempty"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Contact       string    `json:"contact"`
	ShirtNeeded   bool      `json:"shirt_needed"`
	Equipment     Equipment `json:"equipment"`
	PendingAmount int       `json:"pending_amount"`
	UpdatedAt     time.Time `json:"updated_at,omitzero"`
}

// Details returns the editable part of r.
func (r Registration) Details() Details {
	return Details{Contact: r.Contact, ShirtNeeded: r.ShirtNeeded, Equipment: r.Equipment}
}

// Summary aggregates registrations for billing.
type Summary struct {
	Registrations int `json:"registrations"`
	Buying        int `json:"buying"`
	Shirts        int `json:"shirts"`
	PendingTotal  int `json:"pending_total"`
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func parseYesNo(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true", "1":
		return true
	}
	return false
}

func (l *Ledger) pending(e Equipment) int {
	if e == EquipmentBuy {
		return l.fee
	}
	return 0
}

func (l *Ledger) toRow(id, name, email string, d Details) records.Row {
	return records.Row{
		ColName:      sanitizer.Trim(name),
		ColEmail:     sanitizer.NormalizeEmail(email),
		ColContact:   sanitizer.Trim(d.Contact),
		ColShirt:     yesNo(d.ShirtNeeded),
		ColEquipment: string(d.Equipment),
		ColPending:   strconv.Itoa(l.pending(d.Equipment)),
		ColTimestamp: l.now().Format(TimestampLayout),
		ColID:        id,
	}
}

// fromRow decodes a row. The stored PendingAmount cell is ignored in favour
// of the amount derived from the equipment choice.
func (l *Ledger) fromRow(r records.Row) Registration {
	eq, err := ParseEquipment(r.Get(ColEquipment))
	if err != nil {
		eq = Equipment(r.Get(ColEquipment))
	}
	reg := Registration{
		ID:            r.Get(ColID),
		Name:          r.Get(ColName),
		Email:         sanitizer.NormalizeEmail(r.Get(ColEmail)),
		Contact:       r.Get(ColContact),
		ShirtNeeded:   parseYesNo(r.Get(ColShirt)),
		Equipment:     eq,
		PendingAmount: l.pending(eq),
	}
	if ts, err := time.ParseInLocation(TimestampLayout, r.Get(ColTimestamp), time.Local); err == nil {
		reg.UpdatedAt = ts
	}
	return reg
}

// tuple is the normalised identity of a submission used for duplicate
// detection and legacy row lookup. Contact keeps its case.
type tuple struct {
	name, email, contact string
	shirt                bool
	equipment            string
}

func tupleOf(name, email string, d Details) tuple {
	return tuple{
		name:      sanitizer.Fold(name),
		email:     sanitizer.NormalizeEmail(email),
		contact:   sanitizer.Trim(d.Contact),
		shirt:     d.ShirtNeeded,
		equipment: sanitizer.Fold(string(d.Equipment)),
	}
}

func rowTuple(r records.Row) tuple {
	return tuple{
		name:      sanitizer.Fold(r.Get(ColName)),
		email:     sanitizer.NormalizeEmail(r.Get(ColEmail)),
		contact:   r.Get(ColContact),
		shirt:     parseYesNo(r.Get(ColShirt)),
		equipment: sanitizer.Fold(r.Get(ColEquipment)),
	}
}

// sameDetails ignores the name, which edits never change.
func (t tuple) sameDetails(o tuple) bool {
	return t.email == o.email && t.contact == o.contact && t.shirt == o.shirt && t.equipment == o.equipment
}
