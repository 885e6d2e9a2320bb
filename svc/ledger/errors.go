package ledger

import (
	"errors"
	"fmt"

	"github.com/dmitrymomot/regdesk/pkg/records"
)

var (
	ErrDuplicateRegistration = errors.New("ledger: registration already exists")
	ErrRegistrationNotFound  = fmt.Errorf("ledger: registration not found: %w", records.ErrRowNotFound)
	ErrInvalidEquipment      = errors.New("ledger: invalid equipment choice")
	ErrInvalidPolicy         = errors.New("ledger: invalid policy")
)
