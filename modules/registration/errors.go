package registration

import (
	"errors"
	"fmt"

	"github.com/dmitrymomot/regdesk/handler"
	"github.com/dmitrymomot/regdesk/pkg/records"
	"github.com/dmitrymomot/regdesk/svc/ledger"
)

func httpError(err error) error {
	var status handler.HTTPError
	switch {
	case errors.Is(err, ledger.ErrDuplicateRegistration):
		status = handler.ErrConflict.WithMessage("You have already registered with these details")
	case errors.Is(err, records.ErrRowNotFound):
		status = handler.ErrNotFound.WithMessage("Could not locate record")
	case errors.Is(err, ledger.ErrInvalidEquipment):
		status = handler.ErrBadRequest.WithMessage("Equipment must be Return or Buy")
	default:
		return err
	}
	return fmt.Errorf("%w: %w", status, err)
}
