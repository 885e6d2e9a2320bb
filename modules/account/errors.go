package account

import (
	"errors"
	"fmt"

	"github.com/dmitrymomot/regdesk/handler"
	"github.com/dmitrymomot/regdesk/pkg/auth"
	"github.com/dmitrymomot/regdesk/pkg/file"
	"github.com/dmitrymomot/regdesk/svc/directory"
	"github.com/dmitrymomot/regdesk/svc/signin"
)

var ErrAvatarRequired = errors.New("avatar file is required")

// httpError attaches the client-facing status to err. Unknown errors are
// returned unchanged and end up as 500.
func httpError(err error) error {
	var status handler.HTTPError
	switch {
	case errors.Is(err, auth.ErrStateMismatch):
		status = handler.ErrUnauthorized.WithMessage("Login expired or was started elsewhere, please sign in again")
	case errors.Is(err, auth.ErrTokenExchangeFailed):
		status = handler.ErrUnauthorized.WithMessage("Could not complete sign-in with Google")
	case errors.Is(err, auth.ErrUnverifiedEmail):
		status = handler.ErrUnauthorized.WithMessage("Google account email is not verified")
	case errors.Is(err, auth.ErrUserInfoFailed):
		status = handler.ErrUnauthorized.WithMessage("Could not read Google profile")
	case errors.Is(err, signin.ErrLoginCancelled):
		status = handler.ErrUnauthorized.WithMessage("Sign-in was cancelled")
	case errors.Is(err, directory.ErrUserNotFound):
		status = handler.ErrNotFound.WithMessage("Could not locate record")
	case errors.Is(err, ErrAvatarRequired):
		status = handler.ErrBadRequest.WithMessage("Avatar file is required")
	case errors.Is(err, file.ErrMIMETypeNotAllowed):
		status = handler.ErrUnsupportedMediaType.WithMessage("Avatar must be a JPEG or PNG image")
	case errors.Is(err, file.ErrFileTooLarge):
		status = handler.ErrRequestTooLarge.WithMessage("Avatar is too large")
	case errors.Is(err, file.ErrEmptyFile):
		status = handler.ErrBadRequest.WithMessage("Avatar file is empty")
	default:
		return err
	}
	return fmt.Errorf("%w: %w", status, err)
}
