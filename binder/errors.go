package binder

import "errors"

var (
	ErrNotApplicable        = errors.New("binder not applicable")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrMissingContentType   = errors.New("missing content type")
	ErrInvalidJSON          = errors.New("invalid JSON")
	ErrInvalidPath          = errors.New("invalid path parameter")
	ErrInvalidQuery         = errors.New("invalid query parameter")
	ErrInvalidForm          = errors.New("invalid form data")
	ErrTooLarge             = errors.New("request body too large")
)

// IsBindError reports whether err came from a binder and is the client's fault.
func IsBindError(err error) bool {
	for _, target := range []error{
		ErrUnsupportedMediaType, ErrMissingContentType, ErrInvalidJSON,
		ErrInvalidPath, ErrInvalidQuery, ErrInvalidForm, ErrTooLarge,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
