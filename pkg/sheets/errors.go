package sheets

import "errors"

var (
	ErrMissingSpreadsheetID = errors.New("sheets: spreadsheet id is not configured")
	ErrMissingCredentials   = errors.New("sheets: service account credentials are not configured")
	ErrInvalidCredentials   = errors.New("sheets: invalid service account credentials")
)
