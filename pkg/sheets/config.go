package sheets

import "time"

type Config struct {
	SpreadsheetID   string        `env:"SHEETS_SPREADSHEET_ID"`                   // SpreadsheetID is the document holding one tab per table.
	CredentialsFile string        `env:"SHEETS_CREDENTIALS_FILE"`                 // CredentialsFile points at a service-account JSON key.
	CredentialsJSON string        `env:"SHEETS_CREDENTIALS_JSON"`                 // CredentialsJSON is the inline key, preferred over CredentialsFile.
	RequestTimeout  time.Duration `env:"SHEETS_REQUEST_TIMEOUT" envDefault:"15s"` // RequestTimeout bounds every API call.
	Endpoint        string        `env:"SHEETS_ENDPOINT"`                         // Endpoint overrides the API base URL; empty means Google.
}
