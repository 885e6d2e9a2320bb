package records

import "context"

// Backend resolves named tables in a remote store.
type Backend interface {
	// OpenTable returns ErrTableNotFound when name does not exist.
	OpenTable(ctx context.Context, name string) (Table, error)
	CreateTable(ctx context.Context, name string) (Table, error)
}

// Table is the raw row contract every backend implements.
// Positions are 1-based; row 1 is the header row.
type Table interface {
	Name() string
	// Rows returns every row including the header, in position order.
	// Rows may be ragged.
	Rows(ctx context.Context) ([][]string, error)
	// WriteRow overwrites the row at pos with values, creating it when
	// pos is one past the last row.
	WriteRow(ctx context.Context, pos int, values []string) error
	AppendRow(ctx context.Context, values []string) error
}

// Provisioning decides what happens when a table is missing at Open.
type Provisioning string

const (
	// ProvisionStrict fails Open with ErrConfiguration.
	ProvisionStrict Provisioning = "strict"
	// ProvisionAuto creates the missing table.
	ProvisionAuto Provisioning = "auto"
)

// ParseProvisioning maps a config value to a policy. Empty means strict.
func ParseProvisioning(s string) (Provisioning, error) {
	switch Provisioning(s) {
	case "", ProvisionStrict:
		return ProvisionStrict, nil
	case ProvisionAuto:
		return ProvisionAuto, nil
	default:
		return "", ErrConfiguration
	}
}
