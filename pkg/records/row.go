package records

import (
	"fmt"
	"slices"
	"strings"
)

// Row is a data row keyed by column header.
type Row map[string]string

// Get returns the trimmed value of column, or "" when absent.
func (r Row) Get(column string) string {
	return strings.TrimSpace(r[column])
}

// Clone returns an independent copy of r.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Schema is an ordered list of column headers.
type Schema []string

func (s Schema) Has(column string) bool {
	return slices.Contains(s, column)
}

// Values orders r by the schema. Missing columns become "".
// Unknown columns yield ErrUnknownColumn.
func (s Schema) Values(r Row) ([]string, error) {
	for k := range r {
		if !s.Has(k) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, k)
		}
	}
	out := make([]string, len(s))
	for i, col := range s {
		out[i] = r[col]
	}
	return out, nil
}

// Row maps raw cells onto headers. Short rows are padded with "",
// extra cells are dropped.
func (s Schema) Row(cells []string) Row {
	r := make(Row, len(s))
	for i, col := range s {
		if i < len(cells) {
			r[col] = cells[i]
		} else {
			r[col] = ""
		}
	}
	return r
}

// headerRow pads or truncates raw to the schema width.
func (s Schema) headerRow(raw []string) []string {
	out := make([]string, len(s))
	copy(out, raw)
	return out
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
