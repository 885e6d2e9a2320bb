package sanitizer

import (
	"strings"

	"golang.org/x/text/cases"
)

// NormalizeEmail trims and lower-cases an address for use as a record key.
// Unlike a mail-delivery normaliser it never rewrites the local part.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Fold trims, collapses inner whitespace and case-folds s.
func Fold(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return cases.Fold().String(s)
}

// Trim removes surrounding whitespace only. Contact numbers are compared
// this way: case is meaningless for them but inner spacing is kept as typed.
func Trim(s string) string {
	return strings.TrimSpace(s)
}

// MaskEmail keeps the first local character and the full domain,
// e.g. "a***@example.com". Used for log output.
func MaskEmail(email string) string {
	email = strings.TrimSpace(email)
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" {
		return email
	}
	if len(local) == 1 {
		return "*@" + domain
	}
	return local[:1] + strings.Repeat("*", len(local)-1) + "@" + domain
}
