// Package sanitizer normalises user-supplied identity and registration fields
// before they are compared or persisted.
//
// Email addresses are trimmed and lower-cased so they can serve as record
// keys. Free-text fields used in duplicate detection are Unicode case-folded
// with golang.org/x/text/cases rather than strings.ToLower, so "ÉCOLE" and
// "école" compare equal regardless of how the input was typed.
package sanitizer
