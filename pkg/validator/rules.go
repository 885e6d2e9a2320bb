package validator

import (
	"fmt"
	"net/mail"
	"net/url"
	"slices"
	"strings"
	"unicode/utf8"
)

// Required fails on empty or whitespace-only values.
func Required(field, value string) Rule {
	return Rule{
		Check: func() bool { return strings.TrimSpace(value) != "" },
		Error: ValidationError{
			Field:          field,
			Message:        "field is required",
			TranslationKey: "validation.required",
			Params:         map[string]any{"field": field},
		},
	}
}

// MaxLen limits value to max characters.
func MaxLen(field, value string, max int) Rule {
	return Rule{
		Check: func() bool { return utf8.RuneCountInString(value) <= max },
		Error: ValidationError{
			Field:          field,
			Message:        fmt.Sprintf("must be at most %d characters long", max),
			TranslationKey: "validation.max_length",
			Params:         map[string]any{"field": field, "max": max},
		},
	}
}

// OneOf accepts only the listed options.
func OneOf[T comparable](field string, value T, options []T) Rule {
	return Rule{
		Check: func() bool { return slices.Contains(options, value) },
		Error: ValidationError{
			Field:          field,
			Message:        fmt.Sprintf("must be one of: %v", options),
			TranslationKey: "validation.one_of",
			Params:         map[string]any{"field": field, "options": options},
		},
	}
}

// Min requires value >= min.
func Min[T ~int | ~int64 | ~float64](field string, value, min T) Rule {
	return Rule{
		Check: func() bool { return value >= min },
		Error: ValidationError{
			Field:          field,
			Message:        fmt.Sprintf("must be at least %v", min),
			TranslationKey: "validation.min",
			Params:         map[string]any{"field": field, "min": min},
		},
	}
}

// ValidEmail accepts a bare address with a dotted domain.
func ValidEmail(field, value string) Rule {
	return Rule{
		Check: func() bool {
			addr, err := mail.ParseAddress(value)
			if err != nil || addr.Address != strings.TrimSpace(value) {
				return false
			}
			at := strings.LastIndexByte(addr.Address, '@')
			if at <= 0 {
				return false
			}
			domain := addr.Address[at+1:]
			if !strings.Contains(domain, ".") {
				return false
			}
			for part := range strings.SplitSeq(domain, ".") {
				if part == "" {
					return false
				}
			}
			return true
		},
		Error: ValidationError{
			Field:          field,
			Message:        "must be a valid email address",
			TranslationKey: "validation.email",
			Params:         map[string]any{"field": field},
		},
	}
}

// OptionalURL accepts an empty value or an absolute http(s) URL.
func OptionalURL(field, value string) Rule {
	return Rule{
		Check: func() bool {
			if strings.TrimSpace(value) == "" {
				return true
			}
			u, err := url.ParseRequestURI(value)
			if err != nil || u.Host == "" {
				return false
			}
			return u.Scheme == "http" || u.Scheme == "https"
		},
		Error: ValidationError{
			Field:          field,
			Message:        "must be an http or https URL",
			TranslationKey: "validation.url",
			Params:         map[string]any{"field": field},
		},
	}
}

// NoControlChars rejects newlines, tabs and other control characters.
func NoControlChars(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return !strings.ContainsFunc(value, func(r rune) bool { return r < 0x20 || r == 0x7f })
		},
		Error: ValidationError{
			Field:          field,
			Message:        "must not contain control characters",
			TranslationKey: "validation.no_control_chars",
			Params:         map[string]any{"field": field},
		},
	}
}
