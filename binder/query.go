package binder

import (
	"net/http"
	"reflect"
	"strings"
)

// Query fills `query` fields from the URL query string. Values are trimmed;
// only the first value of a repeated parameter is used.
func Query() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		q := r.URL.Query()
		return structFields(v, "query", ErrInvalidQuery, func(field reflect.Value, name string) error {
			if !q.Has(name) {
				return nil
			}
			return setValue(field, strings.TrimSpace(q.Get(name)))
		})
	}
}
