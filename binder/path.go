package binder

import (
	"fmt"
	"net/http"
	"reflect"
)

// Path fills `path` fields using extractor, e.g. chi.URLParam.
// Empty parameters leave the field unchanged.
func Path(extractor func(r *http.Request, name string) string) func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		if extractor == nil {
			return fmt.Errorf("%w: extractor is nil", ErrInvalidPath)
		}
		return structFields(v, "path", ErrInvalidPath, func(field reflect.Value, name string) error {
			raw := extractor(r, name)
			if raw == "" {
				return nil
			}
			return setValue(field, raw)
		})
	}
}
