package binder

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// structFields calls fn for every settable field of the struct v points to
// that carries tag. fn receives the tag's name part.
func structFields(v any, tag string, sentinel error, fn func(field reflect.Value, name string) error) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("%w: target must be a non-nil pointer", sentinel)
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return fmt.Errorf("%w: target must be a pointer to struct", sentinel)
	}

	rt := rv.Type()
	for i := range rv.NumField() {
		field := rv.Field(i)
		if !field.CanSet() {
			continue
		}
		name, _, _ := strings.Cut(rt.Field(i).Tag.Get(tag), ",")
		if name == "" || name == "-" {
			continue
		}
		if err := fn(field, name); err != nil {
			return fmt.Errorf("%w: field %s: %w", sentinel, rt.Field(i).Name, err)
		}
	}
	return nil
}

// setValue parses raw into a string, bool, integer or pointer-to-those field.
func setValue(field reflect.Value, raw string) error {
	if field.Kind() == reflect.Pointer {
		ptr := reflect.New(field.Type().Elem())
		if err := setValue(ptr.Elem(), raw); err != nil {
			return err
		}
		field.Set(ptr)
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		field.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetUint(n)
	default:
		return fmt.Errorf("unsupported type %s", field.Type())
	}
	return nil
}
