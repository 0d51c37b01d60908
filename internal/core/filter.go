package core

import (
	"database/sql"
	"reflect"
	"sort"
	"strconv"

	"github.com/coregx/entmap/internal/shape"
)

// filterFields returns the field names a filter contributes to a WHERE
// clause. Struct filters keep declaration order, map filters are sorted by
// key and a nil filter has no fields. Map keys end up in the statement
// text, so they must be identifiers.
func filterFields(filter any) ([]string, error) {
	if filter == nil {
		return nil, nil
	}

	rv := reflect.ValueOf(filter)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Struct:
		var names []string
		for _, sf := range reflect.VisibleFields(rv.Type()) {
			if sf.Anonymous || !sf.IsExported() {
				continue
			}
			names = append(names, sf.Name)
		}
		return names, nil

	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, WrapError(ErrInvalidFilter, "map filter keys must be strings, got "+rv.Type().String())
		}
		names := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			if !isIdentifier(k.String()) {
				return nil, WrapError(ErrInvalidFilter, "map filter key "+strconv.Quote(k.String())+" is not an identifier")
			}
			names = append(names, k.String())
		}
		sort.Strings(names)
		return names, nil

	default:
		return nil, WrapError(ErrInvalidFilter, "unsupported filter type "+rv.Type().String())
	}
}

// filterShape returns the filter fields and their shape id.
func filterShape(filter any) ([]string, shape.ID, error) {
	fields, err := filterFields(filter)
	if err != nil {
		return nil, shape.None, err
	}
	return fields, shape.Of(fields...), nil
}

// FilterArgs returns sql.Named arguments for the fields of filter, in the
// order they appear in the WHERE clause built for it.
func FilterArgs(filter any) ([]any, error) {
	fields, err := filterFields(filter)
	if err != nil || len(fields) == 0 {
		return nil, err
	}

	rv := reflect.ValueOf(filter)
	for rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}

	args := make([]any, 0, len(fields))
	for _, name := range fields {
		var v reflect.Value
		if rv.Kind() == reflect.Map {
			v = rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		} else {
			v = rv.FieldByName(name)
		}
		args = append(args, sql.Named(name, v.Interface()))
	}
	return args, nil
}

// isFilter reports whether v can serve as a filter rather than a scalar id.
// Structs without exported fields, such as time.Time, are scalar ids.
func isFilter(v any) bool {
	if v == nil {
		return false
	}
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Map:
		return true
	case reflect.Struct:
		for _, sf := range reflect.VisibleFields(t) {
			if !sf.Anonymous && sf.IsExported() {
				return true
			}
		}
	}
	return false
}
