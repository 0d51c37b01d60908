package mapping

import (
	"database/sql"
	"reflect"
	"strconv"
)

// Part selects which mapped fields an argument list covers.
type Part int

const (
	// AllFields covers keys followed by columns.
	AllFields Part = iota
	// ColumnsOnly covers regular columns, as used by INSERT and upsert.
	ColumnsOnly
	// KeysOnly covers key fields, as used by by-id statements.
	KeysOnly
)

func (v *View) part(p Part) []Field {
	switch p {
	case ColumnsOnly:
		return v.Columns
	case KeysOnly:
		return v.Keys
	default:
		return v.Fields()
	}
}

// NamedArgs returns sql.Named arguments for model, named after the Go fields
// so they bind to the @Field placeholders of generated statements.
func NamedArgs(e *Entity, model any, p Part) ([]any, error) {
	rv, err := structValue(e, model)
	if err != nil {
		return nil, err
	}
	fields := e.Snapshot().part(p)
	args := make([]any, 0, len(fields))
	for _, f := range fields {
		args = append(args, sql.Named(f.Name, rv.FieldByIndex(f.Index).Interface()))
	}
	return args, nil
}

// BatchNamedArgs returns sql.Named arguments for every element of models,
// a slice of the entity type or of pointers to it. Names carry the row
// suffix used by bulk statements (@Field_0, @Field_1, ...).
func BatchNamedArgs(e *Entity, models any, p Part) ([]any, error) {
	rv := reflect.ValueOf(models)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, Wrap(ErrInvalidModelType, "expected slice of "+e.Type().String())
	}

	fields := e.Snapshot().part(p)
	args := make([]any, 0, rv.Len()*len(fields))
	for i := 0; i < rv.Len(); i++ {
		row, err := structValue(e, rv.Index(i).Interface())
		if err != nil {
			return nil, err
		}
		suffix := "_" + strconv.Itoa(i)
		for _, f := range fields {
			args = append(args, sql.Named(f.Name+suffix, row.FieldByIndex(f.Index).Interface()))
		}
	}
	return args, nil
}

func structValue(e *Entity, model any) (reflect.Value, error) {
	rv := reflect.ValueOf(model)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return reflect.Value{}, Wrap(ErrInvalidModelType, "nil pointer")
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() || rv.Type() != e.Type() {
		return reflect.Value{}, Wrap(ErrInvalidModelType, "expected "+e.Type().String())
	}
	return rv, nil
}
