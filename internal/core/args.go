package core

import (
	"reflect"

	"github.com/coregx/entmap/internal/mapping"
)

// Args returns sql.Named arguments for model matching the @Field
// placeholders of its statements. part selects keys, columns or both.
func (e *Engine) Args(model any, part mapping.Part) ([]any, error) {
	ent, err := e.entity(model)
	if err != nil {
		return nil, err
	}
	return mapping.NamedArgs(ent, model, part)
}

// BatchArgs returns sql.Named arguments for a slice of models, named
// @Field_0, @Field_1, ... to match BuildBulkInsert and BuildUpsert.
func (e *Engine) BatchArgs(models any, part mapping.Part) ([]any, error) {
	t := reflect.TypeOf(models)
	if t == nil || (t.Kind() != reflect.Slice && t.Kind() != reflect.Array) {
		return nil, WrapError(ErrInvalidModelType, "expected a slice of models")
	}
	ent, err := e.entity(t.Elem())
	if err != nil {
		return nil, err
	}
	return mapping.BatchNamedArgs(ent, models, part)
}
