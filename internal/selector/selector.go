// Package selector declares ordered lists of entity fields, used for upsert
// conflict keys and manual key/column mapping.
package selector

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/coregx/entmap/internal/mapping"
	"github.com/coregx/entmap/internal/shape"
)

// Selector is an ordered list of Go field names. Two selectors naming the
// same set of fields share a shape, whatever order or construction they came
// from.
type Selector struct {
	typ   reflect.Type // set by Of; nil for Names
	names []string
	err   error
}

// Names returns a selector over the given Go field names. Matching is
// case-sensitive; the names are checked against the entity type when the
// selector is used.
func Names(names ...string) *Selector {
	clean := make([]string, 0, len(names))
	for _, n := range names {
		clean = append(clean, strings.TrimSpace(n))
	}
	return &Selector{names: clean}
}

// Of returns a selector over the fields whose addresses fn returns:
//
//	selector.Of(func(u *User) []any { return []any{&u.ID, &u.Email} })
//
// Anything other than a pointer to a field of the argument makes the
// selector invalid; Err and Validate report ErrInvalidFieldReference.
func Of[T any](fn func(*T) []any) *Selector {
	t := reflect.TypeOf((*T)(nil)).Elem()
	s := &Selector{typ: t}
	if t.Kind() != reflect.Struct {
		s.err = mapping.Wrap(mapping.ErrInvalidModelType, t.String())
		return s
	}
	if fn == nil {
		s.err = mapping.Wrap(mapping.ErrInvalidFieldReference, "nil selector func")
		return s
	}

	base := new(T)
	start := reflect.ValueOf(base).Pointer()
	fields := offsets(t)

	for i, ref := range fn(base) {
		name, err := resolve(start, fields, ref)
		if err != nil {
			s.err = mapping.Wrap(err, fmt.Sprintf("%s selector item %d", t, i))
			return s
		}
		s.names = append(s.names, name)
	}
	return s
}

// Fields returns the selected field names in declaration order.
func (s *Selector) Fields() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.names...)
}

// Len returns the number of selected fields.
func (s *Selector) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}

// Err returns the error found while building the selector, if any.
func (s *Selector) Err() error {
	if s == nil {
		return nil
	}
	return s.err
}

// Shape returns the identity of the selected field set.
func (s *Selector) Shape() shape.ID {
	if s == nil || len(s.names) == 0 {
		return shape.None
	}
	return shape.Of(s.names...)
}

// Validate checks that every selected name is an exported field of t.
func (s *Selector) Validate(t reflect.Type) error {
	if s == nil {
		return nil
	}
	if s.err != nil {
		return s.err
	}
	if s.typ != nil && s.typ != t {
		return mapping.Wrap(mapping.ErrInvalidFieldReference,
			fmt.Sprintf("selector over %s used with %s", s.typ, t))
	}
	for _, name := range s.names {
		sf, ok := t.FieldByName(name)
		if name == "" || !ok || !sf.IsExported() {
			return mapping.Wrap(mapping.ErrInvalidFieldReference, fmt.Sprintf("%s.%s", t, name))
		}
	}
	return nil
}

type fieldOffset struct {
	name   string
	offset uintptr
	typ    reflect.Type
}

// offsets lists the exported fields of t, promoted ones included, with their
// offset from the start of the struct. Fields behind embedded pointers are
// left out because they do not live inside the struct's memory.
func offsets(t reflect.Type) []fieldOffset {
	var out []fieldOffset
	for _, sf := range reflect.VisibleFields(t) {
		if sf.Anonymous || !sf.IsExported() {
			continue
		}
		off, ok := absoluteOffset(t, sf.Index)
		if !ok {
			continue
		}
		out = append(out, fieldOffset{name: sf.Name, offset: off, typ: sf.Type})
	}
	return out
}

func absoluteOffset(t reflect.Type, index []int) (uintptr, bool) {
	var off uintptr
	for i, idx := range index {
		sf := t.Field(idx)
		off += sf.Offset
		if i < len(index)-1 {
			if sf.Type.Kind() != reflect.Struct {
				return 0, false
			}
			t = sf.Type
		}
	}
	return off, true
}

func resolve(start uintptr, fields []fieldOffset, ref any) (string, error) {
	rv := reflect.ValueOf(ref)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return "", mapping.ErrInvalidFieldReference
	}
	addr := rv.Pointer()
	if addr < start {
		return "", mapping.ErrInvalidFieldReference
	}
	off := addr - start
	elem := rv.Type().Elem()
	for _, f := range fields {
		if f.offset == off && f.typ == elem {
			return f.name, nil
		}
	}
	return "", mapping.ErrInvalidFieldReference
}
