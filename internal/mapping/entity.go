// Package mapping holds entity descriptors and the registry that builds them
// from struct types.
package mapping

import (
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
)

// versions hands out descriptor versions. They are unique across
// descriptors, so a replaced descriptor never reuses a version.
var versions atomic.Uint64

// Field maps a Go struct field to its destination column.
type Field struct {
	Name   string // Go field name, used for @Name placeholders
	Column string // destination column
	Index  []int  // index path for reflect.Value.FieldByIndex
}

// Entity is the mapping of one Go type to a table. It is safe for concurrent
// use; statement builders read it through Snapshot.
type Entity struct {
	mu      sync.RWMutex
	typ     reflect.Type
	format  func(string) string
	table   string
	schema  string
	keys    []Field
	columns []Field
	version uint64
}

func newEntity(t reflect.Type, format func(string) string) *Entity {
	return &Entity{typ: t, format: format, version: versions.Add(1)}
}

// Type returns the mapped struct type.
func (e *Entity) Type() reflect.Type {
	return e.typ
}

// Version changes every time the mapping is modified.
func (e *Entity) Version() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.version
}

// SetTable sets the table name and optional schema.
func (e *Entity) SetTable(name, schema string) error {
	if strings.TrimSpace(name) == "" {
		return ErrTableNameMissing
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.table = name
	e.schema = schema
	e.version = versions.Add(1)
	return nil
}

// Key registers field as a key. The destination column is column[0] when
// given, otherwise the formatted field name.
func (e *Entity) Key(field string, column ...string) error {
	return e.add(true, field, column)
}

// Column registers field as a regular column. The destination column is
// column[0] when given, otherwise the formatted field name.
func (e *Entity) Column(field string, column ...string) error {
	return e.add(false, field, column)
}

func (e *Entity) add(key bool, name string, column []string) error {
	sf, ok := e.typ.FieldByName(name)
	if !ok || !sf.IsExported() {
		return Wrap(ErrInvalidFieldReference, e.typ.String()+"."+name)
	}

	dest := ""
	if len(column) > 0 {
		dest = strings.TrimSpace(column[0])
	}
	if dest == "" {
		dest = e.format(name)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.addLocked(key, Field{Name: name, Column: dest, Index: sf.Index})
}

func (e *Entity) addLocked(key bool, f Field) error {
	if indexOf(e.keys, f.Name) >= 0 || indexOf(e.columns, f.Name) >= 0 {
		return Wrap(ErrFieldAlreadyMapped, e.typ.String()+"."+f.Name)
	}
	if key {
		e.keys = append(e.keys, f)
	} else {
		e.columns = append(e.columns, f)
	}
	e.version = versions.Add(1)
	return nil
}

func indexOf(fields []Field, name string) int {
	for i := range fields {
		if fields[i].Name == name {
			return i
		}
	}
	return -1
}

// Snapshot returns an immutable copy of the current mapping.
func (e *Entity) Snapshot() *View {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return &View{
		Type:    e.typ,
		Table:   e.table,
		Schema:  e.schema,
		Keys:    append([]Field(nil), e.keys...),
		Columns: append([]Field(nil), e.columns...),
		Version: e.version,
	}
}

// QualifiedName returns schema.table, or table when no schema is set.
func (e *Entity) QualifiedName() (string, error) {
	return e.Snapshot().QualifiedName()
}

// View is a point-in-time copy of an Entity. Keys and Columns keep
// registration order, which fixes the column order of generated statements.
type View struct {
	Type    reflect.Type
	Table   string
	Schema  string
	Keys    []Field
	Columns []Field
	Version uint64
}

// Name returns the Go type name used in error messages.
func (v *View) Name() string {
	return v.Type.String()
}

// QualifiedName returns schema.table, or table when no schema is set.
func (v *View) QualifiedName() (string, error) {
	if v.Table == "" {
		return "", Wrap(ErrTableNameMissing, v.Name())
	}
	if v.Schema == "" {
		return v.Table, nil
	}
	return v.Schema + "." + v.Table, nil
}

// Column returns the destination column of a regular column field.
func (v *View) Column(field string) (string, bool) {
	if i := indexOf(v.Columns, field); i >= 0 {
		return v.Columns[i].Column, true
	}
	return "", false
}

// Key returns the destination column of a key field.
func (v *View) Key(field string) (string, bool) {
	if i := indexOf(v.Keys, field); i >= 0 {
		return v.Keys[i].Column, true
	}
	return "", false
}

// FilterColumn resolves a filter field: keys first, then columns, then the
// raw field name.
func (v *View) FilterColumn(field string) string {
	if col, ok := v.Key(field); ok {
		return col
	}
	if col, ok := v.Column(field); ok {
		return col
	}
	return field
}

// ConflictColumn resolves a conflict-key field: columns first, then keys.
// Unknown fields resolve to an empty string.
func (v *View) ConflictColumn(field string) string {
	if col, ok := v.Column(field); ok {
		return col
	}
	col, _ := v.Key(field)
	return col
}

// SelectList returns "col as Field" for every key and column.
func (v *View) SelectList() string {
	parts := make([]string, 0, len(v.Keys)+len(v.Columns))
	for _, f := range v.Keys {
		parts = append(parts, f.Column+" as "+f.Name)
	}
	for _, f := range v.Columns {
		parts = append(parts, f.Column+" as "+f.Name)
	}
	return strings.Join(parts, ", ")
}

// KeyWhere returns the condition matching every key.
func (v *View) KeyWhere() string {
	parts := make([]string, len(v.Keys))
	for i, f := range v.Keys {
		parts[i] = f.Column + " = @" + f.Name
	}
	return strings.Join(parts, " and ")
}

// Where returns the condition matching the given filter fields.
func (v *View) Where(fields []string) string {
	parts := make([]string, len(fields))
	for i, name := range fields {
		parts[i] = v.FilterColumn(name) + " = @" + name
	}
	return strings.Join(parts, " and ")
}

// Fields returns keys followed by columns.
func (v *View) Fields() []Field {
	return append(append([]Field(nil), v.Keys...), v.Columns...)
}
