package mapping

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/go-openapi/inflect"
	"golang.org/x/sync/singleflight"

	"github.com/coregx/entmap/internal/logger"
	"github.com/coregx/entmap/internal/naming"
)

// Registry maps Go types to entity descriptors. Descriptors are created once
// per type and live as long as the registry.
type Registry struct {
	mu         sync.RWMutex
	entities   map[reflect.Type]*Entity
	convention naming.Convention
	frozen     bool // set by the first mapping; freezes the convention
	strict     bool
	plural     bool

	group     singleflight.Group
	logger    logger.Logger
	onReplace func(reflect.Type)
}

// Option configures a Registry.
type Option func(*Registry)

// WithConvention sets the naming convention for derived names.
func WithConvention(c naming.Convention) Option {
	return func(r *Registry) {
		r.convention = c
	}
}

// WithStrict makes mapping an already mapped type an error.
func WithStrict(strict bool) Option {
	return func(r *Registry) {
		r.strict = strict
	}
}

// WithPluralTables pluralizes table names derived from type names.
func WithPluralTables(plural bool) Option {
	return func(r *Registry) {
		r.plural = plural
	}
}

// WithLogger sets the logger used for mapping events.
func WithLogger(l logger.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithReplaceHook registers fn to be called when a descriptor is replaced.
func WithReplaceHook(fn func(reflect.Type)) Option {
	return func(r *Registry) {
		r.onReplace = fn
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		entities:   make(map[reflect.Type]*Entity),
		convention: naming.Default,
		logger:     &logger.NoopLogger{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Convention returns the current naming convention.
func (r *Registry) Convention() naming.Convention {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.convention
}

// SetConvention changes the naming convention. It fails once any entity has
// been mapped.
func (r *Registry) SetConvention(c naming.Convention) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c == r.convention {
		return nil
	}
	if r.frozen {
		return ErrNamingConventionFrozen
	}
	r.convention = c
	return nil
}

// SetStrict toggles strict mode.
func (r *Registry) SetStrict(strict bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strict = strict
}

// Strict reports whether mapping an already mapped type is an error.
func (r *Registry) Strict() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.strict
}

// Format formats raw with the current naming convention.
func (r *Registry) Format(raw string) string {
	return naming.Format(r.Convention(), raw)
}

// TypeOf resolves a model to its struct type. Models may be struct values,
// pointers to structs, or a reflect.Type.
func TypeOf(model any) (reflect.Type, error) {
	var t reflect.Type
	switch m := model.(type) {
	case nil:
		return nil, Wrap(ErrInvalidModelType, "nil model")
	case reflect.Type:
		t = m
	default:
		t = reflect.TypeOf(model)
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, Wrap(ErrInvalidModelType, t.String())
	}
	return t, nil
}

// Get returns the descriptor of model without side effects.
func (r *Registry) Get(model any) (*Entity, bool) {
	t, err := TypeOf(model)
	if err != nil {
		return nil, false
	}
	return r.get(t)
}

func (r *Registry) get(t reflect.Type) (*Entity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entities[t]
	return e, ok
}

// Lookup is Get with ErrMappingNotFound for unmapped types.
func (r *Registry) Lookup(model any) (*Entity, error) {
	t, err := TypeOf(model)
	if err != nil {
		return nil, err
	}
	e, ok := r.get(t)
	if !ok {
		return nil, Wrap(ErrMappingNotFound, t.String())
	}
	return e, nil
}

// IsMapped reports whether model has a descriptor.
func (r *Registry) IsMapped(model any) bool {
	_, ok := r.Get(model)
	return ok
}

// Len returns the number of mapped types.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entities)
}

// Map builds and registers the descriptor of model. Mapping a type twice
// returns the existing descriptor, or ErrMappingConflict in strict mode.
func (r *Registry) Map(model any) (*Entity, error) {
	t, err := TypeOf(model)
	if err != nil {
		return nil, err
	}
	if e, ok := r.get(t); ok {
		if r.Strict() {
			return nil, Wrap(ErrMappingConflict, t.String())
		}
		return e, nil
	}
	return r.mapOnce(t)
}

// MapMany maps each model in order.
func (r *Registry) MapMany(models ...any) ([]*Entity, error) {
	entities := make([]*Entity, 0, len(models))
	for _, m := range models {
		e, err := r.Map(m)
		if err != nil {
			return entities, err
		}
		entities = append(entities, e)
	}
	return entities, nil
}

// GetOrAdd returns the descriptor of model, mapping it when absent. It never
// reports ErrMappingConflict.
func (r *Registry) GetOrAdd(model any) (*Entity, error) {
	t, err := TypeOf(model)
	if err != nil {
		return nil, err
	}
	if e, ok := r.get(t); ok {
		return e, nil
	}
	return r.mapOnce(t)
}

// CreateEmptyMap registers a descriptor without table or fields, to be
// configured with SetTable, Key and Column. An existing descriptor is
// replaced unless the registry is strict.
func (r *Registry) CreateEmptyMap(model any) (*Entity, error) {
	t, err := TypeOf(model)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	_, replaced := r.entities[t]
	if replaced && r.strict {
		r.mu.Unlock()
		return nil, Wrap(ErrMappingConflict, t.String())
	}
	e := newEntity(t, naming.Formatter(r.convention))
	r.entities[t] = e
	r.frozen = true
	r.mu.Unlock()

	if replaced {
		r.logger.Warn("entity map replaced", "entity", t.String())
		if r.onReplace != nil {
			r.onReplace(t)
		}
	}
	return e, nil
}

// mapOnce reflects over t once even when many goroutines ask for it.
func (r *Registry) mapOnce(t reflect.Type) (*Entity, error) {
	v, err, _ := r.group.Do(fmt.Sprintf("%p", t), func() (any, error) {
		if e, ok := r.get(t); ok {
			return e, nil
		}

		r.mu.Lock()
		r.frozen = true
		format := naming.Formatter(r.convention)
		plural := r.plural
		r.mu.Unlock()

		e, err := build(t, format, plural)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		if existing, ok := r.entities[t]; ok {
			r.mu.Unlock()
			return existing, nil
		}
		r.entities[t] = e
		r.mu.Unlock()

		view := e.Snapshot()
		r.logger.Debug("entity mapped",
			"entity", t.String(),
			"table", view.Table,
			"keys", len(view.Keys),
			"columns", len(view.Columns),
		)
		return e, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Entity), nil
}

// build reflects over t and returns a fully populated descriptor.
func build(t reflect.Type, format func(string) string, plural bool) (*Entity, error) {
	e := newEntity(t, format)
	e.table, e.schema = tableFor(t, format, plural)
	if err := collectFields(e, t, nil); err != nil {
		return nil, err
	}
	return e, nil
}

// tableFor returns the declared table name and schema, or the formatted type
// name when the model declares none.
func tableFor(t reflect.Type, format func(string) string, plural bool) (table, schema string) {
	model := reflect.New(t).Interface()
	if tn, ok := model.(TableNamer); ok {
		table = tn.TableName()
	}
	if sn, ok := model.(SchemaNamer); ok {
		schema = sn.SchemaName()
	}
	if table != "" || t.Name() == "" {
		return table, schema
	}

	name := t.Name()
	if plural {
		name = inflect.Pluralize(name)
	}
	return format(name), schema
}

// collectFields registers the fields of t in declaration order. Untagged
// embedded structs are flattened.
func collectFields(e *Entity, t reflect.Type, parent []int) error {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag := parseTag(sf)
		index := append(append([]int(nil), parent...), i)

		if sf.Anonymous && !tag.tagged && sf.Type.Kind() == reflect.Struct {
			if err := collectFields(e, sf.Type, index); err != nil {
				return err
			}
			continue
		}

		if !sf.IsExported() || tag.ignore {
			continue
		}

		column := tag.column
		if column == "" {
			column = e.format(sf.Name)
		}
		if err := e.addLocked(tag.key, Field{Name: sf.Name, Column: column, Index: index}); err != nil {
			return err
		}
	}
	return nil
}
