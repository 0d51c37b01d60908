// Package core provides the mapping engine: the entity registry, the
// statement builder and the per-entity statement cache.
package core

import (
	"context"
	"sync"

	"github.com/coregx/entmap/internal/cache"
	"github.com/coregx/entmap/internal/dialects"
	"github.com/coregx/entmap/internal/logger"
	"github.com/coregx/entmap/internal/mapping"
	"github.com/coregx/entmap/internal/naming"
	"github.com/coregx/entmap/internal/tracer"
)

// Engine maps entity types and builds SQL statements for them. It is safe
// for concurrent use.
type Engine struct {
	registry *mapping.Registry
	cache    *cache.Cache
	dialect  dialects.Dialect
	logger   logger.Logger
	tracer   tracer.Tracer
	ctx      context.Context
	autoMap  bool

	// registry settings, applied by New
	convention naming.Convention
	strict     bool
	plural     bool

	err error // first option error
}

// Option is a functional option for configuring an Engine.
type Option func(*Engine)

// WithNamingConvention sets the convention used to derive table and column
// names. The default is CamelCase.
func WithNamingConvention(c naming.Convention) Option {
	return func(e *Engine) {
		e.convention = c
	}
}

// WithStrictMapping makes mapping an already mapped type fail with
// ErrMappingConflict.
func WithStrictMapping(strict bool) Option {
	return func(e *Engine) {
		e.strict = strict
	}
}

// WithPluralTables pluralizes table names derived from type names.
func WithPluralTables(plural bool) Option {
	return func(e *Engine) {
		e.plural = plural
	}
}

// WithAutoMap maps unmapped types on their first statement instead of
// failing with ErrMappingNotFound.
func WithAutoMap(auto bool) Option {
	return func(e *Engine) {
		e.autoMap = auto
	}
}

// WithDialect selects the SQL dialect by driver name ("postgres", "sqlite").
func WithDialect(name string) Option {
	return func(e *Engine) {
		d, err := dialects.Get(name)
		if err != nil {
			e.setErr(err)
			return
		}
		e.dialect = d
	}
}

// WithLogger sets the logger for mapping and statement events.
// If not set, a NoopLogger is used (zero overhead).
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithTracer sets the tracer for statement builds.
// If not set, a NoopTracer is used (zero overhead).
func WithTracer(t tracer.Tracer) Option {
	return func(e *Engine) {
		if t != nil {
			e.tracer = t
		}
	}
}

func (e *Engine) setErr(err error) {
	if e.err == nil {
		e.err = err
	}
}

// New creates an Engine.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		cache:      cache.New(),
		dialect:    dialects.MustGet(dialects.Default),
		logger:     &logger.NoopLogger{},
		tracer:     &tracer.NoopTracer{},
		ctx:        context.Background(),
		convention: naming.Default,
	}

	for _, opt := range opts {
		opt(e)
	}
	if e.err != nil {
		return nil, e.err
	}

	e.registry = mapping.NewRegistry(
		mapping.WithConvention(e.convention),
		mapping.WithStrict(e.strict),
		mapping.WithPluralTables(e.plural),
		mapping.WithLogger(e.logger),
		mapping.WithReplaceHook(e.cache.Invalidate),
	)
	return e, nil
}

var (
	defaultOnce   sync.Once
	defaultEngine *Engine
)

// Default returns the process-wide engine, created on first use with the
// default options.
func Default() *Engine {
	defaultOnce.Do(func() {
		e, err := New()
		if err != nil {
			// Unreachable: the default options cannot fail.
			panic(err)
		}
		defaultEngine = e
	})
	return defaultEngine
}

// WithContext returns a shallow copy of the engine whose statement builds
// are traced as children of ctx. Registry and cache are shared.
func (e *Engine) WithContext(ctx context.Context) *Engine {
	newEngine := *e
	newEngine.ctx = ctx
	return &newEngine
}

func (e *Engine) context() context.Context {
	if e.ctx != nil {
		return e.ctx
	}
	return context.Background()
}

// Registry returns the underlying entity registry.
func (e *Engine) Registry() *mapping.Registry {
	return e.registry
}

// Dialect returns the configured dialect.
func (e *Engine) Dialect() dialects.Dialect {
	return e.dialect
}

// NamingConvention returns the current naming convention.
func (e *Engine) NamingConvention() naming.Convention {
	return e.registry.Convention()
}

// SetNamingConvention changes the naming convention. It fails with
// ErrNamingConventionFrozen once any type has been mapped.
func (e *Engine) SetNamingConvention(c naming.Convention) error {
	return e.registry.SetConvention(c)
}

// SetStrictMapping toggles strict mapping mode.
func (e *Engine) SetStrictMapping(strict bool) {
	e.registry.SetStrict(strict)
}

// Map maps model, a struct value, a pointer to one or a reflect.Type.
func (e *Engine) Map(model any) (*mapping.Entity, error) {
	return e.registry.Map(model)
}

// MapMany maps each model in order.
func (e *Engine) MapMany(models ...any) ([]*mapping.Entity, error) {
	return e.registry.MapMany(models...)
}

// GetOrAdd returns the descriptor of model, mapping it when absent.
func (e *Engine) GetOrAdd(model any) (*mapping.Entity, error) {
	return e.registry.GetOrAdd(model)
}

// Get returns the descriptor of model if it is mapped.
func (e *Engine) Get(model any) (*mapping.Entity, bool) {
	return e.registry.Get(model)
}

// IsMapped reports whether model is mapped.
func (e *Engine) IsMapped(model any) bool {
	return e.registry.IsMapped(model)
}

// CreateEmptyMap registers an empty descriptor for manual configuration.
// Statements cached for a replaced descriptor are dropped.
func (e *Engine) CreateEmptyMap(model any) (*mapping.Entity, error) {
	return e.registry.CreateEmptyMap(model)
}

// CacheStats returns statement cache statistics.
func (e *Engine) CacheStats() cache.Stats {
	return e.cache.Stats()
}

// ClearCache drops every cached statement.
func (e *Engine) ClearCache() {
	e.cache.Clear()
}

// entity resolves the descriptor used to build a statement for model.
func (e *Engine) entity(model any) (*mapping.Entity, error) {
	if e.autoMap {
		return e.registry.GetOrAdd(model)
	}
	return e.registry.Lookup(model)
}
