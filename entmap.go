// Package entmap maps Go structs to relational tables and generates the
// INSERT, UPDATE, UPSERT, DELETE, SELECT and COUNT statements for them.
// Generated SQL is cached per entity type. entmap does not execute
// statements; pass them with the arguments from Args, BatchArgs or
// FilterArgs to database/sql, or rewrite them with Bind for drivers without
// named parameters.
package entmap

import (
	"github.com/coregx/entmap/internal/cache"
	"github.com/coregx/entmap/internal/core"
	"github.com/coregx/entmap/internal/logger"
	"github.com/coregx/entmap/internal/mapping"
	"github.com/coregx/entmap/internal/naming"
	"github.com/coregx/entmap/internal/selector"
	"github.com/coregx/entmap/internal/tracer"
)

type (
	// Engine maps entity types and builds statements for them.
	Engine = core.Engine
	// Option is a functional option for configuring an Engine.
	Option = core.Option
	// Config is the YAML form of the engine options.
	Config = core.Config

	// Entity is the mapping of one Go type to a table.
	Entity = mapping.Entity
	// View is a point-in-time copy of an Entity.
	View = mapping.View
	// Field maps a Go struct field to its column.
	Field = mapping.Field
	// Part selects which mapped fields an argument list covers.
	Part = mapping.Part
	// TableNamer is implemented by models that declare their table name.
	TableNamer = mapping.TableNamer
	// SchemaNamer is implemented by models that declare their schema.
	SchemaNamer = mapping.SchemaNamer

	// Selector is an ordered list of entity fields.
	Selector = selector.Selector
	// Convention selects how Go names become table and column names.
	Convention = naming.Convention
	// CacheStats holds statement cache metrics.
	CacheStats = cache.Stats

	// Logger receives structured mapping and statement events.
	Logger = logger.Logger
	// Tracer starts spans around statement builds.
	Tracer = tracer.Tracer
)

// Naming conventions.
const (
	SnakeCase  = naming.SnakeCase
	CamelCase  = naming.CamelCase
	PascalCase = naming.PascalCase
	KebabCase  = naming.KebabCase
	Identity   = naming.Identity
)

// Argument parts.
const (
	AllFields   = mapping.AllFields
	ColumnsOnly = mapping.ColumnsOnly
	KeysOnly    = mapping.KeysOnly
)

// Re-export core functions.
var (
	New           = core.New
	Default       = core.Default
	NewFromConfig = core.NewFromConfig
	ParseConfig   = core.ParseConfig
	LoadConfig    = core.LoadConfig
	FilterArgs    = core.FilterArgs
	WrapError     = core.WrapError

	WithNamingConvention = core.WithNamingConvention
	WithStrictMapping    = core.WithStrictMapping
	WithPluralTables     = core.WithPluralTables
	WithAutoMap          = core.WithAutoMap
	WithDialect          = core.WithDialect
	WithLogger           = core.WithLogger
	WithTracer           = core.WithTracer

	Names           = selector.Names
	ParseConvention = naming.ParseConvention
	NewSlogAdapter  = logger.NewSlogAdapter
	NewOtelTracer   = tracer.NewOtelTracer
)

// Errors.
var (
	ErrMappingNotFound        = core.ErrMappingNotFound
	ErrMappingConflict        = core.ErrMappingConflict
	ErrNamingConventionFrozen = core.ErrNamingConventionFrozen
	ErrInvalidFieldReference  = core.ErrInvalidFieldReference
	ErrTableNameMissing       = core.ErrTableNameMissing
	ErrInvalidModelType       = core.ErrInvalidModelType
	ErrFieldAlreadyMapped     = core.ErrFieldAlreadyMapped
	ErrUnsupportedDialect     = core.ErrUnsupportedDialect
	ErrPrimaryKeyMissing      = core.ErrPrimaryKeyMissing
	ErrNoColumns              = core.ErrNoColumns
	ErrInvalidRowCount        = core.ErrInvalidRowCount
	ErrInvalidFilter          = core.ErrInvalidFilter
	ErrInvalidConfig          = core.ErrInvalidConfig
	ErrUnboundParameter       = core.ErrUnboundParameter
)

// Fields returns a selector over the fields whose addresses fn returns:
//
//	entmap.Fields(func(u *User) []any { return []any{&u.ID, &u.Email} })
func Fields[T any](fn func(*T) []any) *Selector {
	return selector.Of(fn)
}
