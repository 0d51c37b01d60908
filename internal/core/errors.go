package core

import (
	"errors"

	"github.com/coregx/entmap/internal/dialects"
	"github.com/coregx/entmap/internal/mapping"
)

// Predefined errors returned by entmap. Match them with errors.Is.
var (
	// ErrMappingNotFound is returned when a statement is requested for a type
	// that has not been mapped.
	ErrMappingNotFound = mapping.ErrMappingNotFound
	// ErrMappingConflict is returned in strict mode when a type is mapped twice.
	ErrMappingConflict = mapping.ErrMappingConflict
	// ErrNamingConventionFrozen is returned when the naming convention is
	// changed after the first mapping.
	ErrNamingConventionFrozen = mapping.ErrNamingConventionFrozen
	// ErrInvalidFieldReference is returned when a selector names something
	// that is not an exported field of the entity.
	ErrInvalidFieldReference = mapping.ErrInvalidFieldReference
	// ErrTableNameMissing is returned when a statement needs the table name of
	// a descriptor that never received one.
	ErrTableNameMissing = mapping.ErrTableNameMissing
	// ErrInvalidModelType is returned when a model is not a struct.
	ErrInvalidModelType = mapping.ErrInvalidModelType
	// ErrFieldAlreadyMapped is returned when a field is registered twice.
	ErrFieldAlreadyMapped = mapping.ErrFieldAlreadyMapped
	// ErrUnsupportedDialect is returned when an unknown dialect is configured.
	ErrUnsupportedDialect = dialects.ErrUnsupported

	// ErrPrimaryKeyMissing is returned when a statement needs a key and the
	// entity has none.
	ErrPrimaryKeyMissing = errors.New("entity has no key")
	// ErrNoColumns is returned when a statement needs columns and the entity
	// has none.
	ErrNoColumns = errors.New("entity has no columns")
	// ErrInvalidRowCount is returned when a bulk statement is requested for
	// fewer than one row.
	ErrInvalidRowCount = errors.New("row count must be at least 1")
	// ErrInvalidFilter is returned for filters that are not a struct, a map
	// with string keys or nil, and for empty DELETE filters.
	ErrInvalidFilter = errors.New("invalid filter")
	// ErrInvalidConfig is returned when a configuration value cannot be used.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrUnboundParameter is returned by Bind when a statement references an
	// @Field placeholder that has no matching named argument.
	ErrUnboundParameter = errors.New("unbound parameter")
)

// WrapError wraps an error with additional context message.
func WrapError(err error, message string) error {
	return mapping.Wrap(err, message)
}
