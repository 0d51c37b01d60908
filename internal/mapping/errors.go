package mapping

import "errors"

// Errors returned while mapping entities. Callers match them with errors.Is.
var (
	// ErrMappingNotFound is returned when a statement is requested for a type
	// that has no registered descriptor.
	ErrMappingNotFound = errors.New("mapper not found")
	// ErrMappingConflict is returned in strict mode when a type is mapped twice.
	ErrMappingConflict = errors.New("entity is already mapped")
	// ErrNamingConventionFrozen is returned when the naming convention is
	// changed after an entity has been mapped.
	ErrNamingConventionFrozen = errors.New("can not change naming convention after mapping entities")
	// ErrInvalidFieldReference is returned when a selector or builder call
	// names something that is not an exported field of the entity.
	ErrInvalidFieldReference = errors.New("invalid field reference")
	// ErrTableNameMissing is returned when a qualified table name is requested
	// from a descriptor that never received a table name.
	ErrTableNameMissing = errors.New("table name not informed")
	// ErrInvalidModelType is returned when a model is not a struct.
	ErrInvalidModelType = errors.New("invalid model type")
	// ErrFieldAlreadyMapped is returned when a field is registered twice.
	ErrFieldAlreadyMapped = errors.New("field is already mapped")
)

// Wrap wraps an error with additional context message.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &wrappedError{
		msg: message,
		err: err,
	}
}

type wrappedError struct {
	msg string
	err error
}

func (e *wrappedError) Error() string {
	return e.msg + ": " + e.err.Error()
}

func (e *wrappedError) Unwrap() error {
	return e.err
}
