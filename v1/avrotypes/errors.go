package avrotypes

import "errors"

var (
	// ErrNilType is returned when a nil type or value is registered.
	ErrNilType = errors.New("avrotypes: nil type provided")

	// ErrUnsupportedType is returned when a Go type has no Avro mapping.
	ErrUnsupportedType = errors.New("avrotypes: unsupported type")

	// ErrConflictingRegistration is returned when a type claims a full name or
	// alias that already belongs to a different type in the same catalog.
	ErrConflictingRegistration = errors.New("avrotypes: conflicting type registration")

	// ErrTypeNotFound is returned when no registered type answers to a
	// schema's full name.
	ErrTypeNotFound = errors.New("avrotypes: no type registered for schema")

	// ErrNotConfigured is returned when name-based resolution is attempted on
	// a resolver that was built without namespace prefixes.
	ErrNotConfigured = errors.New("avrotypes: namespace prefixes not configured")
)

// IsTypeNotFound checks if err means no type could be resolved.
func IsTypeNotFound(err error) bool {
	return errors.Is(err, ErrTypeNotFound)
}

// IsNotConfigured checks if err means the resolver lacks namespace prefixes.
func IsNotConfigured(err error) bool {
	return errors.Is(err, ErrNotConfigured)
}
