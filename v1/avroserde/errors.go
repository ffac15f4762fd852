package avroserde

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every error returned by a Serializer or Deserializer is a
// *SerializationError whose cause matches exactly one of these with errors.Is.
var (
	// ErrFormat indicates a malformed wire envelope.
	ErrFormat = errors.New("malformed wire format")

	// ErrConfiguration indicates a missing or invalid setting.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrRegistration indicates the registry rejected or failed a register call.
	ErrRegistration = errors.New("schema registration failed")

	// ErrLookup indicates the registry rejected or failed an id or schema lookup.
	ErrLookup = errors.New("schema lookup failed")

	// ErrTypeResolution indicates no Go type answers to a writer schema.
	ErrTypeResolution = errors.New("type resolution failed")

	// ErrEncoding indicates a value could not be encoded against its schema.
	ErrEncoding = errors.New("encoding failed")

	// ErrDecoding indicates a payload could not be decoded with its schema.
	ErrDecoding = errors.New("decoding failed")

	// ErrClosed indicates the serializer or deserializer was closed.
	ErrClosed = errors.New("serde is closed")
)

// SerializationError is the single error type returned by serializers and
// deserializers. Use errors.Is with the Err* kinds to classify it, and
// errors.As to reach the registry's *schema_registry.RestError.
type SerializationError struct {
	// Op is "serialize" or "deserialize".
	Op string

	Topic   string
	Subject string

	// SchemaID is meaningful only when HasSchemaID is set. Every int32 is a
	// valid wire id, so no value of SchemaID can mean "unknown".
	SchemaID    int
	HasSchemaID bool

	Err error
}

func (e *SerializationError) Error() string {
	var b strings.Builder
	b.WriteString("avroserde: ")
	b.WriteString(e.Op)
	if e.Topic != "" {
		fmt.Fprintf(&b, " topic %q", e.Topic)
	}
	if e.Subject != "" {
		fmt.Fprintf(&b, " subject %q", e.Subject)
	}
	if e.HasSchemaID {
		fmt.Fprintf(&b, " schema id %d", e.SchemaID)
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *SerializationError) Unwrap() error { return e.Err }

// kindError tags cause with one of the Err* kinds.
func kindError(kind, cause error) error {
	if cause == nil {
		return kind
	}
	if errors.Is(cause, kind) {
		return cause
	}
	return fmt.Errorf("%w: %w", kind, cause)
}

// missingSetting is a configuration error naming the missing key.
func missingSetting(key string) error {
	return fmt.Errorf("%w: %q is not set", ErrConfiguration, key)
}

// IsFormatError checks if err is a malformed wire envelope.
func IsFormatError(err error) bool { return errors.Is(err, ErrFormat) }

// IsConfigurationError checks if err is a configuration error.
func IsConfigurationError(err error) bool { return errors.Is(err, ErrConfiguration) }

// IsRegistrationError checks if err is a failed schema registration.
func IsRegistrationError(err error) bool { return errors.Is(err, ErrRegistration) }

// IsLookupError checks if err is a failed schema id or schema lookup.
func IsLookupError(err error) bool { return errors.Is(err, ErrLookup) }

// IsTypeResolutionError checks if err means no Go type was found for a schema.
func IsTypeResolutionError(err error) bool { return errors.Is(err, ErrTypeResolution) }

// IsEncodingError checks if err is an encoding failure.
func IsEncodingError(err error) bool { return errors.Is(err, ErrEncoding) }

// IsDecodingError checks if err is a decoding failure.
func IsDecodingError(err error) bool { return errors.Is(err, ErrDecoding) }

// IsClosedError checks if err was caused by using a closed serde.
func IsClosedError(err error) bool { return errors.Is(err, ErrClosed) }

// SchemaIDOf returns the schema id carried by err and whether it is known.
func SchemaIDOf(err error) (int, bool) {
	var serr *SerializationError
	if errors.As(err, &serr) && serr.HasSchemaID {
		return serr.SchemaID, true
	}
	return 0, false
}

// schemaRef is a schema id that is not known until an envelope was parsed
// or the registry answered.
type schemaRef struct {
	id    int
	known bool
}

func knownSchema(id int) schemaRef {
	return schemaRef{id: id, known: true}
}

func (e *SerializationError) withSchema(ref schemaRef) *SerializationError {
	e.SchemaID, e.HasSchemaID = ref.id, ref.known
	return e
}
