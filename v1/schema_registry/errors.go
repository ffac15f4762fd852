package schema_registry

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrMissingURL is returned when no registry endpoint is configured.
	ErrMissingURL = errors.New("schema registry URL is required")

	// ErrDataTooShort is returned when a buffer is shorter than the 5 byte
	// wire format header.
	ErrDataTooShort = errors.New("data too short for wire format header")

	// ErrInvalidMagicByte is returned when the first byte of a buffer is not
	// the wire format magic byte.
	ErrInvalidMagicByte = errors.New("unknown magic byte")
)

// Registry error codes returned in the "error_code" field of error bodies.
const (
	ErrorCodeSubjectNotFound     = 40401
	ErrorCodeVersionNotFound     = 40402
	ErrorCodeSchemaNotFound      = 40403
	ErrorCodeIncompatibleSchema  = 409
	ErrorCodeInvalidSchema       = 42201
	ErrorCodeBackendStoreFailure = 50001
)

// RestError is an error response returned by the schema registry.
type RestError struct {
	// StatusCode is the HTTP status of the response.
	StatusCode int `json:"-"`

	// ErrorCode is the registry-specific error code, e.g. 40403.
	ErrorCode int `json:"error_code"`

	// Message is the registry's error message.
	Message string `json:"message"`
}

func (e *RestError) Error() string {
	return fmt.Sprintf("schema registry returned status %d (error code %d): %s", e.StatusCode, e.ErrorCode, e.Message)
}

// Temporary reports whether the registry itself signalled a transient
// condition (server errors and throttling).
func (e *RestError) Temporary() bool {
	return e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
}

// IsNotFound checks if err is a registry "not found" response for a subject,
// version or schema.
func IsNotFound(err error) bool {
	var restErr *RestError
	return errors.As(err, &restErr) && restErr.StatusCode == http.StatusNotFound
}

// IsIncompatible checks if err is the registry rejecting a schema as
// incompatible with the subject's compatibility settings.
func IsIncompatible(err error) bool {
	var restErr *RestError
	return errors.As(err, &restErr) && restErr.StatusCode == http.StatusConflict
}

// IsWireFormatError checks if err is a malformed wire format buffer.
func IsWireFormatError(err error) bool {
	return errors.Is(err, ErrDataTooShort) || errors.Is(err, ErrInvalidMagicByte)
}
