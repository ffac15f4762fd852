package schema_registry

import (
	"context"
	"time"
)

// Default values applied by NewClient when the corresponding Config field is
// zero.
const (
	DefaultTimeout         = 10 * time.Second
	DefaultMaxRetries      = 3
	DefaultRetryBackoff    = 100 * time.Millisecond
	DefaultMaxRetryBackoff = 2 * time.Second
)

// SchemaTypeAvro is the registry's name for Avro schemas. It is the default
// and is never sent explicitly.
const SchemaTypeAvro = "AVRO"

// MockURLPrefix selects the in-memory registry in New. The remainder of the
// URL names the scope, so "mock://orders" in a serializer and in a
// deserializer refers to the same registry.
const MockURLPrefix = "mock://"

// Config holds configuration for the schema registry client.
type Config struct {
	// URL is the registry endpoint (e.g. "http://localhost:8081"). Several
	// endpoints may be given comma-separated; they are tried in order.
	URL string `yaml:"url"`

	// Username for basic auth (optional).
	Username string `yaml:"username"`

	// Password for basic auth (optional).
	Password string `yaml:"password"`

	// Timeout bounds each HTTP request.
	// Default: 10 seconds
	Timeout time.Duration `yaml:"timeout"`

	// MaxRetries bounds how often a request is retried after a transient
	// failure. Set to -1 to disable retries.
	// Default: 3
	MaxRetries int `yaml:"max_retries"`

	// RetryBackoff is the initial backoff between retries; it grows
	// exponentially up to MaxRetryBackoff.
	// Default: 100 milliseconds
	RetryBackoff time.Duration `yaml:"retry_backoff"`

	// MaxRetryBackoff caps the backoff between retries.
	// Default: 2 seconds
	MaxRetryBackoff time.Duration `yaml:"max_retry_backoff"`

	// Logger receives retry and failure diagnostics (optional).
	Logger Logger `yaml:"-"`
}

// Logger is the subset of the std logger used by this package.
type Logger interface {
	DebugWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}
