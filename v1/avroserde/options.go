package avroserde

import (
	"context"

	"github.com/hamba/avro/v2"

	"github.com/Aleph-Alpha/kafka-avro-serde/v1/avrotypes"
	"github.com/Aleph-Alpha/kafka-avro-serde/v1/logger"
	"github.com/Aleph-Alpha/kafka-avro-serde/v1/observability"
	"github.com/Aleph-Alpha/kafka-avro-serde/v1/schema_registry"
)

// Logger is the subset of the std logger used by this package.
type Logger interface {
	DebugWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}

// Option customizes a Serializer, Deserializer or Serde at construction.
type Option func(*options)

type options struct {
	registry schema_registry.Registry
	catalog  *avrotypes.Catalog
	api      avro.API
	logger   Logger
	observer observability.Observer
}

func newOptions(opts []Option) options {
	o := options{
		catalog: avrotypes.DefaultCatalog,
		api:     avro.Config{TagKey: "avro"}.Freeze(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.logger == nil {
		o.logger = logger.NewNopLogger()
	}
	return o
}

// WithRegistry injects the registry client. It takes precedence over
// schema.registry.url, which then becomes optional. The injected client is
// not closed by Close.
func WithRegistry(registry schema_registry.Registry) Option {
	return func(o *options) { o.registry = registry }
}

// WithCatalog sets the catalog used to derive writer schemas and, on
// deserialization, the fallback catalog when the context carries none.
// Default: avrotypes.DefaultCatalog
func WithCatalog(catalog *avrotypes.Catalog) Option {
	return func(o *options) {
		if catalog != nil {
			o.catalog = catalog
		}
	}
}

// WithAvroAPI sets the hamba/avro API used for encoding and decoding.
func WithAvroAPI(api avro.API) Option {
	return func(o *options) {
		if api != nil {
			o.api = api
		}
	}
}

// WithLogger sets the logger. It is also handed to registry clients created
// from schema.registry.url.
func WithLogger(log Logger) Option {
	return func(o *options) { o.logger = log }
}

// WithObserver attaches an observer notified of every serialize and
// deserialize call.
func WithObserver(observer observability.Observer) Option {
	return func(o *options) { o.observer = observer }
}
