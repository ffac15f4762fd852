package tracer

// Config defines the tracer settings.
type Config struct {
	// ServiceName is the service.name resource attribute.
	ServiceName string `yaml:"service_name"`

	// AppEnv is the deployment environment, e.g. "production".
	AppEnv string `yaml:"app_env"`

	// EnableExport sends spans to an OTLP HTTP collector. Without it spans
	// are created for context propagation and log correlation only.
	EnableExport bool `yaml:"enable_export"`

	// Endpoint is the collector host:port. Empty falls back to the
	// OTEL_EXPORTER_OTLP_* environment variables.
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS towards the collector.
	Insecure bool `yaml:"insecure"`
}
