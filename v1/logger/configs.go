package logger

// Log levels accepted by Config.Level.
const (
	Debug   = "debug"
	Info    = "info"
	Warning = "warning"
	Error   = "error"
)

// Config controls how the logger is built.
type Config struct {
	// Level is one of Debug, Info, Warning or Error. Anything else means Info.
	Level string `yaml:"level"`

	// ServiceName is attached to every entry as the "service" field.
	ServiceName string `yaml:"service_name"`

	// EnableTracing makes the *WithContext methods attach trace_id and
	// span_id from the OpenTelemetry span stored in the context.
	EnableTracing bool `yaml:"enable_tracing"`
}
