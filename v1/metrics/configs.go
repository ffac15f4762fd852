package metrics

// Config defines the metrics server and naming settings.
type Config struct {
	// Address is the listen address of the /metrics endpoint, e.g. ":9090".
	Address string `yaml:"address"`

	// ServiceName is added to every metric as the constant "service" label.
	ServiceName string `yaml:"service_name"`

	// Namespace prefixes the operation metric names.
	// Default: "kafka_avro"
	Namespace string `yaml:"namespace"`

	// EnableDefaultCollectors registers the Go, process and build info
	// collectors.
	EnableDefaultCollectors bool `yaml:"enable_default_collectors"`

	// DurationBuckets are the histogram buckets for operation durations in
	// seconds.
	// Default: prometheus.DefBuckets
	DurationBuckets []float64 `yaml:"duration_buckets"`
}

// DefaultNamespace is used when Config.Namespace is empty.
const DefaultNamespace = "kafka_avro"
