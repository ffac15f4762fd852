package avroserde

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Aleph-Alpha/kafka-avro-serde/v1/schema_registry"
)

// Recognized configuration keys. Other keys are ignored.
const (
	ConfigSchemaRegistryURL        = "schema.registry.url"
	ConfigAutoRegisterSchemas      = "auto.register.schemas"
	ConfigRecordPackages           = "record.packages"
	ConfigKeySubjectNameStrategy   = "key.subject.name.strategy"
	ConfigValueSubjectNameStrategy = "value.subject.name.strategy"
	ConfigBasicAuthUserInfo        = "basic.auth.user.info"
	ConfigRequestTimeoutMs         = "schema.registry.request.timeout.ms"
	ConfigMaxRetries               = "schema.registry.max.retries"
	ConfigRetryBackoffMs           = "schema.registry.retry.backoff.ms"
)

// Config holds the settings of a serializer or deserializer.
type Config struct {
	// SchemaRegistryURL lists the registry endpoints, comma-separated.
	// "mock://<scope>" selects a shared in-memory registry.
	SchemaRegistryURL string `yaml:"schema_registry_url"`

	// AutoRegisterSchemas registers writer schemas instead of looking them up.
	// Default: false
	AutoRegisterSchemas bool `yaml:"auto_register_schemas"`

	// RecordPackages are the Go package path or Avro namespace prefixes
	// searched when resolving record types on deserialization. nil means
	// unset; an empty, non-nil list restricts resolution to types that
	// declare their exact schema.
	RecordPackages []string `yaml:"record_packages"`

	// KeySubjectNameStrategy and ValueSubjectNameStrategy name the subject
	// strategy for keys and values.
	// Default: TopicNameStrategy
	KeySubjectNameStrategy   string `yaml:"key_subject_name_strategy"`
	ValueSubjectNameStrategy string `yaml:"value_subject_name_strategy"`

	// BasicAuthUserInfo is "user:password" for the registry.
	BasicAuthUserInfo string `yaml:"basic_auth_user_info"`

	// RequestTimeout bounds each registry request.
	// Default: 10 seconds
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// MaxRetries bounds retries of transient registry failures.
	// Default: 3
	MaxRetries int `yaml:"max_retries"`

	// RetryBackoff is the initial backoff between registry retries.
	// Default: 100 milliseconds
	RetryBackoff time.Duration `yaml:"retry_backoff"`
}

// ParseConfig reads a flat property map as passed by broker clients.
// Values may be strings or native Go values; list settings accept
// comma-separated strings or string slices.
func ParseConfig(props map[string]any) (Config, error) {
	var cfg Config
	var err error

	if cfg.SchemaRegistryURL, err = stringProp(props, ConfigSchemaRegistryURL); err != nil {
		return cfg, err
	}
	if cfg.AutoRegisterSchemas, err = boolProp(props, ConfigAutoRegisterSchemas); err != nil {
		return cfg, err
	}
	if cfg.RecordPackages, err = listProp(props, ConfigRecordPackages); err != nil {
		return cfg, err
	}
	if cfg.KeySubjectNameStrategy, err = stringProp(props, ConfigKeySubjectNameStrategy); err != nil {
		return cfg, err
	}
	if cfg.ValueSubjectNameStrategy, err = stringProp(props, ConfigValueSubjectNameStrategy); err != nil {
		return cfg, err
	}
	if cfg.BasicAuthUserInfo, err = stringProp(props, ConfigBasicAuthUserInfo); err != nil {
		return cfg, err
	}

	var ms int
	if ms, err = intProp(props, ConfigRequestTimeoutMs); err != nil {
		return cfg, err
	}
	cfg.RequestTimeout = time.Duration(ms) * time.Millisecond
	if cfg.MaxRetries, err = intProp(props, ConfigMaxRetries); err != nil {
		return cfg, err
	}
	if ms, err = intProp(props, ConfigRetryBackoffMs); err != nil {
		return cfg, err
	}
	cfg.RetryBackoff = time.Duration(ms) * time.Millisecond

	return cfg, nil
}

// ParseYAMLConfig reads a Config from YAML.
func ParseYAMLConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return cfg, nil
}

// RegistryConfig converts c into the registry client configuration.
func (c Config) RegistryConfig() schema_registry.Config {
	user, pass, _ := strings.Cut(c.BasicAuthUserInfo, ":")
	return schema_registry.Config{
		URL:          c.SchemaRegistryURL,
		Username:     user,
		Password:     pass,
		Timeout:      c.RequestTimeout,
		MaxRetries:   c.MaxRetries,
		RetryBackoff: c.RetryBackoff,
	}
}

func stringProp(props map[string]any, key string) (string, error) {
	v, ok := props[key]
	if !ok || v == nil {
		return "", nil
	}
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x), nil
	case []string:
		return strings.Join(x, ","), nil
	case fmt.Stringer:
		return x.String(), nil
	}
	return "", fmt.Errorf("%w: %q must be a string, got %T", ErrConfiguration, key, v)
}

func boolProp(props map[string]any, key string) (bool, error) {
	v, ok := props[key]
	if !ok || v == nil {
		return false, nil
	}
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(x))
		if err != nil {
			return false, fmt.Errorf("%w: %q must be a boolean: %w", ErrConfiguration, key, err)
		}
		return b, nil
	}
	return false, fmt.Errorf("%w: %q must be a boolean, got %T", ErrConfiguration, key, v)
}

func intProp(props map[string]any, key string) (int, error) {
	v, ok := props[key]
	if !ok || v == nil {
		return 0, nil
	}
	switch x := v.(type) {
	case int:
		return x, nil
	case int32:
		return int(x), nil
	case int64:
		return int(x), nil
	case time.Duration:
		return int(x / time.Millisecond), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return 0, fmt.Errorf("%w: %q must be an integer: %w", ErrConfiguration, key, err)
		}
		return n, nil
	}
	return 0, fmt.Errorf("%w: %q must be an integer, got %T", ErrConfiguration, key, v)
}

// listProp returns nil when key is absent and a non-nil, possibly empty,
// slice when it is present.
func listProp(props map[string]any, key string) ([]string, error) {
	v, ok := props[key]
	if !ok || v == nil {
		return nil, nil
	}

	var raw []string
	switch x := v.(type) {
	case string:
		raw = strings.Split(x, ",")
	case []string:
		raw = x
	case []any:
		for _, item := range x {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %q must contain strings, got %T", ErrConfiguration, key, item)
			}
			raw = append(raw, s)
		}
	default:
		return nil, fmt.Errorf("%w: %q must be a list of strings, got %T", ErrConfiguration, key, v)
	}

	out := []string{}
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}
