package redis

import "time"

// Config defines the configuration for the Redis client and the schema
// cache built on top of it.
type Config struct {
	// Host is the Redis server hostname or IP address
	// Default: "localhost"
	Host string `yaml:"host"`

	// Port is the Redis server port
	// Default: 6379
	Port int `yaml:"port"`

	// Username is the Redis username for ACL authentication (Redis 6.0+)
	Username string `yaml:"username"`

	// Password is the Redis password for authentication
	Password string `yaml:"password"`

	// DB is the Redis database number to use
	DB int `yaml:"db"`

	// PoolSize is the maximum number of socket connections
	// Default: 10 per CPU
	PoolSize int `yaml:"pool_size"`

	// MinIdleConns is the minimum number of idle connections to maintain
	MinIdleConns int `yaml:"min_idle_conns"`

	// IdleTimeout is the amount of time after which idle connections are closed
	// Default: 5 minutes
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// MaxRetries is the maximum number of retries before giving up.
	// Set to -1 to disable retries.
	// Default: 3
	MaxRetries int `yaml:"max_retries"`

	// MinRetryBackoff is the minimum backoff between each retry
	// Default: 8 milliseconds
	MinRetryBackoff time.Duration `yaml:"min_retry_backoff"`

	// MaxRetryBackoff is the maximum backoff between each retry
	// Default: 512 milliseconds
	MaxRetryBackoff time.Duration `yaml:"max_retry_backoff"`

	// DialTimeout is the timeout for establishing new connections
	// Default: 5 seconds
	DialTimeout time.Duration `yaml:"dial_timeout"`

	// ReadTimeout is the timeout for socket reads
	// Default: 3 seconds
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the timeout for socket writes
	// Default: ReadTimeout
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// KeyPrefix namespaces every key written by the schema cache.
	// Default: "schema-registry"
	KeyPrefix string `yaml:"key_prefix"`

	// TTL bounds how long cached registry answers live. Zero keeps them
	// until evicted by Redis.
	// Default: 24 hours
	TTL time.Duration `yaml:"ttl"`

	// TLS contains TLS/SSL configuration
	TLS TLSConfig `yaml:"tls"`

	// Logger is an optional logger from the v1/logger package
	Logger Logger `yaml:"-"`
}

// TLSConfig contains TLS/SSL configuration parameters.
type TLSConfig struct {
	Enabled bool `yaml:"enabled"`

	// CACertPath is the file path to the CA certificate for verifying the server
	CACertPath string `yaml:"ca_cert_path"`

	ClientCertPath string `yaml:"client_cert_path"`
	ClientKeyPath  string `yaml:"client_key_path"`

	// WARNING: Setting this to true is insecure and should only be used in testing
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`

	// ServerName is used to verify the hostname on the returned certificates.
	// If empty, Host is used.
	ServerName string `yaml:"server_name"`
}

// Logger is the subset of the v1/logger client used by this package.
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
}

const (
	DefaultHost            = "localhost"
	DefaultPort            = 6379
	DefaultIdleTimeout     = 5 * time.Minute
	DefaultMaxRetries      = 3
	DefaultMinRetryBackoff = 8 * time.Millisecond
	DefaultMaxRetryBackoff = 512 * time.Millisecond
	DefaultDialTimeout     = 5 * time.Second
	DefaultReadTimeout     = 3 * time.Second
	DefaultKeyPrefix       = "schema-registry"
	DefaultTTL             = 24 * time.Hour
)
