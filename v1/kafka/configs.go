package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
)

// Default values applied by NewClient to zero-valued Config fields.
const (
	DefaultMinBytes       = 1
	DefaultMaxBytes       = 10e6
	DefaultMaxWait        = 500 * time.Millisecond
	DefaultCommitInterval = time.Second
	DefaultStartOffset    = kafka.FirstOffset
	DefaultPartition      = -1
	DefaultRequiredAcks   = int(kafka.RequireAll)
	DefaultBatchSize      = 100
	DefaultBatchTimeout   = 10 * time.Millisecond
	DefaultMaxAttempts    = 10
	DefaultWriteTimeout   = 10 * time.Second

	// DefaultConsumerBuffer is the capacity of the channels returned by
	// Consume and ConsumeParallel.
	DefaultConsumerBuffer = 100
)

// Config defines the settings of a KafkaClient. A client is either a
// producer or a consumer, selected by IsConsumer.
type Config struct {
	// Brokers lists the bootstrap broker addresses.
	Brokers []string `yaml:"brokers"`

	// Topic is the topic written to or read from.
	Topic string `yaml:"topic"`

	// GroupID is the consumer group. Empty reads a single partition.
	GroupID string `yaml:"group_id"`

	// IsConsumer selects a reader instead of a writer.
	IsConsumer bool `yaml:"is_consumer"`

	// Consumer settings
	MinBytes         int           `yaml:"min_bytes"`
	MaxBytes         int           `yaml:"max_bytes"`
	MaxWait          time.Duration `yaml:"max_wait"`
	StartOffset      int64         `yaml:"start_offset"`
	Partition        int           `yaml:"partition"`
	EnableAutoCommit bool          `yaml:"enable_auto_commit"`
	CommitInterval   time.Duration `yaml:"commit_interval"`

	// Producer settings
	RequiredAcks     int           `yaml:"required_acks"`
	Async            bool          `yaml:"async"`
	BatchSize        int           `yaml:"batch_size"`
	BatchTimeout     time.Duration `yaml:"batch_timeout"`
	MaxAttempts      int           `yaml:"max_attempts"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	CompressionCodec string        `yaml:"compression_codec"`

	TLS  TLSConfig  `yaml:"tls"`
	SASL SASLConfig `yaml:"sasl"`

	// Logger receives client lifecycle events and internal broker errors.
	Logger Logger `yaml:"-"`

	// ErrorLogger is used for internal broker errors when Logger is nil.
	ErrorLogger func(msg string, args ...interface{}) `yaml:"-"`
}

// TLSConfig holds TLS settings for broker connections.
type TLSConfig struct {
	Enabled            bool   `yaml:"enabled"`
	CACertPath         string `yaml:"ca_cert_path"`
	ClientCertPath     string `yaml:"client_cert_path"`
	ClientKeyPath      string `yaml:"client_key_path"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
}

// SASLConfig holds SASL authentication settings.
type SASLConfig struct {
	Enabled bool `yaml:"enabled"`

	// Mechanism is PLAIN, SCRAM-SHA-256 or SCRAM-SHA-512.
	Mechanism string `yaml:"mechanism"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
}

// Logger is the subset of the std logger used by this package.
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
	InfoWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}
