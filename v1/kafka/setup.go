package kafka

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/compress"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/segmentio/kafka-go/sasl/scram"

	"github.com/Aleph-Alpha/kafka-avro-serde/v1/observability"
)

// KafkaClient represents a client for producing and consuming serialized
// records on a single topic.
//
// KafkaClient implements the Client interface.
type KafkaClient struct {
	// cfg stores the configuration for this Kafka client
	cfg Config

	// observer provides optional observability hooks for tracking operations
	observer observability.Observer

	// writer is used for publishing messages
	writer messageWriter

	// reader is used for consuming messages
	reader messageReader

	// serializer is used to encode values before publishing
	serializer Serializer

	// deserializer is used to decode values after consuming
	deserializer Deserializer

	// tracer propagates trace context through record headers
	tracer Tracer

	// mu protects writer, reader and the serde fields
	mu sync.RWMutex

	// shutdownSignal is closed when the client is being shut down
	shutdownSignal chan struct{}

	closeShutdownOnce sync.Once
}

// NewClient creates and initializes a new KafkaClient with the provided configuration.
// This function sets up the producer or the consumer based on cfg.IsConsumer.
//
// Example:
//
//	client, err := kafka.NewClient(config)
//	if err != nil {
//		return nil, err
//	}
//	defer client.GracefulShutdown()
func NewClient(cfg Config) (*KafkaClient, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("topic is required")
	}
	cfg = applyDefaults(cfg)

	k := &KafkaClient{
		cfg:            cfg,
		shutdownSignal: make(chan struct{}),
	}

	var tlsConfig *tls.Config
	var err error
	if cfg.TLS.Enabled {
		tlsConfig, err = createTLSConfig(cfg.TLS)
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS config: %w", err)
		}
	}

	var mechanism sasl.Mechanism
	if cfg.SASL.Enabled {
		mechanism, err = createSASLMechanism(cfg.SASL)
		if err != nil {
			return nil, fmt.Errorf("failed to create SASL mechanism: %w", err)
		}
	}

	if cfg.IsConsumer {
		k.reader = createReader(cfg, tlsConfig, mechanism)
		k.logInfo(context.Background(), "Kafka consumer initialized", nil)
	} else {
		k.writer = createWriter(cfg, tlsConfig, mechanism)
		k.logInfo(context.Background(), "Kafka producer initialized", nil)
	}

	k.SetDefaultSerializers()
	return k, nil
}

// newClientWith builds a client around existing writer and reader
// implementations.
func newClientWith(cfg Config, writer messageWriter, reader messageReader) *KafkaClient {
	k := &KafkaClient{
		cfg:            applyDefaults(cfg),
		writer:         writer,
		reader:         reader,
		shutdownSignal: make(chan struct{}),
	}
	k.SetDefaultSerializers()
	return k
}

func applyDefaults(cfg Config) Config {
	if cfg.MinBytes == 0 {
		cfg.MinBytes = DefaultMinBytes
	}
	if cfg.MaxBytes == 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}
	if cfg.MaxWait == 0 {
		cfg.MaxWait = DefaultMaxWait
	}
	if cfg.CommitInterval == 0 {
		cfg.CommitInterval = DefaultCommitInterval
	}
	if cfg.StartOffset == 0 {
		cfg.StartOffset = DefaultStartOffset
	}
	if cfg.Partition == 0 && cfg.GroupID != "" {
		cfg.Partition = DefaultPartition
	}
	if cfg.RequiredAcks == 0 {
		cfg.RequiredAcks = DefaultRequiredAcks
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = DefaultBatchTimeout
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	return cfg
}

// WithObserver attaches an observer to the Kafka client for tracking operations.
// It returns the client for chaining.
func (k *KafkaClient) WithObserver(observer observability.Observer) *KafkaClient {
	k.observer = observer
	return k
}

// WithTracer enables span creation and trace context propagation through
// record headers. It returns the client for chaining.
func (k *KafkaClient) WithTracer(t Tracer) *KafkaClient {
	k.tracer = t
	return k
}

// SetSerializer sets the value serializer. A nil serializer restores the
// raw default.
func (k *KafkaClient) SetSerializer(s Serializer) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if s == nil {
		s = RawSerializer{}
	}
	k.serializer = s
}

// SetDeserializer sets the value deserializer. A nil deserializer restores
// the raw default.
func (k *KafkaClient) SetDeserializer(d Deserializer) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if d == nil {
		d = RawDeserializer{}
	}
	k.deserializer = d
}

// SetDefaultSerializers installs the raw serializers where none is set.
func (k *KafkaClient) SetDefaultSerializers() {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.serializer == nil {
		k.serializer = RawSerializer{}
	}
	if k.deserializer == nil {
		k.deserializer = RawDeserializer{}
	}
}

// Config returns the effective configuration, defaults applied.
func (k *KafkaClient) Config() Config {
	return k.cfg
}

// createErrorLogger creates a Kafka error logger from the config
func createErrorLogger(cfg Config) kafka.LoggerFunc {
	// Priority 1: Use the std logger if provided
	if cfg.Logger != nil {
		return kafka.LoggerFunc(func(msg string, args ...interface{}) {
			formattedMsg := msg
			if len(args) > 0 {
				formattedMsg = fmt.Sprintf(msg, args...)
			}
			cfg.Logger.Error("Kafka internal error", nil, map[string]interface{}{
				"error": formattedMsg,
				"topic": cfg.Topic,
			})
		})
	}

	// Priority 2: Use custom error logger function
	if cfg.ErrorLogger != nil {
		return kafka.LoggerFunc(cfg.ErrorLogger)
	}

	// Priority 3: Use standard log package
	return kafka.LoggerFunc(func(msg string, args ...interface{}) {
		log.Printf("KAFKA ERROR: "+msg, args...)
	})
}

// createWriter creates a Kafka writer with the given configuration
func createWriter(cfg Config, tlsConfig *tls.Config, mechanism sasl.Mechanism) *kafka.Writer {
	writerConfig := kafka.WriterConfig{
		Brokers:      cfg.Brokers,
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		MaxAttempts:  cfg.MaxAttempts,
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: cfg.RequiredAcks,
		ErrorLogger:  createErrorLogger(cfg),
	}

	if cfg.Async {
		writerConfig.Async = true
		writerConfig.BatchSize = cfg.BatchSize
		writerConfig.BatchTimeout = cfg.BatchTimeout
	}

	writerConfig.CompressionCodec = compressionCodec(cfg.CompressionCodec)

	writerConfig.Dialer = &kafka.Dialer{
		TLS:           tlsConfig,
		SASLMechanism: mechanism,
	}

	return kafka.NewWriter(writerConfig)
}

func compressionCodec(name string) kafka.CompressionCodec {
	switch name {
	case "gzip":
		return &compress.GzipCodec
	case "snappy":
		return &compress.SnappyCodec
	case "lz4":
		return &compress.Lz4Codec
	case "zstd":
		return &compress.ZstdCodec
	}
	return nil
}

// createReader creates a Kafka reader with the given configuration
func createReader(cfg Config, tlsConfig *tls.Config, mechanism sasl.Mechanism) *kafka.Reader {
	readerConfig := kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.Topic,
		GroupID:     cfg.GroupID,
		MinBytes:    cfg.MinBytes,
		MaxBytes:    cfg.MaxBytes,
		MaxWait:     cfg.MaxWait,
		StartOffset: cfg.StartOffset,
		ErrorLogger: createErrorLogger(cfg),
	}

	// CommitInterval 0 commits synchronously on CommitMessages.
	if cfg.EnableAutoCommit {
		readerConfig.CommitInterval = cfg.CommitInterval
	}

	// Partition and GroupID are mutually exclusive.
	if cfg.GroupID == "" && cfg.Partition >= 0 {
		readerConfig.Partition = cfg.Partition
	}

	readerConfig.Dialer = &kafka.Dialer{
		TLS:           tlsConfig,
		SASLMechanism: mechanism,
	}

	return kafka.NewReader(readerConfig)
}

// createTLSConfig creates a TLS configuration from the provided config
func createTLSConfig(cfg TLSConfig) (*tls.Config, error) {
	tlsConfig := &tls.Config{
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	}

	if cfg.CACertPath != "" {
		caCert, err := os.ReadFile(cfg.CACertPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA cert: %w", err)
		}
		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA cert")
		}
		tlsConfig.RootCAs = caCertPool
	}

	if cfg.ClientCertPath != "" && cfg.ClientKeyPath != "" {
		cert, err := tls.LoadX509KeyPair(cfg.ClientCertPath, cfg.ClientKeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load client cert: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	return tlsConfig, nil
}

// createSASLMechanism creates a SASL mechanism from the provided config
func createSASLMechanism(cfg SASLConfig) (sasl.Mechanism, error) {
	switch cfg.Mechanism {
	case "PLAIN":
		return plain.Mechanism{
			Username: cfg.Username,
			Password: cfg.Password,
		}, nil
	case "SCRAM-SHA-256":
		return scram.Mechanism(scram.SHA256, cfg.Username, cfg.Password)
	case "SCRAM-SHA-512":
		return scram.Mechanism(scram.SHA512, cfg.Username, cfg.Password)
	default:
		return nil, fmt.Errorf("unsupported SASL mechanism: %s", cfg.Mechanism)
	}
}

// GracefulShutdown stops all consumers and closes the writer and reader.
// Errors are logged, not returned, since they cannot be handled during
// shutdown.
func (k *KafkaClient) GracefulShutdown() {
	k.closeShutdownOnce.Do(func() {
		close(k.shutdownSignal)
	})

	k.mu.Lock()
	defer k.mu.Unlock()

	k.logInfo(context.Background(), "Shutting down Kafka client", nil)

	if k.writer != nil {
		if err := k.writer.Close(); err != nil {
			k.logWarn(context.Background(), "Failed to close kafka writer", err, nil)
		}
		k.writer = nil
	}
	if k.reader != nil {
		if err := k.reader.Close(); err != nil {
			k.logWarn(context.Background(), "Failed to close kafka reader", err, nil)
		}
		k.reader = nil
	}
}

func (k *KafkaClient) closed() bool {
	select {
	case <-k.shutdownSignal:
		return true
	default:
		return false
	}
}

func (k *KafkaClient) logInfo(ctx context.Context, msg string, fields map[string]interface{}) {
	if k.cfg.Logger == nil {
		return
	}
	k.cfg.Logger.InfoWithContext(ctx, msg, nil, k.withTopic(fields))
}

func (k *KafkaClient) logWarn(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	if k.cfg.Logger == nil {
		return
	}
	k.cfg.Logger.WarnWithContext(ctx, msg, err, k.withTopic(fields))
}

func (k *KafkaClient) withTopic(fields map[string]interface{}) map[string]interface{} {
	out := map[string]interface{}{"topic": k.cfg.Topic}
	for key, v := range fields {
		out[key] = v
	}
	return out
}
