package redis

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Aleph-Alpha/kafka-avro-serde/v1/logger"
	"github.com/Aleph-Alpha/kafka-avro-serde/v1/observability"
)

// Client is the key-value surface the schema cache needs from Redis.
//
// This interface is implemented by the concrete *RedisClient type.
type Client interface {
	Ping(ctx context.Context) error
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) (int64, error)
	Close() error
}

// RedisClient wraps the go-redis client with connection management,
// logging and observability hooks.
type RedisClient struct {
	client redis.UniversalClient
	cfg    Config

	logger   Logger
	observer observability.Observer

	// mu protects client against use during Close
	mu     sync.RWMutex
	closed bool
}

var _ Client = (*RedisClient)(nil)

// NewClient creates a Redis client for a standalone instance.
// No connection is made until the first command; use Ping to verify
// reachability.
//
// Example:
//
//	client, err := redis.NewClient(redis.Config{
//		Host: "localhost",
//		Port: 6379,
//	})
//	if err != nil {
//		return nil, err
//	}
//	defer client.Close()
func NewClient(cfg Config) (*RedisClient, error) {
	cfg = applyDefaults(cfg)

	var tlsConfig *tls.Config
	if cfg.TLS.Enabled {
		var err error
		tlsConfig, err = createTLSConfig(cfg.TLS, cfg.Host)
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS config: %w", err)
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:            fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Username:        cfg.Username,
		Password:        cfg.Password,
		DB:              cfg.DB,
		PoolSize:        cfg.PoolSize,
		MinIdleConns:    cfg.MinIdleConns,
		ConnMaxIdleTime: cfg.IdleTimeout,
		MaxRetries:      cfg.MaxRetries,
		MinRetryBackoff: cfg.MinRetryBackoff,
		MaxRetryBackoff: cfg.MaxRetryBackoff,
		DialTimeout:     cfg.DialTimeout,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		TLSConfig:       tlsConfig,
	})

	r := &RedisClient{
		client: client,
		cfg:    cfg,
		logger: cfg.Logger,
	}
	r.logger.Info("Redis client initialized", nil, map[string]interface{}{
		"addr": fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		"db":   cfg.DB,
	})
	return r, nil
}

func applyDefaults(cfg Config) Config {
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.MinRetryBackoff == 0 {
		cfg.MinRetryBackoff = DefaultMinRetryBackoff
	}
	if cfg.MaxRetryBackoff == 0 {
		cfg.MaxRetryBackoff = DefaultMaxRetryBackoff
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = DefaultDialTimeout
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = DefaultKeyPrefix
	}
	if cfg.TTL == 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.TTL < 0 {
		cfg.TTL = 0
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNopLogger()
	}
	return cfg
}

// createTLSConfig creates a TLS configuration from the provided config
func createTLSConfig(cfg TLSConfig, defaultServerName string) (*tls.Config, error) {
	tlsConfig := &tls.Config{
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	}

	if cfg.ServerName != "" {
		tlsConfig.ServerName = cfg.ServerName
	} else if defaultServerName != "" {
		tlsConfig.ServerName = defaultServerName
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

// Config returns the effective configuration, defaults applied.
func (r *RedisClient) Config() Config {
	return r.cfg
}

// Client returns the underlying go-redis client for advanced operations.
func (r *RedisClient) Client() redis.UniversalClient {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.client
}

// Ping checks if the Redis server is reachable and responsive.
func (r *RedisClient) Ping(ctx context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return ErrClosed
	}
	return r.client.Ping(ctx).Err()
}

// Get retrieves the value associated with key.
// Returns an error satisfying IsNilError if the key does not exist.
func (r *RedisClient) Get(ctx context.Context, key string) (string, error) {
	start := time.Now()
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return "", ErrClosed
	}

	result, err := r.client.Get(ctx, key).Result()
	r.observeOperation("get", key, time.Since(start), ignoreNil(err), int64(len(result)), map[string]interface{}{
		"hit": err == nil,
	})
	return result, err
}

// Set stores value under key. A zero ttl keeps the key until evicted.
func (r *RedisClient) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	start := time.Now()
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return ErrClosed
	}

	err := r.client.Set(ctx, key, value, ttl).Err()
	metadata := map[string]interface{}{}
	if ttl > 0 {
		metadata["ttl"] = ttl.String()
	}
	r.observeOperation("set", key, time.Since(start), err, int64(len(value)), metadata)
	return err
}

// Delete removes keys and returns how many existed.
func (r *RedisClient) Delete(ctx context.Context, keys ...string) (int64, error) {
	start := time.Now()
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return 0, ErrClosed
	}

	n, err := r.client.Del(ctx, keys...).Result()
	r.observeOperation("delete", "", time.Since(start), err, 0, map[string]interface{}{
		"keys": len(keys),
	})
	return n, err
}

// Close closes the Redis client and releases all resources.
// Calling Close more than once is a no-op.
func (r *RedisClient) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true

	r.logger.Info("Closing Redis client", nil)
	if err := r.client.Close(); err != nil {
		r.logger.Warn("Failed to close Redis client", err)
		return err
	}
	return nil
}

// WithObserver sets the observer for this client and returns the client for method chaining.
func (r *RedisClient) WithObserver(observer observability.Observer) *RedisClient {
	r.observer = observer
	return r
}

// WithLogger sets the logger for this client and returns the client for method chaining.
func (r *RedisClient) WithLogger(logger Logger) *RedisClient {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// ignoreNil hides cache misses from observers; a miss is not a failure.
func ignoreNil(err error) error {
	if IsNilError(err) {
		return nil
	}
	return err
}
