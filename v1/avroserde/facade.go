package avroserde

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/Aleph-Alpha/kafka-avro-serde/v1/avrotypes"
	"github.com/Aleph-Alpha/kafka-avro-serde/v1/schema_registry"
)

// configured is the state built by Configure. It is immutable once
// published.
type configured struct {
	config    Config
	isKey     bool
	gateway   *Gateway
	subject   SubjectNameStrategy
	resolvers *avrotypes.ResolverCache
}

// facade carries the Unconfigured -> Configured -> Closed state machine shared
// by Serializer and Deserializer.
type facade struct {
	opts options

	mu     sync.Mutex
	state  atomic.Pointer[configured]
	closed atomic.Bool
}

func (f *facade) configure(cfg Config, isKey bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed.Load() {
		return ErrClosed
	}
	if f.state.Load() != nil {
		return fmt.Errorf("%w: already configured", ErrConfiguration)
	}

	registry := f.opts.registry
	if registry == nil {
		if cfg.SchemaRegistryURL == "" {
			return missingSetting(ConfigSchemaRegistryURL)
		}
		regCfg := cfg.RegistryConfig()
		regCfg.Logger = f.opts.logger
		r, err := schema_registry.New(regCfg)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrConfiguration, err)
		}
		if client, ok := r.(*schema_registry.Client); ok && f.opts.observer != nil {
			client.WithObserver(f.opts.observer)
		}
		registry = r
	}

	strategyName := cfg.ValueSubjectNameStrategy
	if isKey {
		strategyName = cfg.KeySubjectNameStrategy
	}
	subject, err := subjectNameStrategy(strategyName)
	if err != nil {
		return err
	}

	f.state.Store(&configured{
		config:    cfg,
		isKey:     isKey,
		gateway:   NewGateway(registry, f.opts.logger),
		subject:   subject,
		resolvers: avrotypes.NewResolverCache(cfg.RecordPackages),
	})
	f.opts.logger.DebugWithContext(context.Background(), "avro serde configured", nil, map[string]interface{}{
		"is_key":        isKey,
		"auto_register": cfg.AutoRegisterSchemas,
	})
	return nil
}

// current returns the configured state or the error explaining why calls
// cannot proceed.
func (f *facade) current() (*configured, error) {
	if f.closed.Load() {
		return nil, ErrClosed
	}
	st := f.state.Load()
	if st == nil {
		return nil, fmt.Errorf("%w: Configure was not called", ErrConfiguration)
	}
	return st, nil
}

func (f *facade) close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed.Store(true)
	f.state.Store(nil)
	return nil
}
