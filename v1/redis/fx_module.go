package redis

import (
	"context"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/kafka-avro-serde/v1/observability"
	"github.com/Aleph-Alpha/kafka-avro-serde/v1/schema_registry"
)

// FXModule is an fx.Module that provides the Redis client.
//
// It does not change the Registry seen by other modules. To put the cache in
// front of the schema registry, add RegistryCacheDecorator at the root of the
// application:
//
//	app := fx.New(
//	    schema_registry.FXModule,
//	    redis.FXModule,
//	    redis.RegistryCacheDecorator,
//	    avroserde.FXModule,
//	    fx.Provide(loadRegistryConfig, loadRedisConfig, loadSerdeConfig),
//	)
var FXModule = fx.Module("redis",
	fx.Provide(
		NewClientWithDI,
		func(r *RedisClient) Client { return r },
	),
	fx.Invoke(RegisterRedisLifecycle),
)

// RegistryCacheDecorator replaces the application's schema_registry.Registry
// with a CachedRegistry backed by the Redis client.
var RegistryCacheDecorator = fx.Decorate(DecorateRegistry)

// RedisParams groups the dependencies needed to create a Redis client
type RedisParams struct {
	fx.In

	Config   Config
	Logger   Logger                 `optional:"true"`
	Observer observability.Observer `optional:"true"`
}

// NewClientWithDI creates a new Redis client using dependency injection.
// The optional logger overrides Config.Logger.
func NewClientWithDI(params RedisParams) (*RedisClient, error) {
	if params.Logger != nil {
		params.Config.Logger = params.Logger
	}

	client, err := NewClient(params.Config)
	if err != nil {
		return nil, err
	}
	if params.Observer != nil {
		client.WithObserver(params.Observer)
	}
	return client, nil
}

// CacheParams groups the dependencies of DecorateRegistry.
type CacheParams struct {
	fx.In

	Registry schema_registry.Registry
	Client   *RedisClient
	Logger   Logger `optional:"true"`
}

// DecorateRegistry wraps the injected Registry with a CachedRegistry that uses
// the key prefix and TTL of the client's Config.
func DecorateRegistry(params CacheParams) schema_registry.Registry {
	cfg := params.Client.Config()
	return NewCachedRegistry(params.Registry, params.Client,
		WithKeyPrefix(cfg.KeyPrefix),
		WithTTL(cfg.TTL),
		WithCacheLogger(params.Logger),
	)
}

// RedisLifecycleParams groups the dependencies needed for Redis lifecycle management
type RedisLifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Client    *RedisClient
}

// RegisterRedisLifecycle pings Redis on start and closes the client on stop.
//
// A failed ping only logs a warning: the schema cache degrades to the
// registry, so an unavailable Redis must not prevent startup.
func RegisterRedisLifecycle(params RedisLifecycleParams) {
	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := params.Client.Ping(ctx); err != nil {
				params.Client.logger.Warn("Failed to ping Redis on startup", err)
				return nil
			}
			params.Client.logger.Info("Redis client started and healthy", nil)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return params.Client.Close()
		},
	})
}
