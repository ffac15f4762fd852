// Package redis provides a Redis client and a Redis-backed cache for the
// schema registry.
//
// Every serde process keeps its own in-memory schema cache, so a fleet of
// fresh consumers still asks the registry once per schema id each. A
// CachedRegistry placed in front of the registry shares those answers across
// processes.
//
// # Architecture
//
// This package follows the "accept interfaces, return structs" design pattern:
//   - Client interface: the key-value operations the cache needs
//   - RedisClient struct: go-redis backed implementation of Client
//   - CachedRegistry struct: a schema_registry.Registry decorator
//   - FX module: provides *RedisClient and Client; RegistryCacheDecorator
//     swaps the injected Registry for a CachedRegistry
//
// # What is cached
//
//   - schema text by schema id (immutable in the registry)
//   - schema id by subject and schema text, filled by RegisterSchema and
//     LookupSchemaID
//
// Latest versions and compatibility checks are always forwarded. Registry
// errors are never cached, and a Redis outage degrades to direct registry
// calls with a warning.
//
// # Direct Usage (Without FX)
//
//	registry, err := schema_registry.New(schema_registry.Config{URL: "http://localhost:8081"})
//	if err != nil {
//		return err
//	}
//	client, err := redis.NewClient(redis.Config{Host: "localhost", Port: 6379})
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	cached := redis.NewCachedRegistry(registry, client, redis.WithTTL(time.Hour))
//	serde := avroserde.NewSerde(avroserde.WithRegistry(cached))
//	err = serde.ConfigureWith(serdeConfig, false)
//
// # FX Module Integration
//
//	app := fx.New(
//		schema_registry.FXModule,
//		redis.FXModule,
//		redis.RegistryCacheDecorator,
//		avroserde.FXModule,
//		fx.Provide(
//			func() schema_registry.Config { return registryConfig },
//			func() redis.Config { return redis.Config{Host: "localhost", TTL: time.Hour} },
//			func() avroserde.Config { return serdeConfig },
//		),
//	)
//
// # Thread Safety
//
// RedisClient and CachedRegistry are safe for concurrent use.
package redis
