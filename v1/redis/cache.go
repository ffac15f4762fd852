package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/Aleph-Alpha/kafka-avro-serde/v1/logger"
	"github.com/Aleph-Alpha/kafka-avro-serde/v1/schema_registry"
)

// CachedRegistry is a schema_registry.Registry that shares registry answers
// between processes through Redis.
//
// Only immutable answers are cached: schema text by id, and the id of a
// schema under a subject. GetLatestSchema and CheckCompatibility always reach
// the registry. A Redis failure never fails a call; it is logged and the
// registry answers instead.
type CachedRegistry struct {
	next   schema_registry.Registry
	store  Client
	prefix string
	ttl    time.Duration
	logger Logger
}

var _ schema_registry.Registry = (*CachedRegistry)(nil)

// CacheOption configures a CachedRegistry.
type CacheOption func(*CachedRegistry)

// WithKeyPrefix sets the namespace of every cache key.
func WithKeyPrefix(prefix string) CacheOption {
	return func(c *CachedRegistry) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}

// WithTTL sets the lifetime of cache entries. Zero disables expiry.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *CachedRegistry) {
		if ttl >= 0 {
			c.ttl = ttl
		}
	}
}

// WithCacheLogger sets the logger used to report Redis failures.
func WithCacheLogger(l Logger) CacheOption {
	return func(c *CachedRegistry) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewCachedRegistry wraps next with a Redis cache kept in store.
//
// Example:
//
//	registry, _ := schema_registry.New(schema_registry.Config{URL: "http://localhost:8081"})
//	client, _ := redis.NewClient(redis.Config{Host: "localhost"})
//	cached := redis.NewCachedRegistry(registry, client, redis.WithTTL(time.Hour))
func NewCachedRegistry(next schema_registry.Registry, store Client, opts ...CacheOption) *CachedRegistry {
	c := &CachedRegistry{
		next:   next,
		store:  store,
		prefix: DefaultKeyPrefix,
		ttl:    DefaultTTL,
		logger: logger.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetSchemaByID serves schema text for id from Redis, filling the cache
// from the registry on a miss.
func (c *CachedRegistry) GetSchemaByID(ctx context.Context, id int) (string, error) {
	key := c.schemaKey(id)
	if schema, ok := c.get(ctx, key); ok {
		return schema, nil
	}

	schema, err := c.next.GetSchemaByID(ctx, id)
	if err != nil {
		return "", err
	}
	c.set(ctx, key, schema)
	return schema, nil
}

// GetLatestSchema is never cached; the latest version moves.
func (c *CachedRegistry) GetLatestSchema(ctx context.Context, subject string) (*schema_registry.Metadata, error) {
	return c.next.GetLatestSchema(ctx, subject)
}

// RegisterSchema returns a cached id when this schema is already known to be
// registered under subject. Otherwise it registers and caches the result.
func (c *CachedRegistry) RegisterSchema(ctx context.Context, subject, schema, schemaType string) (int, error) {
	key := c.idKey(subject, schema, schemaType)
	if id, ok := c.getID(ctx, key); ok {
		return id, nil
	}

	id, err := c.next.RegisterSchema(ctx, subject, schema, schemaType)
	if err != nil {
		return 0, err
	}
	c.set(ctx, key, strconv.Itoa(id))
	c.set(ctx, c.schemaKey(id), schema)
	return id, nil
}

// LookupSchemaID shares cache entries with RegisterSchema. Misses and
// registry rejections are not cached.
func (c *CachedRegistry) LookupSchemaID(ctx context.Context, subject, schema, schemaType string) (int, error) {
	key := c.idKey(subject, schema, schemaType)
	if id, ok := c.getID(ctx, key); ok {
		return id, nil
	}

	id, err := c.next.LookupSchemaID(ctx, subject, schema, schemaType)
	if err != nil {
		return 0, err
	}
	c.set(ctx, key, strconv.Itoa(id))
	return id, nil
}

// CheckCompatibility is never cached; compatibility depends on the latest version.
func (c *CachedRegistry) CheckCompatibility(ctx context.Context, subject, schema, schemaType string) (bool, error) {
	return c.next.CheckCompatibility(ctx, subject, schema, schemaType)
}

// Invalidate drops the cached id of schema under subject, e.g. after the
// subject was deleted from the registry.
func (c *CachedRegistry) Invalidate(ctx context.Context, subject, schema, schemaType string) error {
	_, err := c.store.Delete(ctx, c.idKey(subject, schema, schemaType))
	return err
}

func (c *CachedRegistry) schemaKey(id int) string {
	return fmt.Sprintf("%s:schema:%d", c.prefix, id)
}

func (c *CachedRegistry) idKey(subject, schema, schemaType string) string {
	if schemaType == "" {
		schemaType = schema_registry.SchemaTypeAvro
	}
	sum := sha256.Sum256([]byte(schemaType + "\x00" + schema))
	return fmt.Sprintf("%s:id:%s:%s", c.prefix, subject, hex.EncodeToString(sum[:]))
}

func (c *CachedRegistry) get(ctx context.Context, key string) (string, bool) {
	value, err := c.store.Get(ctx, key)
	if err != nil {
		if !IsNilError(err) {
			c.logger.Warn("schema cache read failed, falling back to registry", err, map[string]interface{}{
				"key": key,
			})
		}
		return "", false
	}
	return value, true
}

func (c *CachedRegistry) getID(ctx context.Context, key string) (int, bool) {
	value, ok := c.get(ctx, key)
	if !ok {
		return 0, false
	}
	id, err := strconv.Atoi(value)
	if err != nil {
		c.logger.Warn("ignoring malformed schema cache entry", err, map[string]interface{}{
			"key": key,
		})
		return 0, false
	}
	return id, true
}

func (c *CachedRegistry) set(ctx context.Context, key, value string) {
	if err := c.store.Set(ctx, key, value, c.ttl); err != nil {
		c.logger.Warn("schema cache write failed", err, map[string]interface{}{
			"key": key,
		})
	}
}
