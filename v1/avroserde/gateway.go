package avroserde

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/hamba/avro/v2"
	"golang.org/x/sync/singleflight"

	"github.com/Aleph-Alpha/kafka-avro-serde/v1/avrotypes"
	"github.com/Aleph-Alpha/kafka-avro-serde/v1/logger"
	"github.com/Aleph-Alpha/kafka-avro-serde/v1/schema_registry"
)

// Gateway fronts a schema registry with the register-or-lookup policy and
// caches ids and schemas for its own lifetime. Entries never expire.
//
// Transient failures are retried by the registry client; the gateway itself
// never retries, so a failed registration is never repeated blindly.
type Gateway struct {
	registry schema_registry.Registry
	logger   Logger

	mu      sync.RWMutex
	ids     map[subjectSchema]int
	schemas map[int]avro.Schema

	fetches singleflight.Group
}

type subjectSchema struct {
	subject     string
	fingerprint [32]byte
}

// NewGateway creates a gateway over registry. A nil logger disables logging.
func NewGateway(registry schema_registry.Registry, log Logger) *Gateway {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Gateway{
		registry: registry,
		logger:   log,
		ids:      make(map[subjectSchema]int),
		schemas:  make(map[int]avro.Schema),
	}
}

// ResolveID returns the registry id of schema under subject. With
// autoRegister the schema is registered and never looked up; without it the
// schema is looked up and never registered.
func (g *Gateway) ResolveID(ctx context.Context, subject string, schema avro.Schema, autoRegister bool) (int, error) {
	key := subjectSchema{subject: subject, fingerprint: schema.Fingerprint()}

	g.mu.RLock()
	id, ok := g.ids[key]
	g.mu.RUnlock()
	if ok {
		return id, nil
	}

	text, err := schemaText(schema)
	if err != nil {
		return 0, kindError(ErrEncoding, err)
	}

	if autoRegister {
		id, err = g.registry.RegisterSchema(ctx, subject, text, schema_registry.SchemaTypeAvro)
		if err != nil {
			return 0, kindError(ErrRegistration, err)
		}
		g.logger.DebugWithContext(ctx, "registered schema", nil, map[string]interface{}{
			"subject":   subject,
			"schema_id": id,
		})
	} else {
		id, err = g.registry.LookupSchemaID(ctx, subject, text, schema_registry.SchemaTypeAvro)
		if err != nil {
			return 0, kindError(ErrLookup, err)
		}
	}

	g.mu.Lock()
	g.ids[key] = id
	if _, known := g.schemas[id]; !known {
		g.schemas[id] = schema
	}
	g.mu.Unlock()
	return id, nil
}

// FetchSchema returns the schema registered under id. Concurrent misses for
// the same id share one registry call. The shared call outlives the caller
// that started it; a caller whose ctx ends stops waiting for it.
func (g *Gateway) FetchSchema(ctx context.Context, id int) (avro.Schema, error) {
	g.mu.RLock()
	schema, ok := g.schemas[id]
	g.mu.RUnlock()
	if ok {
		return schema, nil
	}

	shared := context.WithoutCancel(ctx)
	ch := g.fetches.DoChan(strconv.Itoa(id), func() (interface{}, error) {
		text, err := g.registry.GetSchemaByID(shared, id)
		if err != nil {
			return nil, kindError(ErrLookup, fmt.Errorf("schema %d: %w", id, err))
		}
		parsed, err := avrotypes.ParseSchema(text)
		if err != nil {
			return nil, kindError(ErrLookup, fmt.Errorf("schema %d is not valid Avro: %w", id, err))
		}

		g.mu.Lock()
		g.schemas[id] = parsed
		g.mu.Unlock()
		g.logger.DebugWithContext(shared, "fetched schema", nil, map[string]interface{}{
			"schema_id": id,
		})
		return parsed, nil
	})

	select {
	case <-ctx.Done():
		return nil, kindError(ErrLookup, fmt.Errorf("schema %d: %w", id, ctx.Err()))
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(avro.Schema), nil
	}
}

// schemaText renders schema as full JSON, keeping aliases, defaults and
// logical types that the canonical form drops.
func schemaText(schema avro.Schema) (string, error) {
	b, err := json.Marshal(schema)
	if err != nil {
		return "", fmt.Errorf("failed to render schema: %w", err)
	}
	return string(b), nil
}
