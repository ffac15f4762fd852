// Package schema_registry provides integration with Confluent Schema Registry.
//
// Core Features:
//   - HTTP client for Confluent Schema Registry (register, lookup, fetch by
//     id, latest version, compatibility)
//   - Multiple endpoints with failover and bounded exponential retry
//   - Typed registry errors (*RestError) with status and error code
//   - Confluent wire format encoding/decoding
//   - In-memory registry for tests, selected with "mock://<scope>" URLs
//
// Basic Usage:
//
//	registry, err := schema_registry.NewClient(schema_registry.Config{
//	    URL:      "http://registry-a:8081,http://registry-b:8081",
//	    Username: "user",     // Optional
//	    Password: "password", // Optional
//	    Timeout:  10 * time.Second,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	id, err := registry.RegisterSchema(ctx, "users-value", avroSchema, schema_registry.SchemaTypeAvro)
//	schema, err := registry.GetSchemaByID(ctx, id)
//
// Retries:
//
// Transport failures and 5xx/429 responses are retried for calls that do not
// change registry state. RegisterSchema is retried only when no endpoint
// could be dialed, since a request that reached the registry may already
// have registered the schema. Registry rejections (4xx) are never retried.
//
// Wire Format:
//
//	[magic_byte (1 byte)] [schema_id (4 bytes, big-endian)] [payload]
//
// The magic byte is always 0x0. EncodeSchemaID, AppendSchemaID and
// DecodeSchemaID produce and parse the header.
//
// Caching:
//
// Clients do not cache. The avroserde gateway owns the id and schema caches
// for the lifetime of a serializer or deserializer.
package schema_registry
