package avroserde

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"

	"github.com/hamba/avro/v2"

	"github.com/Aleph-Alpha/kafka-avro-serde/v1/avrotypes"
	"github.com/Aleph-Alpha/kafka-avro-serde/v1/schema_registry"
)

// payloadKind selects how a payload is encoded or decoded for a schema.
type payloadKind int

const (
	// payloadRaw is a top-level bytes schema; the payload is the value itself.
	payloadRaw payloadKind = iota
	// payloadPrimitive is any other primitive schema.
	payloadPrimitive
	// payloadNamed is a record, enum or fixed resolved to a Go type.
	payloadNamed
	// payloadGeneric is an array, map or union decoded into generic values.
	payloadGeneric
)

func kindOf(schema avro.Schema) payloadKind {
	switch schema.Type() {
	case avro.Bytes:
		return payloadRaw
	case avro.Record, avro.Enum, avro.Fixed:
		return payloadNamed
	case avro.Array, avro.Map, avro.Union:
		return payloadGeneric
	}
	return payloadPrimitive
}

// codec writes and reads wire envelopes.
type codec struct {
	api avro.API
}

// encode returns the envelope for value, or nil for a nil value. []byte
// values are written verbatim.
func (c codec) encode(value any, schema avro.Schema, id int) ([]byte, error) {
	if value == nil {
		return nil, nil
	}

	if raw, ok := value.([]byte); ok {
		out := make([]byte, 0, schema_registry.HeaderSize+len(raw))
		out = schema_registry.AppendSchemaID(out, id)
		return append(out, raw...), nil
	}

	payload, err := c.api.Marshal(schema, value)
	if err != nil {
		return nil, kindError(ErrEncoding, err)
	}
	out := make([]byte, 0, schema_registry.HeaderSize+len(payload))
	out = schema_registry.AppendSchemaID(out, id)
	return append(out, payload...), nil
}

// typeResolver finds the Go type for a named schema.
type typeResolver func(ctx context.Context, schema avro.Schema) (reflect.Type, error)

// decode splits the envelope, fetches the writer schema and decodes the
// payload. The returned ref is unknown if the envelope could not be parsed.
func (c codec) decode(ctx context.Context, data []byte, g *Gateway, resolve typeResolver) (any, schemaRef, error) {
	id, payload, err := schema_registry.DecodeSchemaID(data)
	if err != nil {
		return nil, schemaRef{}, kindError(ErrFormat, err)
	}
	ref := knownSchema(id)

	schema, err := g.FetchSchema(ctx, id)
	if err != nil {
		return nil, ref, err
	}

	switch kindOf(schema) {
	case payloadRaw:
		return payload, ref, nil

	case payloadNamed:
		t, err := resolve(ctx, schema)
		if err != nil {
			return nil, ref, err
		}
		ptr := reflect.New(t)
		if err := c.unmarshal(schema, payload, ptr.Interface()); err != nil {
			return nil, ref, err
		}
		return ptr.Elem().Interface(), ref, nil

	default:
		var v any
		if err := c.unmarshal(schema, payload, &v); err != nil {
			return nil, ref, err
		}
		return normalizePrimitive(schema, v), ref, nil
	}
}

// decodeInto decodes the payload into out, skipping type resolution.
func (c codec) decodeInto(ctx context.Context, data []byte, g *Gateway, out any) (schemaRef, error) {
	id, payload, err := schema_registry.DecodeSchemaID(data)
	if err != nil {
		return schemaRef{}, kindError(ErrFormat, err)
	}
	ref := knownSchema(id)

	schema, err := g.FetchSchema(ctx, id)
	if err != nil {
		return ref, err
	}

	if kindOf(schema) == payloadRaw {
		target, ok := out.(*[]byte)
		if !ok {
			return ref, kindError(ErrDecoding, fmt.Errorf("bytes payload needs a *[]byte target, got %T", out))
		}
		*target = append((*target)[:0], payload...)
		return ref, nil
	}
	return ref, c.unmarshal(schema, payload, out)
}

// unmarshal decodes exactly one value of schema from payload into out.
// A payload that ends early or carries unread trailing bytes is an
// ErrDecoding; avro.API.Unmarshal treats both as success.
func (c codec) unmarshal(schema avro.Schema, payload []byte, out any) error {
	r := avro.NewReader(nil, 0, avro.WithReaderConfig(c.api)).Reset(payload)
	r.ReadVal(schema, out)
	if err := r.Error; err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return kindError(ErrDecoding, fmt.Errorf("payload of %d bytes: %w", len(payload), err))
	}
	if r.Peek(); r.Error == nil {
		return kindError(ErrDecoding, fmt.Errorf("unread bytes after %s value", schema.Type()))
	}
	return nil
}

// normalizePrimitive narrows generic ints to the Go type matching the Avro
// type; the generic decoder yields int for Avro int.
func normalizePrimitive(schema avro.Schema, v any) any {
	if schema.Type() != avro.Int {
		return v
	}
	switch n := v.(type) {
	case int:
		return int32(n)
	case int64:
		return int32(n)
	}
	return v
}

// resolveWith tries each resolver in order and returns the first match.
// Configuration errors take precedence over not-found errors so that a
// missing record.packages setting is reported as such.
func resolveWith(schema avro.Schema, resolvers ...*avrotypes.Resolver) (reflect.Type, error) {
	var notConfigured, lastErr error
	for _, r := range resolvers {
		if r == nil {
			continue
		}
		t, err := r.Lookup(schema)
		if err == nil {
			return t, nil
		}
		if errors.Is(err, avrotypes.ErrNotConfigured) {
			notConfigured = err
		}
		lastErr = err
	}

	if notConfigured != nil {
		return nil, fmt.Errorf("%w: %q is not set: %w", ErrConfiguration, ConfigRecordPackages, notConfigured)
	}
	if lastErr == nil {
		lastErr = avrotypes.ErrTypeNotFound
	}
	return nil, kindError(ErrTypeResolution, fmt.Errorf("%s: %w", schemaName(schema), lastErr))
}

func schemaName(schema avro.Schema) string {
	if named, ok := schema.(avro.NamedSchema); ok {
		return named.FullName()
	}
	return string(schema.Type())
}
