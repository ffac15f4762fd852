package avroserde

import (
	"context"
	"reflect"
	"time"

	"github.com/hamba/avro/v2"

	"github.com/Aleph-Alpha/kafka-avro-serde/v1/avrotypes"
)

// Deserializer turns wire envelopes back into Go values. Named schemas are
// resolved to Go types first in the catalog carried by the call's context
// (avrotypes.WithCatalog), then in the deserializer's own catalog.
//
// It is safe for concurrent use once configured.
type Deserializer struct {
	facade
	codec codec
}

// NewDeserializer creates an unconfigured deserializer.
func NewDeserializer(opts ...Option) *Deserializer {
	o := newOptions(opts)
	return &Deserializer{facade: facade{opts: o}, codec: codec{api: o.api}}
}

// Configure applies a flat property map. It may be called once.
func (d *Deserializer) Configure(props map[string]any, isKey bool) error {
	cfg, err := ParseConfig(props)
	if err != nil {
		return err
	}
	return d.ConfigureWith(cfg, isKey)
}

// ConfigureWith applies a typed configuration. It may be called once.
func (d *Deserializer) ConfigureWith(cfg Config, isKey bool) error {
	return d.configure(cfg, isKey)
}

// Deserialize decodes data read from topic. Nil data yields nil.
//
// Records decode into a value (not a pointer) of the resolved Go type.
// Primitives decode into int32, int64, float32, float64, string, bool or
// []byte; top-level arrays, maps and unions into generic values.
func (d *Deserializer) Deserialize(topic string, data []byte) (any, error) {
	return d.DeserializeContext(context.Background(), topic, data)
}

// DeserializeContext is Deserialize with a context for registry calls and
// catalog selection.
func (d *Deserializer) DeserializeContext(ctx context.Context, topic string, data []byte) (any, error) {
	if data == nil {
		return nil, nil
	}

	start := time.Now()
	value, ref, err := d.deserialize(ctx, data)
	if err != nil {
		value = nil
		err = (&SerializationError{Op: "deserialize", Topic: topic, Err: err}).withSchema(ref)
	}
	d.observeOperation("deserialize", topic, "", ref, time.Since(start), err, int64(len(data)))
	return value, err
}

func (d *Deserializer) deserialize(ctx context.Context, data []byte) (any, schemaRef, error) {
	st, err := d.current()
	if err != nil {
		return nil, schemaRef{}, err
	}

	resolve := func(ctx context.Context, schema avro.Schema) (reflect.Type, error) {
		own := st.resolvers.For(d.opts.catalog)
		if active, ok := avrotypes.CatalogFromContext(ctx); ok && active != d.opts.catalog {
			return resolveWith(schema, st.resolvers.For(active), own)
		}
		return resolveWith(schema, own)
	}
	return d.codec.decode(ctx, data, st.gateway, resolve)
}

// DeserializeInto decodes data into out, a pointer, without type
// resolution. record.packages is not needed.
func (d *Deserializer) DeserializeInto(ctx context.Context, topic string, data []byte, out any) error {
	if data == nil {
		return nil
	}

	start := time.Now()
	var ref schemaRef
	st, err := d.current()
	if err == nil {
		ref, err = d.codec.decodeInto(ctx, data, st.gateway, out)
	}
	if err != nil {
		err = (&SerializationError{Op: "deserialize", Topic: topic, Err: err}).withSchema(ref)
	}
	d.observeOperation("deserialize_into", topic, "", ref, time.Since(start), err, int64(len(data)))
	return err
}

// Close releases the deserializer. Later calls fail with ErrClosed.
func (d *Deserializer) Close() error {
	return d.close()
}
