package avroserde

import (
	"context"
	"reflect"
	"time"
)

// Serializer turns Go values into wire envelopes, resolving schema ids
// through the registry. It is safe for concurrent use once configured.
type Serializer struct {
	facade
	codec codec
}

// NewSerializer creates an unconfigured serializer.
func NewSerializer(opts ...Option) *Serializer {
	o := newOptions(opts)
	return &Serializer{facade: facade{opts: o}, codec: codec{api: o.api}}
}

// Configure applies a flat property map. It may be called once.
func (s *Serializer) Configure(props map[string]any, isKey bool) error {
	cfg, err := ParseConfig(props)
	if err != nil {
		return err
	}
	return s.ConfigureWith(cfg, isKey)
}

// ConfigureWith applies a typed configuration. It may be called once.
func (s *Serializer) ConfigureWith(cfg Config, isKey bool) error {
	return s.configure(cfg, isKey)
}

// Serialize encodes value for topic. A nil value yields nil without
// touching the registry.
func (s *Serializer) Serialize(topic string, value any) ([]byte, error) {
	return s.SerializeContext(context.Background(), topic, value)
}

// SerializeContext is Serialize with a context for registry calls.
func (s *Serializer) SerializeContext(ctx context.Context, topic string, value any) ([]byte, error) {
	if isNil(value) {
		return nil, nil
	}

	start := time.Now()
	out, subject, ref, err := s.serialize(ctx, topic, value)
	if err != nil {
		err = (&SerializationError{Op: "serialize", Topic: topic, Subject: subject, Err: err}).withSchema(ref)
	}
	s.observeOperation("serialize", topic, subject, ref, time.Since(start), err, int64(len(out)))
	return out, err
}

func (s *Serializer) serialize(ctx context.Context, topic string, value any) ([]byte, string, schemaRef, error) {
	st, err := s.current()
	if err != nil {
		return nil, "", schemaRef{}, err
	}

	schema, err := s.opts.catalog.SchemaFor(value)
	if err != nil {
		return nil, "", schemaRef{}, kindError(ErrEncoding, err)
	}

	subject, err := st.subject(topic, st.isKey, schema)
	if err != nil {
		return nil, "", schemaRef{}, err
	}

	id, err := st.gateway.ResolveID(ctx, subject, schema, st.config.AutoRegisterSchemas)
	if err != nil {
		return nil, subject, schemaRef{}, err
	}

	out, err := s.codec.encode(value, schema, id)
	if err != nil {
		return nil, subject, knownSchema(id), err
	}
	return out, subject, knownSchema(id), nil
}

// Close releases the serializer. Later calls fail with ErrClosed.
func (s *Serializer) Close() error {
	return s.close()
}

// isNil reports whether v is nil or a nil pointer.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
