package avroserde

import (
	"context"
	"encoding/binary"
	"errors"
	"reflect"
	"testing"

	"github.com/hamba/avro/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aleph-Alpha/kafka-avro-serde/v1/avrotypes"
	"github.com/Aleph-Alpha/kafka-avro-serde/v1/schema_registry"
)

func newPair(t *testing.T, props map[string]any, opts ...Option) (*Serializer, *Deserializer) {
	t.Helper()

	scope := "serde-" + t.Name()
	t.Cleanup(func() { schema_registry.DropMockScope(scope) })

	p := map[string]any{
		ConfigSchemaRegistryURL:   schema_registry.MockURLPrefix + scope,
		ConfigAutoRegisterSchemas: true,
		ConfigRecordPackages:      "ns",
	}
	for k, v := range props {
		p[k] = v
	}

	ser := NewSerializer(opts...)
	require.NoError(t, ser.Configure(p, false))
	de := NewDeserializer(opts...)
	require.NoError(t, de.Configure(p, false))
	return ser, de
}

func TestRoundTrip(t *testing.T) {
	author := "ann"
	tests := []struct {
		name  string
		value any
		want  any
	}{
		{name: "int32", value: int32(7), want: int32(7)},
		{name: "int16", value: int16(-3), want: int32(-3)},
		{name: "int", value: 42, want: int64(42)},
		{name: "int64", value: int64(1) << 40, want: int64(1) << 40},
		{name: "float32", value: float32(2.5), want: float32(2.5)},
		{name: "float64", value: 2.25, want: 2.25},
		{name: "string", value: "STR", want: "STR"},
		{name: "bool", value: true, want: true},
		{name: "bytes", value: []byte{0xC, 0xA, 0xF, 0xE}, want: []byte{0xC, 0xA, 0xF, 0xE}},
		{name: "empty bytes", value: []byte{}, want: []byte{}},
		{name: "record", value: Article{Title: "A", Content: "B"}, want: Article{Title: "A", Content: "B"}},
		{name: "record pointer", value: &Article{Title: "A"}, want: Article{Title: "A"}},
		{
			name: "nested record",
			value: Comment{
				Author: &author, Text: "hi", Votes: []int64{1, 2},
				Labels: map[string]string{"lang": "en"}, Status: "PUBLISHED",
			},
			want: Comment{
				Author: &author, Text: "hi", Votes: []int64{1, 2},
				Labels: map[string]string{"lang": "en"}, Status: "PUBLISHED",
			},
		},
		{name: "enum", value: Status("DRAFT"), want: Status("DRAFT")},
		{name: "declared schema", value: Receipt{ID: "r-1"}, want: Receipt{ID: "r-1"}},
		{name: "array", value: []string{"a", "b"}, want: []any{"a", "b"}},
		{name: "map", value: map[string]int64{"a": 1}, want: map[string]any{"a": int64(1)}},
	}

	catalog := newTestCatalog(t)
	ser, de := newPair(t, nil, WithCatalog(catalog))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := ser.Serialize("My-Topic", tt.value)
			require.NoError(t, err)
			require.GreaterOrEqual(t, len(data), schema_registry.HeaderSize)
			assert.Equal(t, schema_registry.MagicByte, data[0])

			got, err := de.Deserialize("My-Topic", data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestArticleScenario(t *testing.T) {
	catalog := avrotypes.NewCatalog("articles")
	require.NoError(t, catalog.Register(Article{}, avrotypes.Name("ns.Article")))

	registry := schema_registry.NewMockClient()
	ser := NewSerializer(WithRegistry(registry), WithCatalog(catalog))
	require.NoError(t, ser.Configure(map[string]any{ConfigAutoRegisterSchemas: true}, false))

	de := NewDeserializer(WithRegistry(registry), WithCatalog(catalog))
	require.NoError(t, de.Configure(map[string]any{ConfigRecordPackages: []string{"ns"}}, false))

	in := Article{Title: "A", Content: "B"}
	data, err := ser.Serialize("articles", in)
	require.NoError(t, err)

	latest, err := registry.GetLatestSchema(context.Background(), "articles-value")
	require.NoError(t, err)
	assert.Equal(t, int(binary.BigEndian.Uint32(data[1:5])), latest.ID)
	registered, err := avrotypes.ParseSchema(latest.Schema)
	require.NoError(t, err)
	assert.Equal(t, "ns.Article", registered.(avro.NamedSchema).FullName())

	out, err := de.Deserialize("articles", data)
	require.NoError(t, err)
	assert.Equal(t, in, out)
	assert.Equal(t, reflect.TypeOf(Article{}), reflect.TypeOf(out))
}

func TestDeserializeResolvesAliases(t *testing.T) {
	writer := avrotypes.NewCatalog("writer")
	require.NoError(t, writer.Register(legacyArticle{}, avrotypes.Name("legacy.Entry")))
	reader := newTestCatalog(t)

	registry := schema_registry.NewMockClient()
	ser := NewSerializer(WithRegistry(registry), WithCatalog(writer))
	require.NoError(t, ser.Configure(map[string]any{ConfigAutoRegisterSchemas: "true"}, false))
	de := NewDeserializer(WithRegistry(registry), WithCatalog(reader))
	require.NoError(t, de.Configure(map[string]any{ConfigRecordPackages: "ns"}, false))

	data, err := ser.Serialize("articles", legacyArticle{Title: "old", Content: "text"})
	require.NoError(t, err)

	out, err := de.Deserialize("articles", data)
	require.NoError(t, err)
	assert.Equal(t, Article{Title: "old", Content: "text"}, out)
}

func TestDeserializeUsesContextCatalog(t *testing.T) {
	host := avrotypes.NewCatalog("host")
	require.NoError(t, host.Register(Article{}, avrotypes.Name("ns.Article")))
	plugin := avrotypes.NewCatalog("plugin")
	require.NoError(t, plugin.Register(pluginArticle{}, avrotypes.Name("ns.Article")))

	ser, de := newPair(t, nil, WithCatalog(host))

	data, err := ser.Serialize("articles", Article{Title: "A", Content: "B"})
	require.NoError(t, err)

	ctx := avrotypes.WithCatalog(context.Background(), plugin)
	out, err := de.DeserializeContext(ctx, "articles", data)
	require.NoError(t, err)
	assert.Equal(t, pluginArticle{Title: "A", Content: "B"}, out)

	// Without an active catalog the deserializer's own catalog is used.
	out, err = de.Deserialize("articles", data)
	require.NoError(t, err)
	assert.Equal(t, Article{Title: "A", Content: "B"}, out)

	// A context catalog without the type falls back as well.
	empty := avrotypes.NewCatalog("empty")
	out, err = de.DeserializeContext(avrotypes.WithCatalog(context.Background(), empty), "articles", data)
	require.NoError(t, err)
	assert.Equal(t, Article{Title: "A", Content: "B"}, out)
}

func TestDeserializeRecordPackages(t *testing.T) {
	catalog := newTestCatalog(t)
	registry := schema_registry.NewMockClient()

	ser := NewSerializer(WithRegistry(registry), WithCatalog(catalog))
	require.NoError(t, ser.Configure(map[string]any{ConfigAutoRegisterSchemas: true}, false))

	article, err := ser.Serialize("t", Article{Title: "A"})
	require.NoError(t, err)
	receipt, err := ser.Serialize("t", Receipt{ID: "1"})
	require.NoError(t, err)

	t.Run("unset", func(t *testing.T) {
		de := NewDeserializer(WithRegistry(registry), WithCatalog(catalog))
		require.NoError(t, de.Configure(map[string]any{}, false))

		_, err := de.Deserialize("t", article)
		require.Error(t, err)
		assert.True(t, IsConfigurationError(err))
		assert.Contains(t, err.Error(), ConfigRecordPackages)
		id, known := SchemaIDOf(err)
		assert.True(t, known)
		assert.Equal(t, int(binary.BigEndian.Uint32(article[1:5])), id)

		// Declared schemas resolve without record.packages.
		out, err := de.Deserialize("t", receipt)
		require.NoError(t, err)
		assert.Equal(t, Receipt{ID: "1"}, out)
	})

	t.Run("empty", func(t *testing.T) {
		de := NewDeserializer(WithRegistry(registry), WithCatalog(catalog))
		require.NoError(t, de.Configure(map[string]any{ConfigRecordPackages: []string{}}, false))

		_, err := de.Deserialize("t", article)
		require.Error(t, err)
		assert.True(t, IsTypeResolutionError(err))
		assert.Contains(t, err.Error(), "ns.Article")

		out, err := de.Deserialize("t", receipt)
		require.NoError(t, err)
		assert.Equal(t, Receipt{ID: "1"}, out)
	})

	t.Run("other namespace", func(t *testing.T) {
		de := NewDeserializer(WithRegistry(registry), WithCatalog(catalog))
		require.NoError(t, de.Configure(map[string]any{ConfigRecordPackages: "other"}, false))

		_, err := de.Deserialize("t", article)
		assert.True(t, IsTypeResolutionError(err))
	})
}

func TestSerializeCachesSchemaIDs(t *testing.T) {
	registry := schema_registry.NewMockClient()
	ser := NewSerializer(WithRegistry(registry), WithCatalog(newTestCatalog(t)))
	require.NoError(t, ser.Configure(map[string]any{ConfigAutoRegisterSchemas: true}, false))
	de := NewDeserializer(WithRegistry(registry), WithCatalog(newTestCatalog(t)))
	require.NoError(t, de.Configure(map[string]any{ConfigRecordPackages: "ns"}, false))

	for i := 0; i < 3; i++ {
		data, err := ser.Serialize("articles", Article{Title: "A"})
		require.NoError(t, err)
		_, err = de.Deserialize("articles", data)
		require.NoError(t, err)
	}

	assert.Equal(t, 1, registry.RegisterCalls())
	assert.Equal(t, 1, registry.FetchCalls())
}

func TestSerializerSubjects(t *testing.T) {
	tests := []struct {
		name     string
		isKey    bool
		strategy string
		want     string
	}{
		{name: "value default", want: "orders-value"},
		{name: "key default", isKey: true, want: "orders-key"},
		{name: "record name", strategy: "RecordNameStrategy", want: "ns.Article"},
		{name: "topic record name", strategy: "io.confluent.kafka.serializers.subject.TopicRecordNameStrategy", want: "orders-ns.Article"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := schema_registry.NewMockClient()
			ser := NewSerializer(WithRegistry(registry), WithCatalog(newTestCatalog(t)))
			require.NoError(t, ser.Configure(map[string]any{
				ConfigAutoRegisterSchemas:      true,
				ConfigKeySubjectNameStrategy:   tt.strategy,
				ConfigValueSubjectNameStrategy: tt.strategy,
			}, tt.isKey))

			_, err := ser.Serialize("orders", Article{Title: "A"})
			require.NoError(t, err)

			_, err = registry.GetLatestSchema(context.Background(), tt.want)
			assert.NoError(t, err)
		})
	}
}

func TestRecordNameStrategyNeedsNamedSchema(t *testing.T) {
	ser := NewSerializer(WithRegistry(schema_registry.NewMockClient()))
	require.NoError(t, ser.Configure(map[string]any{ConfigValueSubjectNameStrategy: "RecordNameStrategy"}, false))

	_, err := ser.Serialize("orders", "plain string")
	assert.True(t, IsConfigurationError(err))
}

func TestLifecycle(t *testing.T) {
	t.Run("unconfigured", func(t *testing.T) {
		ser := NewSerializer()
		_, err := ser.Serialize("t", "v")
		require.Error(t, err)
		assert.True(t, IsConfigurationError(err))
		assert.Contains(t, err.Error(), "Configure was not called")

		// An injected registry does not stand in for Configure.
		ser = NewSerializer(WithRegistry(schema_registry.NewMockClient()))
		_, err = ser.Serialize("t", "v")
		require.Error(t, err)
		assert.True(t, IsConfigurationError(err))
		assert.Contains(t, err.Error(), "Configure was not called")
		assert.NotContains(t, err.Error(), ConfigSchemaRegistryURL)

		de := NewDeserializer()
		_, err = de.Deserialize("t", []byte{0, 0, 0, 0, 1})
		assert.True(t, IsConfigurationError(err))
	})

	t.Run("missing url", func(t *testing.T) {
		err := NewSerializer().Configure(map[string]any{ConfigAutoRegisterSchemas: true}, false)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrConfiguration))
		assert.Contains(t, err.Error(), ConfigSchemaRegistryURL)
	})

	t.Run("configured once", func(t *testing.T) {
		ser := NewSerializer(WithRegistry(schema_registry.NewMockClient()))
		require.NoError(t, ser.Configure(nil, false))
		assert.True(t, IsConfigurationError(ser.Configure(nil, false)))
	})

	t.Run("unknown strategy", func(t *testing.T) {
		ser := NewSerializer(WithRegistry(schema_registry.NewMockClient()))
		err := ser.Configure(map[string]any{ConfigValueSubjectNameStrategy: "Nope"}, false)
		assert.True(t, IsConfigurationError(err))

		// A failed Configure leaves the serializer unconfigured.
		require.NoError(t, ser.Configure(nil, false))
	})

	t.Run("closed", func(t *testing.T) {
		ser, de := newPair(t, nil)
		require.NoError(t, ser.Close())
		require.NoError(t, de.Close())

		_, err := ser.Serialize("t", "v")
		assert.True(t, IsClosedError(err))
		_, err = de.Deserialize("t", []byte{0, 0, 0, 0, 1})
		assert.True(t, IsClosedError(err))
		assert.ErrorIs(t, ser.Configure(nil, false), ErrClosed)

		// nil stays nil regardless of state.
		out, err := ser.Serialize("t", nil)
		assert.NoError(t, err)
		assert.Nil(t, out)
	})
}

func TestInjectedRegistryOverridesURL(t *testing.T) {
	registry := schema_registry.NewMockClient()
	ser := NewSerializer(WithRegistry(registry))
	require.NoError(t, ser.Configure(map[string]any{
		ConfigSchemaRegistryURL:   "http://registry.invalid:8081",
		ConfigAutoRegisterSchemas: true,
	}, false))

	_, err := ser.Serialize("t", "v")
	require.NoError(t, err)
	assert.Equal(t, 1, registry.RegisterCalls())
}

func TestDeserializeInto(t *testing.T) {
	ser, de := newPair(t, map[string]any{ConfigRecordPackages: nil}, WithCatalog(newTestCatalog(t)))

	data, err := ser.Serialize("articles", Article{Title: "A", Content: "B"})
	require.NoError(t, err)

	var out legacyArticle
	require.NoError(t, de.DeserializeInto(context.Background(), "articles", data, &out))
	assert.Equal(t, legacyArticle{Title: "A", Content: "B"}, out)

	raw, err := ser.Serialize("blobs", []byte("blob"))
	require.NoError(t, err)
	var b []byte
	require.NoError(t, de.DeserializeInto(context.Background(), "blobs", raw, &b))
	assert.Equal(t, []byte("blob"), b)

	var wrong string
	err = de.DeserializeInto(context.Background(), "blobs", raw, &wrong)
	assert.True(t, IsDecodingError(err))

	assert.NoError(t, de.DeserializeInto(context.Background(), "articles", nil, &out))
}

func TestSerdePair(t *testing.T) {
	scope := "serde-pair"
	t.Cleanup(func() { schema_registry.DropMockScope(scope) })

	serde := NewSerde(WithCatalog(newTestCatalog(t)))
	require.NoError(t, serde.Configure(map[string]any{
		ConfigSchemaRegistryURL:   schema_registry.MockURLPrefix + scope,
		ConfigAutoRegisterSchemas: true,
		ConfigRecordPackages:      "ns",
	}, false))

	data, err := serde.Serializer.Serialize("t", Article{Title: "A"})
	require.NoError(t, err)
	out, err := serde.Deserializer.Deserialize("t", data)
	require.NoError(t, err)
	assert.Equal(t, Article{Title: "A"}, out)

	require.NoError(t, serde.Close())
	_, err = serde.Serializer.Serialize("t", Article{})
	assert.True(t, IsClosedError(err))
}
