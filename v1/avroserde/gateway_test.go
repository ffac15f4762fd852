package avroserde

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/Aleph-Alpha/kafka-avro-serde/v1/avrotypes"
	"github.com/Aleph-Alpha/kafka-avro-serde/v1/schema_registry"
)

const articleSchema = `{"type":"record","name":"Article","namespace":"ns","fields":[{"name":"title","type":"string"},{"name":"content","type":"string"}]}`

func TestGatewayAutoRegisterNeverLooksUp(t *testing.T) {
	ctrl := gomock.NewController(t)
	registry := schema_registry.NewMockRegistry(ctrl)

	schema, err := avrotypes.ParseSchema(articleSchema)
	require.NoError(t, err)

	registry.EXPECT().
		RegisterSchema(gomock.Any(), "articles-value", gomock.Any(), schema_registry.SchemaTypeAvro).
		Return(12, nil).
		Times(1)

	g := NewGateway(registry, nil)
	for i := 0; i < 2; i++ {
		id, err := g.ResolveID(context.Background(), "articles-value", schema, true)
		require.NoError(t, err)
		assert.Equal(t, 12, id)
	}

	// Registered schemas are served from the cache.
	fetched, err := g.FetchSchema(context.Background(), 12)
	require.NoError(t, err)
	assert.Equal(t, schema.Fingerprint(), fetched.Fingerprint())
}

func TestGatewayLookupNeverRegisters(t *testing.T) {
	ctrl := gomock.NewController(t)
	registry := schema_registry.NewMockRegistry(ctrl)

	schema, err := avrotypes.ParseSchema(articleSchema)
	require.NoError(t, err)

	notFound := &schema_registry.RestError{StatusCode: http.StatusNotFound, ErrorCode: schema_registry.ErrorCodeSchemaNotFound, Message: "Schema not found"}
	registry.EXPECT().
		LookupSchemaID(gomock.Any(), "articles-value", gomock.Any(), schema_registry.SchemaTypeAvro).
		Return(0, notFound).
		Times(1)

	_, err = NewGateway(registry, nil).ResolveID(context.Background(), "articles-value", schema, false)
	require.Error(t, err)
	assert.True(t, IsLookupError(err))
	assert.False(t, IsRegistrationError(err))

	var restErr *schema_registry.RestError
	require.ErrorAs(t, err, &restErr)
	assert.Equal(t, schema_registry.ErrorCodeSchemaNotFound, restErr.ErrorCode)
}

func TestGatewayRegistrationFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	registry := schema_registry.NewMockRegistry(ctrl)

	schema, err := avrotypes.ParseSchema(articleSchema)
	require.NoError(t, err)

	registry.EXPECT().
		RegisterSchema(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(0, &schema_registry.RestError{StatusCode: http.StatusConflict, ErrorCode: schema_registry.ErrorCodeIncompatibleSchema}).
		Times(1)

	_, err = NewGateway(registry, nil).ResolveID(context.Background(), "articles-value", schema, true)
	assert.True(t, IsRegistrationError(err))
	assert.True(t, schema_registry.IsIncompatible(err))
}

func TestGatewayFetchSchemaCaches(t *testing.T) {
	ctrl := gomock.NewController(t)
	registry := schema_registry.NewMockRegistry(ctrl)

	registry.EXPECT().
		GetSchemaByID(gomock.Any(), 5).
		Return(articleSchema, nil).
		Times(1)

	g := NewGateway(registry, nil)
	first, err := g.FetchSchema(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "ns.Article", schemaName(first))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			schema, err := g.FetchSchema(context.Background(), 5)
			assert.NoError(t, err)
			assert.Same(t, first, schema)
		}()
	}
	wg.Wait()
}

func TestGatewayFetchSchemaOutlivesCancelledCaller(t *testing.T) {
	ctrl := gomock.NewController(t)
	registry := schema_registry.NewMockRegistry(ctrl)

	started := make(chan struct{})
	release := make(chan struct{})
	registry.EXPECT().
		GetSchemaByID(gomock.Any(), 5).
		DoAndReturn(func(ctx context.Context, _ int) (string, error) {
			close(started)
			<-release
			if err := ctx.Err(); err != nil {
				return "", err
			}
			return `"long"`, nil
		}).
		Times(1)

	g := NewGateway(registry, nil)

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := g.FetchSchema(ctx, 5)
		firstErr <- err
	}()

	<-started
	cancel()
	err := <-firstErr
	require.Error(t, err)
	assert.True(t, IsLookupError(err))
	assert.ErrorIs(t, err, context.Canceled)

	close(release)
	schema, err := g.FetchSchema(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "long", string(schema.Type()))
}

func TestGatewayFetchSchemaFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	registry := schema_registry.NewMockRegistry(ctrl)

	registry.EXPECT().GetSchemaByID(gomock.Any(), 1).Return("", errors.New("connection refused"))
	registry.EXPECT().GetSchemaByID(gomock.Any(), 2).Return(`{"type":`, nil)

	g := NewGateway(registry, nil)

	_, err := g.FetchSchema(context.Background(), 1)
	assert.True(t, IsLookupError(err))
	assert.Contains(t, err.Error(), "schema 1")

	_, err = g.FetchSchema(context.Background(), 2)
	assert.True(t, IsLookupError(err))
}

func TestSerializeExclusivity(t *testing.T) {
	t.Run("lookup only", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		registry := schema_registry.NewMockRegistry(ctrl)
		registry.EXPECT().
			LookupSchemaID(gomock.Any(), "articles-value", gomock.Any(), gomock.Any()).
			Return(0, &schema_registry.RestError{StatusCode: http.StatusNotFound, ErrorCode: schema_registry.ErrorCodeSubjectNotFound})
		registry.EXPECT().RegisterSchema(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		ser := NewSerializer(WithRegistry(registry), WithCatalog(newTestCatalog(t)))
		require.NoError(t, ser.Configure(map[string]any{ConfigAutoRegisterSchemas: false}, false))

		_, err := ser.Serialize("articles", Article{Title: "A"})
		require.Error(t, err)
		assert.True(t, IsLookupError(err))

		var serr *SerializationError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, "serialize", serr.Op)
		assert.Equal(t, "articles", serr.Topic)
		assert.Equal(t, "articles-value", serr.Subject)
		assert.False(t, serr.HasSchemaID)
	})

	t.Run("register only", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		registry := schema_registry.NewMockRegistry(ctrl)
		registry.EXPECT().
			RegisterSchema(gomock.Any(), "articles-value", gomock.Any(), gomock.Any()).
			Return(3, nil)
		registry.EXPECT().LookupSchemaID(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		ser := NewSerializer(WithRegistry(registry), WithCatalog(newTestCatalog(t)))
		require.NoError(t, ser.Configure(map[string]any{ConfigAutoRegisterSchemas: true}, false))

		data, err := ser.Serialize("articles", Article{Title: "A"})
		require.NoError(t, err)
		assert.Equal(t, []byte{0, 0, 0, 0, 3}, data[:5])
	})
}

func TestNullIdentityWithoutRegistry(t *testing.T) {
	ctrl := gomock.NewController(t)
	registry := schema_registry.NewMockRegistry(ctrl)

	ser := NewSerializer(WithRegistry(registry))
	require.NoError(t, ser.Configure(map[string]any{ConfigAutoRegisterSchemas: true}, false))
	de := NewDeserializer(WithRegistry(registry))
	require.NoError(t, de.Configure(map[string]any{ConfigRecordPackages: "ns"}, false))

	out, err := ser.Serialize("t", nil)
	assert.NoError(t, err)
	assert.Nil(t, out)

	var missing *Article
	out, err = ser.Serialize("t", missing)
	assert.NoError(t, err)
	assert.Nil(t, out)

	value, err := de.Deserialize("t", nil)
	assert.NoError(t, err)
	assert.Nil(t, value)
}

func TestEnvelopeValidity(t *testing.T) {
	ctrl := gomock.NewController(t)
	registry := schema_registry.NewMockRegistry(ctrl)

	de := NewDeserializer(WithRegistry(registry))
	require.NoError(t, de.Configure(map[string]any{ConfigRecordPackages: "ns"}, false))

	inputs := [][]byte{
		{},
		{0},
		{0, 0, 0, 1},
		{1, 0, 0, 0, 1},
		{0xFF, 0, 0, 0, 1, 2, 3},
	}
	for _, data := range inputs {
		_, err := de.Deserialize("t", data)
		require.Error(t, err, "%x", data)
		assert.True(t, IsFormatError(err), "%x", data)
		assert.True(t, schema_registry.IsWireFormatError(err), "%x", data)
		_, known := SchemaIDOf(err)
		assert.False(t, known, "%x", data)
	}
}

func TestDeserializeLookupErrorCarriesSchemaID(t *testing.T) {
	ctrl := gomock.NewController(t)
	registry := schema_registry.NewMockRegistry(ctrl)
	registry.EXPECT().
		GetSchemaByID(gomock.Any(), 77).
		Return("", &schema_registry.RestError{StatusCode: http.StatusNotFound, ErrorCode: schema_registry.ErrorCodeSchemaNotFound})

	de := NewDeserializer(WithRegistry(registry))
	require.NoError(t, de.Configure(map[string]any{ConfigRecordPackages: "ns"}, false))

	_, err := de.Deserialize("t", []byte{0, 0, 0, 0, 77, 1})
	require.Error(t, err)
	assert.True(t, IsLookupError(err))
	id, known := SchemaIDOf(err)
	assert.True(t, known)
	assert.Equal(t, 77, id)
	assert.Contains(t, err.Error(), "schema id 77")
}

func TestDeserializeMaxWireID(t *testing.T) {
	ctrl := gomock.NewController(t)
	registry := schema_registry.NewMockRegistry(ctrl)
	registry.EXPECT().
		GetSchemaByID(gomock.Any(), -1).
		Return("", &schema_registry.RestError{StatusCode: http.StatusNotFound, ErrorCode: schema_registry.ErrorCodeSchemaNotFound})

	de := NewDeserializer(WithRegistry(registry))
	require.NoError(t, de.Configure(nil, false))

	_, err := de.Deserialize("t", []byte{0, 0xFF, 0xFF, 0xFF, 0xFF, 1})
	require.Error(t, err)
	assert.True(t, IsLookupError(err))
	id, known := SchemaIDOf(err)
	assert.True(t, known)
	assert.Equal(t, -1, id)
	assert.Contains(t, err.Error(), "schema id -1")
}

func TestDeserializeCorruptPayload(t *testing.T) {
	ctrl := gomock.NewController(t)
	registry := schema_registry.NewMockRegistry(ctrl)
	registry.EXPECT().GetSchemaByID(gomock.Any(), 9).Return(`"long"`, nil).AnyTimes()
	registry.EXPECT().GetSchemaByID(gomock.Any(), 10).Return(articleSchema, nil).AnyTimes()

	catalog := newTestCatalog(t)
	de := NewDeserializer(WithRegistry(registry), WithCatalog(catalog))
	require.NoError(t, de.Configure(map[string]any{ConfigRecordPackages: "ns"}, false))

	// title "A", content "B"
	article := []byte{0, 0, 0, 0, 10, 2, 'A', 2, 'B'}
	out, err := de.Deserialize("t", article)
	require.NoError(t, err)
	require.Equal(t, Article{Title: "A", Content: "B"}, out)

	tests := []struct {
		name string
		data []byte
		id   int
	}{
		{name: "long header only", data: []byte{0, 0, 0, 0, 9}, id: 9},
		{name: "unterminated varint", data: []byte{0, 0, 0, 0, 9, 0xFF, 0xFF}, id: 9},
		{name: "long with trailing bytes", data: []byte{0, 0, 0, 0, 9, 2, 0}, id: 9},
		{name: "record header only", data: article[:5], id: 10},
		{name: "record cut before second field", data: article[:7], id: 10},
		{name: "record cut inside second field", data: article[:8], id: 10},
		{name: "record with trailing bytes", data: append(append([]byte{}, article...), 0), id: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, err := de.Deserialize("t", tt.data)
			require.Error(t, err)
			assert.Nil(t, value)
			assert.True(t, IsDecodingError(err))
			id, known := SchemaIDOf(err)
			assert.True(t, known)
			assert.Equal(t, tt.id, id)

			var into Article
			err = de.DeserializeInto(context.Background(), "t", tt.data, &into)
			assert.True(t, IsDecodingError(err))
		})
	}
}
