package avroserde

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aleph-Alpha/kafka-avro-serde/v1/observability"
)

type testObserver struct {
	mu  sync.Mutex
	ops []observability.OperationContext
}

func (t *testObserver) ObserveOperation(ctx observability.OperationContext) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ops = append(t.ops, ctx)
}

func (t *testObserver) operations() []observability.OperationContext {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]observability.OperationContext, len(t.ops))
	copy(out, t.ops)
	return out
}

func TestObserveOperationNilObserverNoPanic(t *testing.T) {
	f := &facade{}

	// Should not panic.
	f.observeOperation("serialize", "t", "t-value", knownSchema(1), time.Millisecond, nil, 4)
}

func TestSerdeObserver(t *testing.T) {
	obs := &testObserver{}
	ser, de := newPair(t, nil, WithCatalog(newTestCatalog(t)), WithObserver(obs))

	data, err := ser.Serialize("articles", Article{Title: "observed"})
	require.NoError(t, err)
	_, err = de.Deserialize("articles", data)
	require.NoError(t, err)
	_, err = de.Deserialize("articles", []byte{9})
	require.Error(t, err)

	ops := obs.operations()
	require.Len(t, ops, 3)

	assert.Equal(t, "avroserde", ops[0].Component)
	assert.Equal(t, "serialize", ops[0].Operation)
	assert.Equal(t, "articles", ops[0].Resource)
	assert.Equal(t, "articles-value", ops[0].SubResource)
	assert.Equal(t, int64(len(data)), ops[0].Size)
	assert.NotNil(t, ops[0].Metadata["schema_id"])
	assert.NoError(t, ops[0].Error)

	assert.Equal(t, "deserialize", ops[1].Operation)
	assert.NoError(t, ops[1].Error)

	assert.Equal(t, "deserialize", ops[2].Operation)
	assert.True(t, IsFormatError(ops[2].Error))
	assert.Nil(t, ops[2].Metadata)
}
