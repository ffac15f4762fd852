package kafka

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/Aleph-Alpha/kafka-avro-serde/v1/tracer"
)

var _ Tracer = (*tracer.Tracer)(nil)

func TestTraceContextFlowsThroughHeaders(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tr, err := tracer.NewClient(tracer.Config{ServiceName: "kafka-test"}, nil, sdktrace.WithSpanProcessor(recorder))
	require.NoError(t, err)
	t.Cleanup(func() { _ = tr.Shutdown(context.Background()) })

	w := &fakeWriter{}
	producer := newClientWith(Config{Topic: "articles"}, w, nil).WithTracer(tr)

	ctx, parent := tr.StartSpan(context.Background(), "handle-request")
	require.NoError(t, producer.Publish(ctx, "k", "v", map[string]interface{}{"source": "test"}))
	parent.End()

	written := w.written()
	require.Len(t, written, 1)
	headers := fromKafkaHeaders(written[0].Headers)
	assert.Equal(t, "test", headers["source"])
	assert.Contains(t, headers, "traceparent")

	consumer := newClientWith(Config{Topic: "articles"}, nil, newFakeReader(written...)).WithTracer(tr)
	consumeCtx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}
	msg := <-consumer.Consume(consumeCtx, wg)
	cancel()
	wg.Wait()

	sc := trace.SpanContextFromContext(msg.Context())
	require.True(t, sc.IsValid())
	assert.Equal(t, parent.SpanContext().TraceID(), sc.TraceID())

	var names []string
	for _, s := range recorder.Ended() {
		names = append(names, s.Name())
		assert.Equal(t, parent.SpanContext().TraceID(), s.SpanContext().TraceID())
	}
	assert.ElementsMatch(t, []string{"handle-request", "kafka.produce articles", "kafka.consume articles"}, names)
}

func TestPublishWithoutTracerAddsNoHeaders(t *testing.T) {
	w := &fakeWriter{}
	producer := newClientWith(Config{Topic: "t"}, w, nil)
	require.NoError(t, producer.Publish(context.Background(), "k", "v"))
	assert.Empty(t, w.written()[0].Headers)
}
