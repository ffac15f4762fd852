package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/trace"
)

// Publish serializes value with the configured Serializer and writes it to
// the client's topic.
//
// Parameters:
//   - ctx: Context for cancellation and registry calls made by the serializer
//   - key: Record key; records with the same key land on the same partition
//   - value: Record value, passed to the Serializer
//   - headers: Optional record headers; values are written as strings
//
// A nil value is written as a tombstone (a record with a nil value).
//
// Example:
//
//	err := client.Publish(ctx, article.ID, article, tracerClient.GetCarrier(ctx))
//	if err != nil {
//	    log.Error("Failed to publish article", err, nil)
//	}
func (k *KafkaClient) Publish(ctx context.Context, key string, value any, headers ...map[string]interface{}) error {
	start := time.Now()
	var publishErr error
	var size int64

	defer func() {
		k.observeOperation("produce", k.cfg.Topic, key, time.Since(start), publishErr, size)
	}()

	if k.tracer != nil {
		var span trace.Span
		ctx, span = k.tracer.StartSpan(ctx, "kafka.produce "+k.cfg.Topic)
		defer func() {
			if publishErr != nil {
				k.tracer.RecordErrorOnSpan(span, publishErr)
			}
			span.End()
		}()
	}

	if k.closed() {
		publishErr = ErrClientClosed
		return publishErr
	}

	k.mu.RLock()
	writer, serializer := k.writer, k.serializer
	k.mu.RUnlock()

	if writer == nil {
		publishErr = ErrNotProducer
		return publishErr
	}

	body, err := serializer.SerializeContext(ctx, k.cfg.Topic, value)
	if err != nil {
		publishErr = fmt.Errorf("failed to serialize message: %w", err)
		return publishErr
	}
	size = int64(len(body))

	msg := kafka.Message{
		Key:   []byte(key),
		Value: body,
	}
	var header map[string]interface{}
	if len(headers) > 0 {
		header = headers[0]
	}
	if k.tracer != nil {
		header = withCarrier(header, k.tracer.GetCarrier(ctx))
	}
	msg.Headers = toKafkaHeaders(header)

	if err := writer.WriteMessages(ctx, msg); err != nil {
		publishErr = fmt.Errorf("failed to write message: %w", err)
		return publishErr
	}
	return nil
}

// toKafkaHeaders converts a header map to record headers. []byte values are
// kept, everything else is formatted as a string.
func toKafkaHeaders(headers map[string]interface{}) []kafka.Header {
	if len(headers) == 0 {
		return nil
	}
	out := make([]kafka.Header, 0, len(headers))
	for key, v := range headers {
		var value []byte
		switch x := v.(type) {
		case []byte:
			value = x
		case string:
			value = []byte(x)
		case nil:
		default:
			value = []byte(fmt.Sprint(x))
		}
		out = append(out, kafka.Header{Key: key, Value: value})
	}
	return out
}

// withCarrier returns headers extended with the trace carrier. The caller's
// map is not modified.
func withCarrier(headers map[string]interface{}, carrier map[string]string) map[string]interface{} {
	if len(carrier) == 0 {
		return headers
	}
	out := make(map[string]interface{}, len(headers)+len(carrier))
	for k, v := range headers {
		out[k] = v
	}
	for k, v := range carrier {
		out[k] = v
	}
	return out
}

// fromKafkaHeaders converts record headers to a header map with string
// values.
func fromKafkaHeaders(headers []kafka.Header) map[string]interface{} {
	out := make(map[string]interface{}, len(headers))
	for _, h := range headers {
		out[h.Key] = string(h.Value)
	}
	return out
}
