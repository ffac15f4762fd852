package kafka

import (
	"context"
	"sync"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/trace"
)

// Client provides a high-level interface for producing and consuming
// serialized records.
//
// This interface is implemented by the concrete *KafkaClient type.
type Client interface {
	// Publish serializes value and writes it with key and optional headers.
	Publish(ctx context.Context, key string, value any, headers ...map[string]interface{}) error

	// Consume starts reading messages and delivers them on the returned
	// channel, decoded by the configured Deserializer.
	Consume(ctx context.Context, wg *sync.WaitGroup) <-chan Message

	// ConsumeParallel is Consume with decoding spread over workers.
	// Delivery order across partitions is not preserved.
	ConsumeParallel(ctx context.Context, wg *sync.WaitGroup, workers int) <-chan Message

	// GracefulShutdown stops consumers and closes the broker connections.
	GracefulShutdown()
}

// Message represents a consumed record.
type Message interface {
	// CommitMsg commits the message offset for the consumer group.
	CommitMsg() error

	// Body returns the raw record value.
	Body() []byte

	// Key returns the record key.
	Key() string

	// Header returns the record headers.
	Header() map[string]interface{}

	// Value returns the decoded record value, or nil when decoding failed.
	Value() any

	// DecodeErr returns the error raised while decoding Body, if any.
	DecodeErr() error

	// Topic, Partition and Offset locate the record.
	Topic() string
	Partition() int
	Offset() int64

	// Context carries the trace context restored from the record headers
	// when a Tracer is set, and context.Background() otherwise.
	Context() context.Context
}

// Tracer creates spans and moves trace context in and out of record
// headers. *tracer.Tracer implements it.
type Tracer interface {
	StartSpan(ctx context.Context, name string) (context.Context, trace.Span)
	RecordErrorOnSpan(span trace.Span, err error)
	GetCarrier(ctx context.Context) map[string]string
	SetCarrierOnContext(ctx context.Context, carrier map[string]string) context.Context
}

// Serializer encodes record values before they are written.
// *avroserde.Serializer implements it.
type Serializer interface {
	SerializeContext(ctx context.Context, topic string, value any) ([]byte, error)
}

// Deserializer decodes record values after they are read.
// *avroserde.Deserializer implements it.
type Deserializer interface {
	DeserializeContext(ctx context.Context, topic string, data []byte) (any, error)
}

// messageWriter is the part of *kafka.Writer used by the client.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// messageReader is the part of *kafka.Reader used by the client.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

var (
	_ messageWriter = (*kafka.Writer)(nil)
	_ messageReader = (*kafka.Reader)(nil)
	_ Client        = (*KafkaClient)(nil)
)
