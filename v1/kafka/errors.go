package kafka

import "errors"

var (
	// ErrClientClosed is returned by operations on a shut down client.
	ErrClientClosed = errors.New("kafka client is closed")

	// ErrNotProducer is returned by Publish on a consumer client.
	ErrNotProducer = errors.New("kafka client is not a producer")

	// ErrNotConsumer is returned by CommitMsg paths on a producer client.
	ErrNotConsumer = errors.New("kafka client is not a consumer")

	// ErrUnsupportedValue is returned by the raw serializer for values that
	// are neither []byte nor string.
	ErrUnsupportedValue = errors.New("unsupported message value")
)

// IsClientClosed checks if err was caused by using a shut down client.
func IsClientClosed(err error) bool {
	return errors.Is(err, ErrClientClosed)
}
