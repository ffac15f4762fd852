package kafka

import (
	"time"

	"github.com/Aleph-Alpha/kafka-avro-serde/v1/observability"
)

// observeOperation notifies the observer about an operation if one is configured.
// This is used internally to track produce and consume operations for metrics and tracing.
func (k *KafkaClient) observeOperation(operation, resource, subResource string, duration time.Duration, err error, size int64) {
	if k.observer != nil {
		k.observer.ObserveOperation(observability.OperationContext{
			Component:   "kafka",
			Operation:   operation,
			Resource:    resource,
			SubResource: subResource,
			Duration:    duration,
			Error:       err,
			Size:        size,
			Metadata:    nil,
		})
	}
}
