package redis

import (
	"time"

	"github.com/Aleph-Alpha/kafka-avro-serde/v1/observability"
)

// observeOperation notifies the observer about a Redis command if one is configured.
//
// Notes:
//   - resource: the Redis key being operated on, empty for multi-key deletes
//   - metadata["hit"] is set on reads so cache efficiency can be derived
func (r *RedisClient) observeOperation(operation, resource string, duration time.Duration, err error, size int64, metadata map[string]interface{}) {
	if r == nil || r.observer == nil {
		return
	}

	r.observer.ObserveOperation(observability.OperationContext{
		Component: "redis",
		Operation: operation,
		Resource:  resource,
		Duration:  duration,
		Error:     err,
		Size:      size,
		Metadata:  metadata,
	})
}
