package avroserde

import (
	"time"

	"github.com/Aleph-Alpha/kafka-avro-serde/v1/observability"
)

// observeOperation notifies the observer about a serde call if one is
// configured.
//
// Notes:
//   - resource: the topic
//   - subResource: the subject, when known
//   - metadata: schema_id when known
func (f *facade) observeOperation(operation, topic, subject string, schema schemaRef, duration time.Duration, err error, size int64) {
	if f == nil || f.opts.observer == nil {
		return
	}

	var metadata map[string]interface{}
	if schema.known {
		metadata = map[string]interface{}{"schema_id": schema.id}
	}

	f.opts.observer.ObserveOperation(observability.OperationContext{
		Component:   "avroserde",
		Operation:   operation,
		Resource:    topic,
		SubResource: subject,
		Duration:    duration,
		Error:       err,
		Size:        size,
		Metadata:    metadata,
	})
}
