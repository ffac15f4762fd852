package schema_registry

import (
	"time"

	"github.com/Aleph-Alpha/kafka-avro-serde/v1/observability"
)

// observeOperation notifies the observer about a registry call if one is
// configured.
//
// Notes:
//   - resource: the subject, empty for id-based calls
//   - subResource: the schema id, when known
func (c *Client) observeOperation(operation, resource, subResource string, duration time.Duration, err error, size int64) {
	if c == nil || c.observer == nil {
		return
	}

	c.observer.ObserveOperation(observability.OperationContext{
		Component:   "schema_registry",
		Operation:   operation,
		Resource:    resource,
		SubResource: subResource,
		Duration:    duration,
		Error:       err,
		Size:        size,
	})
}
