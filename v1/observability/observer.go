// Package observability defines the hook that clients in this module use to
// report the operations they perform.
//
// Clients never depend on a concrete metrics or tracing backend. Instead they
// accept an optional Observer and call ObserveOperation once per completed
// operation. The metrics package provides a Prometheus-backed Observer.
package observability

import "time"

// Observer receives a notification for every completed operation.
//
// Implementations must be safe for concurrent use and should return quickly,
// since they are invoked synchronously on the caller's goroutine.
type Observer interface {
	ObserveOperation(ctx OperationContext)
}

// OperationContext describes a single completed operation.
type OperationContext struct {
	// Component is the client that performed the operation (e.g. "avroserde").
	Component string

	// Operation is the operation name (e.g. "serialize", "fetch_schema").
	Operation string

	// Resource is the primary resource the operation acted on, such as a
	// topic or registry subject.
	Resource string

	// SubResource adds context like a schema id or record name.
	SubResource string

	// Duration is how long the operation took.
	Duration time.Duration

	// Error is the operation error, nil on success.
	Error error

	// Size is the payload size in bytes, when meaningful.
	Size int64

	// Metadata carries additional component-specific values.
	Metadata map[string]interface{}
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func(ctx OperationContext)

// ObserveOperation calls f(ctx).
func (f ObserverFunc) ObserveOperation(ctx OperationContext) {
	f(ctx)
}

// Multi fans a single observation out to several observers. Nil entries are
// skipped.
func Multi(observers ...Observer) Observer {
	return ObserverFunc(func(ctx OperationContext) {
		for _, o := range observers {
			if o != nil {
				o.ObserveOperation(ctx)
			}
		}
	})
}
