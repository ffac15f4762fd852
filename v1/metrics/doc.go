// Package metrics provides Prometheus metrics for the serde, the schema
// registry client and the Kafka client.
//
// # Architecture
//
// Clients in this module report completed operations to an
// observability.Observer. *Metrics implements that interface and turns each
// observation into:
//   - <namespace>_operations_total{component, operation, status}
//   - <namespace>_operation_duration_seconds{component, operation}
//   - <namespace>_payload_bytes{component, operation}
//   - <namespace>_errors_total{component, operation, kind}
//
// The kind label is derived with ErrorKind from the avroserde and
// schema_registry error helpers, e.g. "lookup", "registration" or "format".
//
// # Direct Usage (Without FX)
//
//	m := metrics.NewMetrics(metrics.Config{
//		Address:                 ":9090",
//		ServiceName:             "article-indexer",
//		EnableDefaultCollectors: true,
//	})
//	go m.Server.ListenAndServe()
//
//	serde := avroserde.NewSerde(avroserde.WithObserver(m))
//	producer = producer.WithObserver(m)
//
// # FX Module Integration
//
//	app := fx.New(
//		metrics.FXModule, // Provides *Metrics, MetricsCollector and observability.Observer
//		fx.Provide(func() metrics.Config {
//			return metrics.Config{Address: ":9090", ServiceName: "article-indexer"}
//		}),
//		schema_registry.FXModule,
//		avroserde.FXModule,
//		kafka.FXModule,
//	)
//
// Custom metrics are registered through CreateCounter, CreateHistogram and
// CreateGauge and carry the same service label.
package metrics
