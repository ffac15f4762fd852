package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics encapsulates the Prometheus registry and HTTP server responsible
// for exposing metrics, and turns observed operations into metrics.
type Metrics struct {
	// Server defines the HTTP server used to expose the /metrics endpoint.
	Server *http.Server

	// Registry is the Prometheus registry where all metrics are registered.
	// Each service maintains its own isolated registry to prevent metric name collisions.
	Registry *prometheus.Registry

	// registerer adds the constant service label.
	registerer prometheus.Registerer

	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	payloadBytes      *prometheus.HistogramVec
	errorsTotal       *prometheus.CounterVec
}

// NewMetrics initializes and returns a new instance of the Metrics struct.
// It sets up a dedicated Prometheus registry, registers the operation
// metrics and optionally the default collectors, wraps all metrics with a
// constant `service` label, and creates an HTTP server exposing /metrics.
//
// Example:
//
//	m := metrics.NewMetrics(metrics.Config{
//	    Address:     ":9090",
//	    ServiceName: "article-indexer",
//	})
//	go m.Server.ListenAndServe()
//
//	serde := avroserde.NewSerde(avroserde.WithObserver(m))
func NewMetrics(cfg Config) *Metrics {
	if cfg.Namespace == "" {
		cfg.Namespace = DefaultNamespace
	}
	if len(cfg.DurationBuckets) == 0 {
		cfg.DurationBuckets = prometheus.DefBuckets
	}

	registry := prometheus.NewRegistry()

	// All metrics emitted by this service include service="<cfg.ServiceName>".
	wrappedRegistry := prometheus.WrapRegistererWith(
		prometheus.Labels{"service": cfg.ServiceName},
		registry,
	)

	m := &Metrics{
		Registry:   registry,
		registerer: wrappedRegistry,
	}

	m.operationsTotal = createCounterVec(cfg.Namespace+"_operations_total",
		"Total number of completed operations", []string{"component", "operation", "status"})
	m.operationDuration = createHistogramVec(cfg.Namespace+"_operation_duration_seconds",
		"Duration of operations in seconds", []string{"component", "operation"}, cfg.DurationBuckets)
	m.payloadBytes = createHistogramVec(cfg.Namespace+"_payload_bytes",
		"Size of encoded payloads and schemas in bytes", []string{"component", "operation"},
		prometheus.ExponentialBuckets(64, 4, 8))
	m.errorsTotal = createCounterVec(cfg.Namespace+"_errors_total",
		"Total number of failed operations by error kind", []string{"component", "operation", "kind"})

	wrappedRegistry.MustRegister(
		m.operationsTotal,
		m.operationDuration,
		m.payloadBytes,
		m.errorsTotal,
	)

	if cfg.EnableDefaultCollectors {
		wrappedRegistry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewBuildInfoCollector(),
		)
	}

	m.Server = &http.Server{
		Addr:    cfg.Address,
		Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}
	return m
}
