package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Aleph-Alpha/kafka-avro-serde/v1/avroserde"
	"github.com/Aleph-Alpha/kafka-avro-serde/v1/observability"
	"github.com/Aleph-Alpha/kafka-avro-serde/v1/schema_registry"
)

// ObserveOperation implements observability.Observer. Every observation
// increments the operation counter and records the duration; payload sizes
// are recorded when positive and failures are counted by error kind.
func (m *Metrics) ObserveOperation(ctx observability.OperationContext) {
	status := "success"
	if ctx.Error != nil {
		status = "error"
		m.errorsTotal.WithLabelValues(ctx.Component, ctx.Operation, ErrorKind(ctx.Error)).Inc()
	}

	m.operationsTotal.WithLabelValues(ctx.Component, ctx.Operation, status).Inc()
	m.operationDuration.WithLabelValues(ctx.Component, ctx.Operation).Observe(ctx.Duration.Seconds())
	if ctx.Size > 0 {
		m.payloadBytes.WithLabelValues(ctx.Component, ctx.Operation).Observe(float64(ctx.Size))
	}
}

// ErrorKind maps err to a low-cardinality label value.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case avroserde.IsFormatError(err), schema_registry.IsWireFormatError(err):
		return "format"
	case avroserde.IsConfigurationError(err):
		return "configuration"
	case avroserde.IsRegistrationError(err):
		return "registration"
	case avroserde.IsLookupError(err):
		return "lookup"
	case avroserde.IsTypeResolutionError(err):
		return "type_resolution"
	case avroserde.IsEncodingError(err):
		return "encoding"
	case avroserde.IsDecodingError(err):
		return "decoding"
	case avroserde.IsClosedError(err):
		return "closed"
	case schema_registry.IsNotFound(err):
		return "not_found"
	case schema_registry.IsIncompatible(err):
		return "incompatible"
	}

	var restErr *schema_registry.RestError
	if errors.As(err, &restErr) {
		return "registry"
	}
	return "other"
}

// IncrementOperations increments the operation counter.
// Example: metrics.IncrementOperations("indexer", "handle_article", "success")
func (m *Metrics) IncrementOperations(component, operation, status string) {
	m.operationsTotal.WithLabelValues(component, operation, status).Inc()
}

// RecordOperationDuration records the duration (in seconds) since start.
// Example: defer metrics.RecordOperationDuration(time.Now(), "indexer", "handle_article")
func (m *Metrics) RecordOperationDuration(start time.Time, component, operation string) {
	m.operationDuration.WithLabelValues(component, operation).Observe(time.Since(start).Seconds())
}

// CreateCounter creates a new CounterVec metric and registers it.
func (m *Metrics) CreateCounter(name, help string, labels []string) *prometheus.CounterVec {
	counter := createCounterVec(name, help, labels)
	m.registerer.MustRegister(counter)
	return counter
}

// CreateHistogram creates a new HistogramVec metric and registers it.
func (m *Metrics) CreateHistogram(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	hist := createHistogramVec(name, help, labels, buckets)
	m.registerer.MustRegister(hist)
	return hist
}

// CreateGauge creates a new GaugeVec metric and registers it.
func (m *Metrics) CreateGauge(name, help string, labels []string) *prometheus.GaugeVec {
	gauge := createGaugeVec(name, help, labels)
	m.registerer.MustRegister(gauge)
	return gauge
}

func createCounterVec(name, help string, labels []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: name,
			Help: help,
		},
		labels,
	)
}

func createHistogramVec(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    name,
			Help:    help,
			Buckets: buckets,
		},
		labels,
	)
}

func createGaugeVec(name, help string, labels []string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: name,
			Help: help,
		},
		labels,
	)
}
