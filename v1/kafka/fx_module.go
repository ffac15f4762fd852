package kafka

import (
	"context"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/kafka-avro-serde/v1/avroserde"
	"github.com/Aleph-Alpha/kafka-avro-serde/v1/observability"
	"github.com/Aleph-Alpha/kafka-avro-serde/v1/tracer"
)

// FXModule is an fx.Module that provides and configures the Kafka client.
// When an *avroserde.Serde is available in the container, it becomes the
// client's value serializer and deserializer.
//
// Usage:
//
//	app := fx.New(
//	    avroserde.FXModule,
//	    kafka.FXModule,
//	    fx.Provide(
//	        func() kafka.Config {
//	            return kafka.Config{Brokers: []string{"localhost:9092"}, Topic: "articles"}
//	        },
//	    ),
//	)
var FXModule = fx.Module("kafka",
	fx.Provide(
		NewClientWithDI,
		func(k *KafkaClient) Client { return k },
	),
	fx.Invoke(RegisterKafkaLifecycle),
)

// KafkaParams groups the dependencies needed to create a Kafka client
type KafkaParams struct {
	fx.In

	Config   Config
	Logger   Logger                 `optional:"true"`
	Serde    *avroserde.Serde       `optional:"true"`
	Tracer   *tracer.Tracer         `optional:"true"`
	Observer observability.Observer `optional:"true"`
}

// NewClientWithDI creates a Kafka client from injected dependencies.
func NewClientWithDI(params KafkaParams) (*KafkaClient, error) {
	if params.Logger != nil {
		params.Config.Logger = params.Logger
	}

	client, err := NewClient(params.Config)
	if err != nil {
		return nil, err
	}
	if params.Serde != nil {
		client.SetSerializer(params.Serde.Serializer)
		client.SetDeserializer(params.Serde.Deserializer)
	}
	if params.Tracer != nil {
		client.WithTracer(params.Tracer)
	}
	if params.Observer != nil {
		client.WithObserver(params.Observer)
	}
	return client, nil
}

// KafkaLifecycleParams groups the dependencies needed for Kafka lifecycle management
type KafkaLifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Client    *KafkaClient
}

// RegisterKafkaLifecycle shuts the client down when the application stops.
// Consumers started by the application observe the shutdown and close
// their channels.
func RegisterKafkaLifecycle(params KafkaLifecycleParams) {
	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			params.Client.logInfo(ctx, "Kafka client started", nil)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			params.Client.GracefulShutdown()
			return nil
		},
	})
}
