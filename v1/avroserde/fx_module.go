package avroserde

import (
	"context"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/kafka-avro-serde/v1/avrotypes"
	"github.com/Aleph-Alpha/kafka-avro-serde/v1/observability"
	"github.com/Aleph-Alpha/kafka-avro-serde/v1/schema_registry"
)

// FXModule is an fx.Module that provides a configured value *Serde.
//
// The module provides:
// 1. *Serde configured for record values
// 2. Lifecycle management closing the serde on shutdown
//
// A Registry from schema_registry.FXModule, if present, replaces
// Config.SchemaRegistryURL.
//
// Usage:
//
//	app := fx.New(
//	    schema_registry.FXModule, // Optional: shared registry client
//	    avroserde.FXModule,
//	    fx.Provide(
//	        func() avroserde.Config {
//	            return avroserde.Config{
//	                SchemaRegistryURL: "http://localhost:8081",
//	                RecordPackages:    []string{"com.example.events"},
//	            }
//	        },
//	    ),
//	)
var FXModule = fx.Module("avroserde",
	fx.Provide(
		NewSerdeWithDI,
	),
	fx.Invoke(RegisterSerdeLifecycle),
)

// SerdeParams groups the dependencies needed to create a Serde
type SerdeParams struct {
	fx.In

	Config   Config
	Registry schema_registry.Registry `optional:"true"`
	Catalog  *avrotypes.Catalog       `optional:"true"`
	Logger   Logger                   `optional:"true"`
	Observer observability.Observer   `optional:"true"`
}

// NewSerdeWithDI creates and configures a value Serde from injected
// dependencies.
func NewSerdeWithDI(params SerdeParams) (*Serde, error) {
	opts := []Option{
		WithCatalog(params.Catalog),
		WithObserver(params.Observer),
	}
	if params.Registry != nil {
		opts = append(opts, WithRegistry(params.Registry))
	}
	if params.Logger != nil {
		opts = append(opts, WithLogger(params.Logger))
	}

	serde := NewSerde(opts...)
	if err := serde.ConfigureWith(params.Config, false); err != nil {
		return nil, err
	}
	return serde, nil
}

// SerdeLifecycleParams groups the dependencies needed for Serde lifecycle management
type SerdeLifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Serde     *Serde
}

// RegisterSerdeLifecycle closes the serde when the application stops.
func RegisterSerdeLifecycle(params SerdeLifecycleParams) {
	params.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return params.Serde.Close()
		},
	})
}
