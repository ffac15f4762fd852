package schema_registry

import (
	"context"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/kafka-avro-serde/v1/observability"
)

// FXModule is an fx.Module that provides and configures the Schema Registry client.
// This module registers the Registry with the Fx dependency injection framework,
// making it available to other components in the application.
//
// Usage:
//
//	app := fx.New(
//	    schema_registry.FXModule,
//	    fx.Provide(
//	        func() schema_registry.Config {
//	            return schema_registry.Config{
//	                URL:      "http://localhost:8081",
//	                Username: "user",
//	                Password: "pass",
//	            }
//	        },
//	    ),
//	)
var FXModule = fx.Module("schema_registry",
	fx.Provide(
		NewRegistryWithDI,
	),
	fx.Invoke(RegisterSchemaRegistryLifecycle),
)

// SchemaRegistryParams groups the dependencies needed to create a Schema Registry client
type SchemaRegistryParams struct {
	fx.In

	Config   Config
	Logger   Logger                 `optional:"true"`
	Observer observability.Observer `optional:"true"`
}

// NewRegistryWithDI creates the Registry selected by the injected Config.
// The optional logger and observer are attached to HTTP clients.
func NewRegistryWithDI(params SchemaRegistryParams) (Registry, error) {
	if params.Logger != nil {
		params.Config.Logger = params.Logger
	}

	registry, err := New(params.Config)
	if err != nil {
		return nil, err
	}
	if client, ok := registry.(*Client); ok && params.Observer != nil {
		client.WithObserver(params.Observer)
	}
	return registry, nil
}

// SchemaRegistryLifecycleParams groups the dependencies needed for Schema Registry lifecycle management
type SchemaRegistryLifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Registry  Registry
	Logger    Logger `optional:"true"`
}

// RegisterSchemaRegistryLifecycle logs start and stop of the registry client.
// The HTTP client holds no resources that need explicit release.
func RegisterSchemaRegistryLifecycle(params SchemaRegistryLifecycleParams) {
	if params.Logger == nil {
		return
	}
	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			params.Logger.DebugWithContext(ctx, "Schema Registry client initialized", nil)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			params.Logger.DebugWithContext(ctx, "Schema Registry client shutdown", nil)
			return nil
		},
	})
}
