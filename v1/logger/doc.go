// Package logger provides structured logging on top of Uber's zap.
//
// The API takes a message, an optional error and any number of field maps:
//
//	log := logger.NewLoggerClient(logger.Config{
//		Level:         logger.Info,
//		ServiceName:   "orders",
//		EnableTracing: true,
//	})
//
//	log.Info("serde configured", nil, map[string]interface{}{
//		"subject": "orders-value",
//	})
//
//	// With an OpenTelemetry span in ctx, trace_id and span_id are added.
//	log.ErrorWithContext(ctx, "schema lookup failed", err, map[string]interface{}{
//		"schema_id": 42,
//	})
//
// Library packages in this module depend on small logger interfaces rather
// than on *LoggerClient, so any implementation with the same method set can
// be used. NewNopLogger is the default wherever a logger is optional.
//
// # FX Module Integration
//
//	app := fx.New(
//		logger.FXModule, // provides *LoggerClient and logger.Logger
//		fx.Provide(func() logger.Config { return logger.Config{Level: logger.Debug} }),
//	)
package logger
