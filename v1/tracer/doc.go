// Package tracer provides distributed tracing using OpenTelemetry.
//
// It wraps a TracerProvider with a small API for spans and for carrying
// trace context across process boundaries. The kafka package uses it to
// write the context into record headers on publish and to restore it on
// consume, so a consumer's spans and logs join the producer's trace.
//
// Basic Usage:
//
//	tracerClient, err := tracer.NewClient(tracer.Config{
//		ServiceName:  "article-indexer",
//		AppEnv:       "development",
//		EnableExport: true,
//		Endpoint:     "otel-collector:4318",
//		Insecure:     true,
//	}, log)
//	if err != nil {
//		return err
//	}
//	defer tracerClient.Shutdown(context.Background())
//
//	ctx, span := tracerClient.StartSpan(ctx, "index-article")
//	defer span.End()
//
//	tracerClient.SetAttributes(span, map[string]interface{}{
//		"article.id": id,
//	})
//
// Across Kafka:
//
//	// Producer side: headers carry "traceparent".
//	err = producer.Publish(ctx, key, article, tracerClient.GetCarrier(ctx))
//
//	// Consumer side: restore the context from the headers.
//	ctx := tracerClient.SetCarrierOnContext(ctx, headers)
//
// The logger package adds trace_id and span_id to *WithContext log entries
// when tracing is enabled in its Config.
package tracer
