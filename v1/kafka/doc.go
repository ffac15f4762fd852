// Package kafka provides a producer and consumer for Apache Kafka that plug
// in a value serializer, typically the Avro serde from package avroserde.
//
// Core Features:
//   - Producer and consumer built on segmentio/kafka-go
//   - TLS and SASL (PLAIN, SCRAM-SHA-256, SCRAM-SHA-512) connections
//   - Pluggable Serializer/Deserializer; raw []byte/string by default
//   - Parallel decoding with ConsumeParallel
//   - Consumer group support with explicit or batched commits
//   - Integration with the logger package for structured logging
//   - Observer hooks for metrics
//
// Basic Usage:
//
//	serde := avroserde.NewSerde(avroserde.WithCatalog(catalog))
//	if err := serde.Configure(map[string]any{
//		"schema.registry.url":   "http://localhost:8081",
//		"auto.register.schemas": true,
//		"record.packages":       "com.example.events",
//	}, false); err != nil {
//		return err
//	}
//
//	producer, err := kafka.NewClient(kafka.Config{
//		Brokers: []string{"localhost:9092"},
//		Topic:   "articles",
//	})
//	if err != nil {
//		return err
//	}
//	producer.SetSerializer(serde.Serializer)
//	defer producer.GracefulShutdown()
//
//	err = producer.Publish(ctx, "article-1", Article{Title: "Hello"})
//
// Consuming:
//
//	consumer, err := kafka.NewClient(kafka.Config{
//		Brokers:    []string{"localhost:9092"},
//		Topic:      "articles",
//		GroupID:    "article-indexer",
//		IsConsumer: true,
//	})
//	consumer.SetDeserializer(serde.Deserializer)
//
//	wg := &sync.WaitGroup{}
//	for msg := range consumer.Consume(ctx, wg) {
//		if err := msg.DecodeErr(); err != nil {
//			log.Error("Failed to decode message", err, nil)
//			continue
//		}
//		article := msg.Value().(Article)
//		// Process the article
//		if err := msg.CommitMsg(); err != nil {
//			log.Error("Failed to commit message", err, nil)
//		}
//	}
//
// FX Module Integration:
//
//	app := fx.New(
//		avroserde.FXModule, // Optional: Avro values
//		kafka.FXModule,
//		fx.Provide(func() kafka.Config { return kafka.Config{...} }),
//	)
//
// Thread Safety:
//
// All methods on KafkaClient are safe for concurrent use. GracefulShutdown
// may be called more than once.
package kafka
