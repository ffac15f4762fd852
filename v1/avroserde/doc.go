// Package avroserde serializes Go values to the Confluent wire format and
// back, resolving schema ids through a schema registry.
//
// Wire format:
//
//	[0x00][schema id, int32 big-endian][Avro binary payload]
//
// A []byte value is written verbatim as the payload and a writer schema of
// type bytes yields the payload verbatim on read.
//
// Basic Usage:
//
//	ser := avroserde.NewSerializer()
//	if err := ser.Configure(map[string]any{
//	    "schema.registry.url":   "http://localhost:8081",
//	    "auto.register.schemas": true,
//	}, false); err != nil {
//	    return err
//	}
//	data, err := ser.Serialize("articles", Article{Title: "A", Content: "B"})
//
//	de := avroserde.NewDeserializer()
//	if err := de.Configure(map[string]any{
//	    "schema.registry.url": "http://localhost:8081",
//	    "record.packages":     "ns",
//	}, false); err != nil {
//	    return err
//	}
//	value, err := de.Deserialize("articles", data) // value.(Article)
//
// Writer schemas come from avrotypes: registered types, types declaring
// AvroSchema(), or schemas generated by reflection. On read, record schemas
// are mapped back to Go types through the catalog in the context
// (avrotypes.WithCatalog) and then the deserializer's own catalog, matching
// canonical names and aliases of types under record.packages.
//
// Registry policy:
//
// With auto.register.schemas the serializer registers its schema and never
// looks it up; without it, it looks the schema up and never registers it.
// Ids and schemas are cached for the lifetime of the instance.
//
// Lifecycle:
//
// Serializer and Deserializer start unconfigured; Configure may be called
// once. Calls before Configure fail with ErrConfiguration naming
// schema.registry.url, calls after Close fail with ErrClosed.
//
// Errors:
//
// Every failure is a *SerializationError carrying the topic, subject and
// schema id when known. Classify it with errors.Is and the Err* kinds or
// the IsXxx helpers:
//
//	if avroserde.IsLookupError(err) {
//	    var restErr *schema_registry.RestError
//	    if errors.As(err, &restErr) && restErr.ErrorCode == schema_registry.ErrorCodeSchemaNotFound {
//	        // schema was never registered
//	    }
//	}
//
// Thread Safety:
//
// A configured Serializer or Deserializer is safe for concurrent use.
package avroserde
