package avrotypes

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/hamba/avro/v2"
)

var (
	timeType  = reflect.TypeOf(time.Time{})
	bytesType = reflect.TypeOf([]byte(nil))
)

// ParseSchema parses an Avro schema in isolation. Named types defined by one
// schema are not visible to the next, so unrelated schemas may reuse names.
func ParseSchema(schema string) (avro.Schema, error) {
	return parseSchema(schema)
}

func parseSchema(schema string) (avro.Schema, error) {
	return avro.ParseWithCache(schema, "", &avro.SchemaCache{})
}

// PrimitiveSchema returns the Avro schema for a primitive Go value, or false
// if v is not a primitive.
func PrimitiveSchema(v any) (avro.Schema, bool) {
	var t avro.Type
	switch v.(type) {
	case nil:
		t = avro.Null
	case bool:
		t = avro.Boolean
	case int8, int16, int32:
		t = avro.Int
	case int, int64:
		t = avro.Long
	case float32:
		t = avro.Float
	case float64:
		t = avro.Double
	case string:
		t = avro.String
	case []byte:
		t = avro.Bytes
	default:
		return nil, false
	}
	return avro.NewPrimitiveSchema(t, nil), true
}

// generator builds Avro schemas for Go types by reflection.
//
// Mapping:
//   - struct: record, fields named by the "avro" tag or the Go field name
//   - pointer: ["null", T] union
//   - slice: array, except []byte which is bytes
//   - map[string]T: map
//   - time.Time: long with logicalType timestamp-millis
//   - named string implementing Enum: enum
type generator struct {
	catalog *Catalog

	// pending holds names of types being registered, not yet in catalog.
	pending map[reflect.Type]NameSet
	defined map[string]bool
}

func (g *generator) schemaOf(t reflect.Type) (any, error) {
	if t == timeType {
		return map[string]any{"type": "long", "logicalType": "timestamp-millis"}, nil
	}
	if t == bytesType {
		return "bytes", nil
	}

	if t.Kind() == reflect.String && t.Name() != "" && t.PkgPath() != "" {
		if e, ok := reflect.New(t).Interface().(Enum); ok {
			return g.enumSchema(t, e.AvroSymbols())
		}
	}

	switch t.Kind() {
	case reflect.Bool:
		return "boolean", nil
	case reflect.Int8, reflect.Int16, reflect.Int32:
		return "int", nil
	case reflect.Int, reflect.Int64:
		return "long", nil
	case reflect.Float32:
		return "float", nil
	case reflect.Float64:
		return "double", nil
	case reflect.String:
		return "string", nil
	case reflect.Pointer:
		inner, err := g.schemaOf(t.Elem())
		if err != nil {
			return nil, err
		}
		return []any{"null", inner}, nil
	case reflect.Slice:
		items, err := g.schemaOf(t.Elem())
		if err != nil {
			return nil, err
		}
		return map[string]any{"type": "array", "items": items}, nil
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return nil, fmt.Errorf("%w: map key of %s must be a string", ErrUnsupportedType, t)
		}
		values, err := g.schemaOf(t.Elem())
		if err != nil {
			return nil, err
		}
		return map[string]any{"type": "map", "values": values}, nil
	case reflect.Struct:
		return g.recordSchema(t)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
}

func (g *generator) names(t reflect.Type) (NameSet, error) {
	if names, ok := g.pending[t]; ok {
		return names, nil
	}
	if g.catalog != nil {
		if e, ok := g.catalog.entryFor(t); ok {
			return e.Names, nil
		}
	}
	return ExtractNames(t)
}

// named returns the schema header for t, or the bare full name when t was
// already defined earlier in the same schema.
func (g *generator) named(t reflect.Type, kind string) (map[string]any, string, error) {
	names, err := g.names(t)
	if err != nil {
		return nil, "", err
	}
	full := names.FullName()
	if g.defined[full] {
		return nil, full, nil
	}
	g.defined[full] = true

	header := map[string]any{"type": kind, "name": names.Name}
	if names.Namespace != "" {
		header["namespace"] = names.Namespace
	}
	if len(names.Aliases) > 0 {
		header["aliases"] = names.Aliases
	}
	return header, full, nil
}

func (g *generator) enumSchema(t reflect.Type, symbols []string) (any, error) {
	header, full, err := g.named(t, "enum")
	if err != nil {
		return nil, err
	}
	if header == nil {
		return full, nil
	}
	header["symbols"] = symbols
	return header, nil
}

func (g *generator) recordSchema(t reflect.Type) (any, error) {
	if t.Name() == "" {
		return nil, fmt.Errorf("%w: anonymous struct %s", ErrUnsupportedType, t)
	}

	// A nested type that carries its own schema is inlined as declared.
	if d, ok := reflect.New(t).Interface().(SchemaDeclarer); ok {
		var declared any
		if err := json.Unmarshal([]byte(d.AvroSchema()), &declared); err != nil {
			return nil, fmt.Errorf("invalid AvroSchema of %s: %w", t, err)
		}
		return declared, nil
	}

	header, full, err := g.named(t, "record")
	if err != nil {
		return nil, err
	}
	if header == nil {
		return full, nil
	}

	fields := make([]any, 0, t.NumField())
	seen := make(map[string]bool, t.NumField())
	for _, f := range promotedFields(t) {
		name := fieldName(f)
		if seen[name] {
			return nil, fmt.Errorf("%w: field name %q appears twice in %s", ErrUnsupportedType, name, t)
		}
		seen[name] = true

		fieldSchema, err := g.schemaOf(f.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s of %s: %w", f.Name, t, err)
		}
		field := map[string]any{"name": name, "type": fieldSchema}
		if f.Type.Kind() == reflect.Pointer {
			field["default"] = nil
		}
		fields = append(fields, field)
	}
	header["fields"] = fields
	return header, nil
}

// promotedFields lists the exported fields of t that the codec reads and
// writes. Fields of embedded structs are promoted into t breadth first, the
// same order the codec resolves them in. Embedded non-struct types are
// skipped.
func promotedFields(t reflect.Type) []reflect.StructField {
	var out []reflect.StructField
	visited := make(map[reflect.Type]bool)
	next := []reflect.Type{t}
	for len(next) > 0 {
		curr := next
		next = nil
		for _, st := range curr {
			if visited[st] {
				continue
			}
			visited[st] = true

			for i := 0; i < st.NumField(); i++ {
				f := st.Field(i)
				if f.Anonymous {
					et := f.Type
					if et.Kind() == reflect.Pointer {
						et = et.Elem()
					}
					if et.Kind() == reflect.Struct {
						next = append(next, et)
					}
					continue
				}
				if !f.IsExported() || fieldName(f) == "-" {
					continue
				}
				out = append(out, f)
			}
		}
	}
	return out
}

func fieldName(f reflect.StructField) string {
	if tag, ok := f.Tag.Lookup("avro"); ok {
		if name, _, _ := strings.Cut(tag, ","); name != "" {
			return name
		}
	}
	return f.Name
}

// generateSchema builds and parses the schema for t.
func generateSchema(c *Catalog, t reflect.Type, pending map[reflect.Type]NameSet) (avro.Schema, error) {
	g := &generator{catalog: c, pending: pending, defined: make(map[string]bool)}
	raw, err := g.schemaOf(t)
	if err != nil {
		return nil, err
	}

	doc, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema of %s: %w", t, err)
	}
	schema, err := parseSchema(string(doc))
	if err != nil {
		return nil, fmt.Errorf("generated schema of %s is invalid: %w", t, err)
	}
	return schema, nil
}
