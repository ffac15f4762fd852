package avrotypes

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/hamba/avro/v2"
)

// Entry is a type registered in a Catalog.
type Entry struct {
	Type  reflect.Type
	Names NameSet

	// Schema is the type's writer schema, declared or generated.
	Schema avro.Schema

	// declared marks a schema that came from AvroSchema().
	declared bool
}

// Catalog is an isolated space of Go types that can represent named Avro
// schemas. Two catalogs may each hold a different type for the same full
// name, e.g. one per plugin.
//
// Types are registered explicitly, usually from init functions. A Catalog is
// safe for concurrent use.
type Catalog struct {
	name string

	mu       sync.RWMutex
	entries  []*Entry
	byType   map[reflect.Type]*Entry
	byName   map[string]*Entry
	bySchema map[[32]byte]reflect.Type

	// schemas caches SchemaFor results for unregistered types.
	schemas sync.Map // map[reflect.Type]avro.Schema
}

// DefaultCatalog is the process-wide catalog used by the package-level helpers.
var DefaultCatalog = NewCatalog("default")

// NewCatalog creates an empty catalog. The name is only used in diagnostics.
func NewCatalog(name string) *Catalog {
	return &Catalog{
		name:     name,
		byType:   make(map[reflect.Type]*Entry),
		byName:   make(map[string]*Entry),
		bySchema: make(map[[32]byte]reflect.Type),
	}
}

// Name returns the catalog name.
func (c *Catalog) Name() string { return c.name }

func (c *Catalog) String() string { return "catalog(" + c.name + ")" }

// Register adds the type of v, which may be a value, a pointer or a
// reflect.Type, under the names derived by ExtractNames.
//
// Registering the same type with the same names again is a no-op. A type
// that claims a name or alias already held by another type is rejected with
// ErrConflictingRegistration.
func (c *Catalog) Register(v any, opts ...Option) error {
	t, err := typeOf(v)
	if err != nil {
		return err
	}
	if !namedKind(t) {
		return fmt.Errorf("%w: %s cannot be a named schema", ErrUnsupportedType, t)
	}

	names, err := ExtractNames(t, opts...)
	if err != nil {
		return err
	}

	schema, declared, err := c.buildSchema(t, names)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.byType[t]; ok {
		if existing.Names.equal(names) {
			return nil
		}
		return fmt.Errorf("%w: %s is already registered as %s", ErrConflictingRegistration, t, existing.Names.FullName())
	}
	for _, n := range names.All() {
		if other, ok := c.byName[n]; ok {
			return fmt.Errorf("%w: %s and %s both claim %q", ErrConflictingRegistration, other.Type, t, n)
		}
	}

	entry := &Entry{Type: t, Names: names, Schema: schema, declared: declared}
	c.entries = append(c.entries, entry)
	c.byType[t] = entry
	for _, n := range names.All() {
		c.byName[n] = entry
	}
	if declared {
		c.bySchema[schema.Fingerprint()] = t
	}
	return nil
}

// buildSchema resolves the writer schema of a type about to be registered
// under names.
func (c *Catalog) buildSchema(t reflect.Type, names NameSet) (avro.Schema, bool, error) {
	if d, ok := reflect.New(t).Interface().(SchemaDeclarer); ok {
		schema, err := parseSchema(d.AvroSchema())
		if err != nil {
			return nil, false, fmt.Errorf("invalid AvroSchema of %s: %w", t, err)
		}
		return schema, true, nil
	}

	schema, err := generateSchema(c, t, map[reflect.Type]NameSet{t: names})
	if err != nil {
		return nil, false, err
	}
	return schema, false, nil
}

// MustRegister is like Register but panics on error.
func (c *Catalog) MustRegister(v any, opts ...Option) {
	if err := c.Register(v, opts...); err != nil {
		panic(err)
	}
}

// Entries returns the registered entries in registration order.
func (c *Catalog) Entries() []*Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Candidates returns the entries whose Go package path or Avro namespace
// falls under one of prefixes. A prefix matches itself and anything below it
// separated by "." or "/".
func (c *Catalog) Candidates(prefixes []string) []*Entry {
	var out []*Entry
	for _, e := range c.Entries() {
		for _, p := range prefixes {
			if underPrefix(e.Type.PkgPath(), p) || underPrefix(e.Names.Namespace, p) {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// TypeForSchema returns the type that declared exactly schema through
// AvroSchema(), compared by canonical form.
func (c *Catalog) TypeForSchema(schema avro.Schema) (reflect.Type, bool) {
	if schema == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.bySchema[schema.Fingerprint()]
	return t, ok
}

// TypeForName returns the type registered under a full name or alias,
// regardless of namespace prefixes.
func (c *Catalog) TypeForName(fullName string) (reflect.Type, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.byName[fullName]
	if !ok {
		return nil, false
	}
	return e.Type, true
}

func (c *Catalog) entryFor(t reflect.Type) (*Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.byType[t]
	return e, ok
}

// SchemaFor returns the writer schema for a Go value: a primitive schema,
// the schema of a registered type, a declared AvroSchema() or one generated
// by reflection. Pointers are dereferenced.
func (c *Catalog) SchemaFor(v any) (avro.Schema, error) {
	if s, ok := PrimitiveSchema(v); ok {
		return s, nil
	}

	t, err := typeOf(v)
	if err != nil {
		return nil, err
	}
	if e, ok := c.entryFor(t); ok {
		return e.Schema, nil
	}
	if s, ok := c.schemas.Load(t); ok {
		return s.(avro.Schema), nil
	}

	var schema avro.Schema
	if d, ok := reflect.New(t).Interface().(SchemaDeclarer); ok {
		schema, err = parseSchema(d.AvroSchema())
		if err != nil {
			return nil, fmt.Errorf("invalid AvroSchema of %s: %w", t, err)
		}
	} else {
		schema, err = generateSchema(c, t, nil)
		if err != nil {
			return nil, err
		}
	}

	actual, _ := c.schemas.LoadOrStore(t, schema)
	return actual.(avro.Schema), nil
}

// Register adds a type to DefaultCatalog.
func Register(v any, opts ...Option) error {
	return DefaultCatalog.Register(v, opts...)
}

// MustRegister adds a type to DefaultCatalog and panics on error.
func MustRegister(v any, opts ...Option) {
	DefaultCatalog.MustRegister(v, opts...)
}

// SchemaFor returns the writer schema for v using DefaultCatalog.
func SchemaFor(v any) (avro.Schema, error) {
	return DefaultCatalog.SchemaFor(v)
}

type catalogKey struct{}

// WithCatalog returns a context whose active loading context is c.
func WithCatalog(ctx context.Context, c *Catalog) context.Context {
	return context.WithValue(ctx, catalogKey{}, c)
}

// CatalogFromContext returns the catalog set by WithCatalog.
func CatalogFromContext(ctx context.Context) (*Catalog, bool) {
	if ctx == nil {
		return nil, false
	}
	c, ok := ctx.Value(catalogKey{}).(*Catalog)
	return c, ok && c != nil
}

func typeOf(v any) (reflect.Type, error) {
	var t reflect.Type
	switch x := v.(type) {
	case nil:
		return nil, ErrNilType
	case reflect.Type:
		t = x
	default:
		t = reflect.TypeOf(v)
	}
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return nil, ErrNilType
	}
	return t, nil
}

// namedKind reports whether t maps to a named Avro schema: a struct or a
// string enum.
func namedKind(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Struct:
		return t != timeType
	case reflect.String:
		_, ok := reflect.New(t).Interface().(Enum)
		return ok
	}
	return false
}

func underPrefix(s, prefix string) bool {
	prefix = strings.TrimRight(prefix, "./")
	if prefix == "" || !strings.HasPrefix(s, prefix) {
		return false
	}
	if len(s) == len(prefix) {
		return true
	}
	next := s[len(prefix)]
	return next == '.' || next == '/'
}
