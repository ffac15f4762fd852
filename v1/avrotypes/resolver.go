package avrotypes

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/hamba/avro/v2"
)

// Resolver maps named Avro schemas to Go types registered in one Catalog.
//
// Resolution order:
//  1. the type that declared exactly this schema (Catalog.TypeForSchema)
//  2. the index of canonical names and aliases of the catalog's candidates
//     under the configured namespace prefixes
//
// The index is built on first use and never changes afterwards; types
// registered later are not seen by an existing Resolver.
type Resolver struct {
	catalog  *Catalog
	prefixes []string

	// configured is false when prefixes were never given, as opposed to
	// given and empty.
	configured bool

	once  sync.Once
	index map[string]reflect.Type
}

// NewResolver creates a resolver over catalog. A nil prefixes slice means
// name-based resolution was never configured and fails with ErrNotConfigured;
// an empty slice restricts resolution to the exact-schema fast path.
func NewResolver(catalog *Catalog, prefixes []string) *Resolver {
	if catalog == nil {
		catalog = DefaultCatalog
	}
	return &Resolver{
		catalog:    catalog,
		prefixes:   append([]string(nil), prefixes...),
		configured: prefixes != nil,
	}
}

// Catalog returns the catalog the resolver reads from.
func (r *Resolver) Catalog() *Catalog { return r.catalog }

// Lookup returns the Go type for a named schema.
func (r *Resolver) Lookup(schema avro.Schema) (reflect.Type, error) {
	if schema == nil {
		return nil, fmt.Errorf("%w: nil schema", ErrTypeNotFound)
	}
	if t, ok := r.catalog.TypeForSchema(schema); ok {
		return t, nil
	}

	named, ok := schema.(avro.NamedSchema)
	if !ok {
		return nil, fmt.Errorf("%w: %s schema is not named", ErrTypeNotFound, schema.Type())
	}
	return r.LookupName(named.FullName())
}

// LookupName returns the Go type registered under fullName or one of its
// aliases.
func (r *Resolver) LookupName(fullName string) (reflect.Type, error) {
	if !r.configured {
		return nil, fmt.Errorf("%w: cannot resolve %q", ErrNotConfigured, fullName)
	}

	r.once.Do(r.build)
	if t, ok := r.index[fullName]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("%w: %q in %s", ErrTypeNotFound, fullName, r.catalog)
}

// Names returns every name in the index. Intended for diagnostics.
func (r *Resolver) Names() []string {
	if !r.configured {
		return nil
	}
	r.once.Do(r.build)
	names := make([]string, 0, len(r.index))
	for n := range r.index {
		names = append(names, n)
	}
	return names
}

func (r *Resolver) build() {
	index := make(map[string]reflect.Type)
	for _, e := range r.catalog.Candidates(r.prefixes) {
		for _, n := range e.Names.All() {
			index[n] = e.Type
		}
	}
	r.index = index
}
