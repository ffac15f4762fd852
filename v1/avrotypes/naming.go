package avrotypes

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/hamba/avro/v2"
)

// Namer is implemented by types that choose their own Avro name. A dotted
// name carries its namespace.
type Namer interface {
	AvroName() string
}

// Namespacer is implemented by types that choose their own Avro namespace.
type Namespacer interface {
	AvroNamespace() string
}

// Aliaser is implemented by types that answer to additional Avro names.
type Aliaser interface {
	AvroAliases() []string
}

// SchemaDeclarer is implemented by types that carry their exact Avro schema,
// usually generated code. The schema's name, namespace and aliases count as
// naming metadata and the schema is used verbatim for encoding.
type SchemaDeclarer interface {
	AvroSchema() string
}

// Enum is implemented by named string types that map to an Avro enum.
type Enum interface {
	AvroSymbols() []string
}

// NameSet is the canonical Avro name of a type plus every alias it answers to.
type NameSet struct {
	Name      string
	Namespace string

	// Aliases are full names, ordered and without duplicates. The canonical
	// full name is never repeated here.
	Aliases []string
}

// FullName returns namespace.name, or the bare name for an empty namespace.
func (n NameSet) FullName() string {
	return qualify(n.Namespace, n.Name)
}

// All returns the canonical full name followed by the aliases.
func (n NameSet) All() []string {
	return append([]string{n.FullName()}, n.Aliases...)
}

func (n NameSet) equal(o NameSet) bool {
	if n.FullName() != o.FullName() || len(n.Aliases) != len(o.Aliases) {
		return false
	}
	for i := range n.Aliases {
		if n.Aliases[i] != o.Aliases[i] {
			return false
		}
	}
	return true
}

// Option is a naming annotation attached to a type at registration.
type Option func(*annotations)

type annotations struct {
	name      string
	namespace string
	aliases   []string
}

// Name overrides the type's Avro name. A dotted name also sets the namespace.
func Name(name string) Option {
	return func(a *annotations) { a.name = name }
}

// Namespace overrides the type's Avro namespace.
func Namespace(namespace string) Option {
	return func(a *annotations) { a.namespace = namespace }
}

// Alias adds alias names. Undotted aliases are qualified with the canonical
// namespace.
func Alias(aliases ...string) Option {
	return func(a *annotations) { a.aliases = append(a.aliases, aliases...) }
}

// Aliases groups several alias declarations into one annotation:
//
//	avrotypes.Aliases(avrotypes.Alias("Post"), avrotypes.Alias("legacy.Entry"))
func Aliases(group ...Option) Option {
	return func(a *annotations) {
		for _, opt := range group {
			if opt != nil {
				opt(a)
			}
		}
	}
}

// ExtractNames derives the canonical Avro name and aliases of t from its
// registration options, its naming methods and its declared schema, in that
// order of precedence. Aliases from all sources are merged.
//
// Without an explicit name the Go type name is used, with the Go package name
// as namespace unless one is declared.
func ExtractNames(t reflect.Type, opts ...Option) (NameSet, error) {
	if t == nil {
		return NameSet{}, ErrNilType
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	var ann annotations
	for _, opt := range opts {
		if opt != nil {
			opt(&ann)
		}
	}

	name, namespace := ann.name, ann.namespace
	aliases := append([]string(nil), ann.aliases...)

	v := reflect.New(t).Interface()
	if n, ok := v.(Namer); ok && name == "" {
		name = n.AvroName()
	}
	if n, ok := v.(Namespacer); ok && namespace == "" {
		namespace = n.AvroNamespace()
	}
	if a, ok := v.(Aliaser); ok {
		aliases = append(aliases, a.AvroAliases()...)
	}

	if d, ok := v.(SchemaDeclarer); ok {
		schema, err := parseSchema(d.AvroSchema())
		if err != nil {
			return NameSet{}, fmt.Errorf("invalid AvroSchema of %s: %w", t, err)
		}
		if named, ok := schema.(avro.NamedSchema); ok {
			if name == "" {
				name = named.FullName()
			}
			aliases = append(aliases, named.Aliases()...)
		}
	}

	return buildNameSet(t, name, namespace, aliases), nil
}

func buildNameSet(t reflect.Type, name, namespace string, aliases []string) NameSet {
	var ns NameSet
	switch {
	case strings.Contains(name, "."):
		i := strings.LastIndex(name, ".")
		ns.Namespace, ns.Name = name[:i], name[i+1:]
	case name != "":
		ns.Namespace, ns.Name = namespace, name
	default:
		ns.Name = t.Name()
		ns.Namespace = namespace
		if ns.Namespace == "" {
			ns.Namespace = packageName(t)
		}
	}

	canonical := ns.FullName()
	seen := map[string]bool{canonical: true}
	for _, alias := range aliases {
		alias = strings.TrimSpace(alias)
		if alias == "" {
			continue
		}
		if !strings.Contains(alias, ".") {
			alias = qualify(ns.Namespace, alias)
		}
		if seen[alias] {
			continue
		}
		seen[alias] = true
		ns.Aliases = append(ns.Aliases, alias)
	}
	return ns
}

// packageName returns the package qualifier printed by %T, e.g. "events" for
// events.Article.
func packageName(t reflect.Type) string {
	s := t.String()
	if i := strings.Index(s, "."); i > 0 {
		return s[:i]
	}
	return ""
}

func qualify(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return namespace + "." + name
}
