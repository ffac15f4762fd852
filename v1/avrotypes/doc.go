// Package avrotypes maps Go types to named Avro schemas and back.
//
// A Catalog is an isolated space of registered types, comparable to a class
// loader: two catalogs may hold different Go types under the same Avro full
// name. Types register explicitly, usually from init functions:
//
//	func init() {
//	    avrotypes.MustRegister(Article{},
//	        avrotypes.Namespace("ns"),
//	        avrotypes.Aliases(avrotypes.Alias("Post"), avrotypes.Alias("legacy.Entry")),
//	    )
//	}
//
// Naming metadata comes from registration options (Name, Namespace, Alias,
// Aliases), from methods on the type (AvroName, AvroNamespace, AvroAliases)
// and from a declared schema (AvroSchema). Without an explicit name a type is
// named after its Go package and type name, e.g. "events.Article".
//
// A Resolver answers which Go type represents a writer schema. Types that
// declared their exact schema are matched by fingerprint; all others are
// matched by canonical name or alias among the catalog entries under the
// configured namespace prefixes (Go package path or Avro namespace).
//
// Name collisions inside one catalog are rejected at registration with
// ErrConflictingRegistration.
//
// SchemaFor derives writer schemas for Go values, generating record schemas
// by reflection when a type does not declare one.
package avrotypes
