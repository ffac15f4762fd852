package avrotypes

import "sync"

// ResolverCache holds one Resolver per Catalog, all sharing the same
// namespace prefixes. Concurrent first lookups of the same catalog may create
// two resolvers; only the first one stored is ever used.
type ResolverCache struct {
	prefixes  []string
	resolvers sync.Map // map[*Catalog]*Resolver
}

// NewResolverCache creates an empty cache. prefixes follows the NewResolver
// convention: nil means not configured.
func NewResolverCache(prefixes []string) *ResolverCache {
	var p []string
	if prefixes != nil {
		p = append([]string{}, prefixes...)
	}
	return &ResolverCache{prefixes: p}
}

// For returns the resolver for catalog, creating it on first use.
func (c *ResolverCache) For(catalog *Catalog) *Resolver {
	if catalog == nil {
		catalog = DefaultCatalog
	}
	if r, ok := c.resolvers.Load(catalog); ok {
		return r.(*Resolver)
	}
	r, _ := c.resolvers.LoadOrStore(catalog, NewResolver(catalog, c.prefixes))
	return r.(*Resolver)
}

// Len returns the number of catalogs seen so far.
func (c *ResolverCache) Len() int {
	n := 0
	c.resolvers.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
