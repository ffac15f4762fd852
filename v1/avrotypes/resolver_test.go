package avrotypes

import (
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordSchema(t *testing.T, fullName string) string {
	t.Helper()
	return `{"type":"record","name":"` + fullName + `","fields":[{"name":"Title","type":"string"}]}`
}

func TestResolverAliasCompleteness(t *testing.T) {
	c := NewCatalog("test")
	require.NoError(t, c.Register(plain{},
		Name("ns.Article"),
		Alias("Post"),
		Aliases(Alias("legacy.Entry"), Aliases(Alias("Story"))),
	))
	require.NoError(t, c.Register(methodNamed{}, Namespace("ns.news")))

	r := NewResolver(c, []string{"ns"})
	for _, name := range []string{"ns.Article", "ns.Post", "legacy.Entry", "ns.Story"} {
		schema, err := ParseSchema(recordSchema(t, name))
		require.NoError(t, err)

		typ, err := r.Lookup(schema)
		require.NoError(t, err, name)
		assert.Equal(t, reflect.TypeOf(plain{}), typ, name)
	}

	for _, name := range []string{"ns.news.Headline", "ns.news.Title", "archive.Heading"} {
		typ, err := r.LookupName(name)
		require.NoError(t, err, name)
		assert.Equal(t, reflect.TypeOf(methodNamed{}), typ, name)
	}

	_, err := r.LookupName("Post")
	assert.ErrorIs(t, err, ErrTypeNotFound)
	assert.Len(t, r.Names(), 7)
}

func TestResolverBlankNamespace(t *testing.T) {
	c := NewCatalog("test")
	require.NoError(t, c.Register(plain{}, Name("Article"), Alias("Post")))

	r := NewResolver(c, []string{reflect.TypeOf(plain{}).PkgPath()})
	for _, name := range []string{"Article", "Post"} {
		typ, err := r.LookupName(name)
		require.NoError(t, err, name)
		assert.Equal(t, reflect.TypeOf(plain{}), typ)
	}
	_, err := r.LookupName(".Post")
	assert.ErrorIs(t, err, ErrTypeNotFound)
}

func TestResolverPrefixesRestrictCandidates(t *testing.T) {
	c := NewCatalog("test")
	require.NoError(t, c.Register(plain{}, Name("ns.Article")))
	require.NoError(t, c.Register(author{}, Name("other.Author")))

	r := NewResolver(c, []string{"ns"})
	_, err := r.LookupName("other.Author")
	assert.ErrorIs(t, err, ErrTypeNotFound)
}

func TestResolverNotConfigured(t *testing.T) {
	c := NewCatalog("test")
	require.NoError(t, c.Register(plain{}, Name("ns.Article")))
	require.NoError(t, c.Register(invoice{}))

	r := NewResolver(c, nil)

	_, err := r.LookupName("ns.Article")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.True(t, IsNotConfigured(err))

	// Declared schemas still resolve.
	schema, err := ParseSchema(invoiceSchema)
	require.NoError(t, err)
	typ, err := r.Lookup(schema)
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeOf(invoice{}), typ)
}

func TestResolverEmptyPrefixesOnlyFastPath(t *testing.T) {
	c := NewCatalog("test")
	require.NoError(t, c.Register(plain{}, Name("ns.Article")))
	require.NoError(t, c.Register(invoice{}))

	r := NewResolver(c, []string{})

	_, err := r.LookupName("ns.Article")
	assert.ErrorIs(t, err, ErrTypeNotFound)
	assert.False(t, IsNotConfigured(err))

	schema, err := ParseSchema(invoiceSchema)
	require.NoError(t, err)
	typ, err := r.Lookup(schema)
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeOf(invoice{}), typ)
}

func TestResolverRejectsUnnamedSchemas(t *testing.T) {
	r := NewResolver(NewCatalog("test"), []string{"ns"})

	schema, err := ParseSchema(`{"type":"array","items":"string"}`)
	require.NoError(t, err)

	_, err = r.Lookup(schema)
	assert.True(t, IsTypeNotFound(err))

	_, err = r.Lookup(nil)
	assert.True(t, IsTypeNotFound(err))
}

func TestResolverCachePerCatalog(t *testing.T) {
	a := NewCatalog("a")
	b := NewCatalog("b")
	require.NoError(t, a.Register(plain{}, Name("ns.Article")))
	require.NoError(t, b.Register(author{}, Name("ns.Article")))

	cache := NewResolverCache([]string{"ns"})

	var wg sync.WaitGroup
	resolvers := make([]*Resolver, 8)
	for i := range resolvers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resolvers[i] = cache.For(a)
		}(i)
	}
	wg.Wait()
	for _, r := range resolvers {
		assert.Same(t, resolvers[0], r)
	}

	typA, err := cache.For(a).LookupName("ns.Article")
	require.NoError(t, err)
	typB, err := cache.For(b).LookupName("ns.Article")
	require.NoError(t, err)

	assert.Equal(t, reflect.TypeOf(plain{}), typA)
	assert.Equal(t, reflect.TypeOf(author{}), typB)
	assert.Equal(t, 2, cache.Len())
}

func TestResolverCacheNotConfigured(t *testing.T) {
	c := NewCatalog("test")
	require.NoError(t, c.Register(plain{}, Name("ns.Article")))

	_, err := NewResolverCache(nil).For(c).LookupName("ns.Article")
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewResolverCache([]string{}).For(c).LookupName("ns.Article")
	assert.ErrorIs(t, err, ErrTypeNotFound)
}
