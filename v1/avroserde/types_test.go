package avroserde

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Aleph-Alpha/kafka-avro-serde/v1/avrotypes"
)

type Article struct {
	Title   string `avro:"title"`
	Content string `avro:"content"`
}

type legacyArticle struct {
	Title   string `avro:"title"`
	Content string `avro:"content"`
}

type pluginArticle struct {
	Title   string `avro:"title"`
	Content string `avro:"content"`
}

type Comment struct {
	Author *string           `avro:"author"`
	Text   string            `avro:"text"`
	Votes  []int64           `avro:"votes"`
	Labels map[string]string `avro:"labels"`
	Status Status            `avro:"status"`
}

type Status string

func (Status) AvroSymbols() []string { return []string{"DRAFT", "PUBLISHED"} }

type Receipt struct {
	ID string `avro:"id"`
}

func (Receipt) AvroSchema() string {
	return `{"type":"record","name":"Receipt","namespace":"billing","fields":[{"name":"id","type":"string"}]}`
}

// newTestCatalog returns a catalog with the types shared by the serde tests.
func newTestCatalog(t *testing.T) *avrotypes.Catalog {
	t.Helper()
	c := avrotypes.NewCatalog(t.Name())
	require.NoError(t, c.Register(Article{}, avrotypes.Name("ns.Article"), avrotypes.Alias("legacy.Entry")))
	require.NoError(t, c.Register(Comment{}, avrotypes.Namespace("ns.comments")))
	require.NoError(t, c.Register(Status(""), avrotypes.Name("ns.Status")))
	require.NoError(t, c.Register(Receipt{}))
	return c
}
