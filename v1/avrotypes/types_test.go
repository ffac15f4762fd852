package avrotypes

import "time"

type plain struct {
	Title string
}

type methodNamed struct {
	Title string `avro:"title"`
}

func (methodNamed) AvroName() string      { return "Headline" }
func (methodNamed) AvroNamespace() string { return "news" }
func (methodNamed) AvroAliases() []string { return []string{"Title", "archive.Heading", "Title"} }

type invoice struct {
	ID     string `avro:"id"`
	Amount int64  `avro:"amount"`
}

const invoiceSchema = `{"type":"record","name":"Invoice","namespace":"billing","aliases":["Bill"],"fields":[{"name":"id","type":"string"},{"name":"amount","type":"long"}]}`

func (invoice) AvroSchema() string { return invoiceSchema }

type color string

func (color) AvroSymbols() []string { return []string{"RED", "GREEN"} }

type author struct {
	Name string `avro:"name"`
}

type post struct {
	Title     string            `avro:"title"`
	Subtitle  *string           `avro:"subtitle"`
	Tags      []string          `avro:"tags"`
	Counters  map[string]int32  `avro:"counters"`
	Published time.Time         `avro:"published"`
	Color     color             `avro:"color"`
	Author    author            `avro:"author"`
	Editor    *author           `avro:"editor"`
	Ignored   string            `avro:"-"`
	internal  string
	Extra     map[string]string `avro:"extra"`
}

type audit struct {
	CreatedBy string `avro:"created_by"`
}

type revision struct {
	Rev int64 `avro:"rev"`
}

type auditedPost struct {
	audit
	*revision
	Title string `avro:"title"`
}

type shadowedPost struct {
	audit
	CreatedBy string `avro:"created_by"`
}
