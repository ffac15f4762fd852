package avroserde

import (
	"fmt"
	"strings"

	"github.com/hamba/avro/v2"
)

// SubjectNameStrategy derives the registry subject for a record written to
// topic.
type SubjectNameStrategy func(topic string, isKey bool, schema avro.Schema) (string, error)

// TopicNameStrategy names subjects "<topic>-key" or "<topic>-value".
func TopicNameStrategy(topic string, isKey bool, _ avro.Schema) (string, error) {
	if isKey {
		return topic + "-key", nil
	}
	return topic + "-value", nil
}

// RecordNameStrategy names subjects after the full name of the record.
func RecordNameStrategy(_ string, _ bool, schema avro.Schema) (string, error) {
	named, ok := schema.(avro.NamedSchema)
	if !ok {
		return "", fmt.Errorf("%w: RecordNameStrategy needs a named schema, got %s", ErrConfiguration, schema.Type())
	}
	return named.FullName(), nil
}

// TopicRecordNameStrategy names subjects "<topic>-<record full name>".
func TopicRecordNameStrategy(topic string, isKey bool, schema avro.Schema) (string, error) {
	name, err := RecordNameStrategy(topic, isKey, schema)
	if err != nil {
		return "", err
	}
	return topic + "-" + name, nil
}

// subjectNameStrategy maps a configured strategy name to its function. Fully
// qualified class names as used by other clients are accepted.
func subjectNameStrategy(name string) (SubjectNameStrategy, error) {
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	switch name {
	case "", "TopicNameStrategy":
		return TopicNameStrategy, nil
	case "RecordNameStrategy":
		return RecordNameStrategy, nil
	case "TopicRecordNameStrategy":
		return TopicRecordNameStrategy, nil
	}
	return nil, fmt.Errorf("%w: unknown subject name strategy %q", ErrConfiguration, name)
}
