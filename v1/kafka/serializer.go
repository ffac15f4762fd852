package kafka

import (
	"context"
	"fmt"
)

// RawSerializer writes []byte and string values unchanged. It is the
// default when no Serializer is set.
type RawSerializer struct{}

// SerializeContext implements Serializer.
func (RawSerializer) SerializeContext(_ context.Context, _ string, value any) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedValue, value)
}

// RawDeserializer returns record values as []byte. It is the default when
// no Deserializer is set.
type RawDeserializer struct{}

// DeserializeContext implements Deserializer.
func (RawDeserializer) DeserializeContext(_ context.Context, _ string, data []byte) (any, error) {
	if data == nil {
		return nil, nil
	}
	return data, nil
}
