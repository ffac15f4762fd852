package schema_registry

import (
	"encoding/binary"
	"fmt"
)

const (
	// MagicByte is the first byte of every wire format message.
	MagicByte byte = 0x0

	// HeaderSize is the length of the magic byte plus the schema id.
	HeaderSize = 5
)

// EncodeSchemaID encodes a schema ID in the Confluent wire format
// Format: [magic_byte][schema_id]
// - magic_byte: 0x0 (1 byte)
// - schema_id: 4 bytes (big-endian)
func EncodeSchemaID(schemaID int) []byte {
	return AppendSchemaID(make([]byte, 0, HeaderSize), schemaID)
}

// AppendSchemaID appends the wire format header for schemaID to dst.
func AppendSchemaID(dst []byte, schemaID int) []byte {
	dst = append(dst, MagicByte)
	return binary.BigEndian.AppendUint32(dst, uint32(schemaID))
}

// DecodeSchemaID decodes a schema ID from the Confluent wire format.
// Returns the schema ID and the remaining payload (after the 5-byte header).
// The payload aliases data.
func DecodeSchemaID(data []byte) (int, []byte, error) {
	if len(data) < HeaderSize {
		return 0, nil, fmt.Errorf("%w: expected at least %d bytes, got %d", ErrDataTooShort, HeaderSize, len(data))
	}

	if data[0] != MagicByte {
		return 0, nil, fmt.Errorf("%w: expected 0x0, got 0x%x", ErrInvalidMagicByte, data[0])
	}

	schemaID := int(int32(binary.BigEndian.Uint32(data[1:HeaderSize])))
	return schemaID, data[HeaderSize:], nil
}
