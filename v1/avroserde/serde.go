package avroserde

import "errors"

// Serde pairs a Serializer and a Deserializer that share options and
// configuration.
type Serde struct {
	Serializer   *Serializer
	Deserializer *Deserializer
}

// NewSerde creates an unconfigured serde.
func NewSerde(opts ...Option) *Serde {
	return &Serde{
		Serializer:   NewSerializer(opts...),
		Deserializer: NewDeserializer(opts...),
	}
}

// Configure applies props to both halves.
func (s *Serde) Configure(props map[string]any, isKey bool) error {
	cfg, err := ParseConfig(props)
	if err != nil {
		return err
	}
	return s.ConfigureWith(cfg, isKey)
}

// ConfigureWith applies cfg to both halves.
func (s *Serde) ConfigureWith(cfg Config, isKey bool) error {
	if err := s.Serializer.ConfigureWith(cfg, isKey); err != nil {
		return err
	}
	return s.Deserializer.ConfigureWith(cfg, isKey)
}

// Close closes both halves.
func (s *Serde) Close() error {
	return errors.Join(s.Serializer.Close(), s.Deserializer.Close())
}
