package config

import (
	"bytes"
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
)

// TOMLParser lets koanf read and write TOML through BurntSushi/toml.
type TOMLParser struct{}

// TOML returns a koanf parser for TOML documents.
func TOML() *TOMLParser {
	return &TOMLParser{}
}

func (p *TOMLParser) Unmarshal(b []byte) (map[string]any, error) {
	var out map[string]any
	if _, err := toml.NewDecoder(bytes.NewReader(b)).Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *TOMLParser) Marshal(m map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeTOML(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}
