package show

import (
	"encoding/json"
	"fmt"
	"os"
)

// MarshalDocument serializes a show to pretty-printed JSON. Unset fixture
// value fields are omitted entirely so they round-trip as absent, not zero.
func MarshalDocument(s *Show) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serialize show: %w", err)
	}
	return data, nil
}

// UnmarshalDocument parses a show document and fills in defaults for any
// absent sections (palettes, groups, cue lists, the "main" list).
func UnmarshalDocument(data []byte) (*Show, error) {
	var s Show
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse show json: %w", err)
	}
	s.EnsureDefaults()
	return &s, nil
}

// SaveFile writes the show document to path.
func SaveFile(s *Show, path string) error {
	data, err := MarshalDocument(s)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write show file: %w", err)
	}
	return nil
}

// LoadFile reads a show document from path.
func LoadFile(path string) (*Show, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read show file: %w", err)
	}
	return UnmarshalDocument(data)
}
