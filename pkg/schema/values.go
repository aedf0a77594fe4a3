package schema

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ParseValues decodes a values document: a mapping from field names to
// values, nested the same way as the definition. An empty document yields
// an empty map.
func ParseValues(data []byte) (map[string]any, error) {
	var values map[string]any
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&values); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("failed to parse values: %w", err)
	}
	if values == nil {
		values = map[string]any{}
	}
	return values, nil
}

// LoadValues reads and parses the values document at path.
func LoadValues(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read values: %w", err)
	}
	values, err := ParseValues(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return values, nil
}
