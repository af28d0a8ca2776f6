package util

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// ReadYaml deserializes a YAML file into `v`.
func ReadYaml(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read '%s': %w", path, err)
	}
	if err := yaml.UnmarshalStrict(data, v); err != nil {
		return fmt.Errorf("failed to parse '%s': %w", path, err)
	}
	return nil
}

// WriteYaml serializes `v` into a YAML file.
func WriteYaml(path string, v interface{}) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to serialize '%s': %w", path, err)
	}
	if err := os.WriteFile(path, data, FileMode); err != nil {
		return fmt.Errorf("failed to write '%s': %w", path, err)
	}
	return nil
}
