// Package yamlstore provides generic YAML file and embedded-asset I/O,
// consolidating the decode/encode boilerplate used by several optional
// config surfaces (the default ignore list, a user ignore-pattern
// override file).
package yamlstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Store provides generic YAML file I/O for type T.
type Store[T any] struct {
	rootDir      string
	filename     string
	allowMissing bool // If true, missing file returns zero value instead of error
}

// New creates a new YAML store for type T.
func New[T any](rootDir, filename string, allowMissing bool) *Store[T] {
	return &Store[T]{rootDir: rootDir, filename: filename, allowMissing: allowMissing}
}

// Path returns the full file path.
func (s *Store[T]) Path() string {
	return filepath.Join(s.rootDir, s.filename)
}

// Load reads and unmarshals the YAML file into type T.
func (s *Store[T]) Load() (T, error) {
	var result T

	data, err := os.ReadFile(s.Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && s.allowMissing {
			return result, nil
		}
		return result, err
	}
	if err := yaml.Unmarshal(data, &result); err != nil {
		return result, fmt.Errorf("invalid %s: %w", s.filename, err)
	}
	return result, nil
}

// Save marshals and writes type T to the YAML file.
func (s *Store[T]) Save(data T) error {
	bytes, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", s.filename, err)
	}
	if err := os.WriteFile(s.Path(), bytes, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.filename, err)
	}
	return nil
}

// DecodeBytes unmarshals an in-memory (e.g. go:embed'd) YAML document into
// type T, for assets that aren't read from a caller-writable directory.
func DecodeBytes[T any](data []byte) (T, error) {
	var result T
	if err := yaml.Unmarshal(data, &result); err != nil {
		return result, fmt.Errorf("invalid embedded yaml: %w", err)
	}
	return result, nil
}
