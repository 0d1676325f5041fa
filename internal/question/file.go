package question

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Decode parses a bank in the given format ("json" or "yaml") into untyped records.
// JSON numbers are kept as json.Number so that 1 and 1.0 stay distinguishable.
func Decode(r io.Reader, format string) (any, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read question bank: %w", err)
	}
	if len(bytes.TrimSpace(content)) == 0 {
		return nil, fmt.Errorf("%w: the bank is empty", ErrNoData)
	}

	var raw any
	switch format {
	case "json":
		decoder := json.NewDecoder(bytes.NewReader(content))
		decoder.UseNumber()
		if err := decoder.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: invalid JSON: %v", ErrNoData, err)
		}
	case "yaml":
		if err := yaml.Unmarshal(content, &raw); err != nil {
			return nil, fmt.Errorf("%w: invalid YAML: %v", ErrNoData, err)
		}
	default:
		return nil, fmt.Errorf("unsupported question bank format %q", format)
	}
	return raw, nil
}

// FormatOf returns the bank format implied by the file extension. Unknown
// extensions are read as JSON.
func FormatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return "yaml"
	default:
		return "json"
	}
}

// ReadFile decodes the bank at path without normalizing it.
func ReadFile(path string) (any, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s does not exist", ErrNoData, path)
		}
		return nil, fmt.Errorf("open question bank %s: %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	raw, err := Decode(file, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return raw, nil
}

// LoadFile reads and normalizes the bank at path.
func LoadFile(path string) ([]Question, []Warning, error) {
	raw, err := ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	questions, warnings, err := Normalize(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", path, err)
	}
	return questions, warnings, nil
}
