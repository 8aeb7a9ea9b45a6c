// Package document decodes uploaded network configuration files.
package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for files that are neither JSON nor YAML.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Type is the declared format of a document.
type Type string

const (
	JSON Type = "JSON"
	YAML Type = "YAML"
)

// Document is a decoded configuration file.
type Document struct {
	Filename string      `json:"filename"`
	FileType Type        `json:"file_type"`
	Data     interface{} `json:"data"`
}

// TypeOf returns the document type implied by the file extension.
func TypeOf(filename string) (Type, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return JSON, nil
	case ".yaml", ".yml":
		return YAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Base(filename))
	}
}

// Load reads and decodes the file at path.
func Load(path string) (*Document, error) {
	if _, err := TypeOf(path); err != nil {
		return nil, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Decode(filepath.Base(path), content)
}

// Decode parses content according to the extension of filename.
func Decode(filename string, content []byte) (*Document, error) {
	kind, err := TypeOf(filename)
	if err != nil {
		return nil, err
	}

	var data interface{}
	switch kind {
	case JSON:
		dec := json.NewDecoder(bytes.NewReader(content))
		if err := dec.Decode(&data); err != nil {
			return nil, fmt.Errorf("failed to decode JSON %s: %w", filename, err)
		}
		if dec.More() {
			return nil, fmt.Errorf("failed to decode JSON %s: trailing data", filename)
		}
	case YAML:
		if err := yaml.Unmarshal(content, &data); err != nil {
			return nil, fmt.Errorf("failed to decode YAML %s: %w", filename, err)
		}
		data = normalize(data)
	}

	return &Document{Filename: filename, FileType: kind, Data: data}, nil
}

// Processed returns the indented JSON wrapper that is sent to the oracle and
// offered as the processed copy of the input.
func (d *Document) Processed() ([]byte, error) {
	out, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode processed document: %w", err)
	}
	return out, nil
}

// ProcessedName is the file name of the processed copy.
func (d *Document) ProcessedName() string {
	return "processed_" + d.Filename
}

// normalize converts YAML maps with non-string keys so the value can be
// re-encoded as JSON.
func normalize(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, val := range t {
			t[k] = normalize(val)
		}
		return t
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case []interface{}:
		for i, val := range t {
			t[i] = normalize(val)
		}
		return t
	default:
		return v
	}
}
