package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"intervaltimer/internal/core/model"

	"gopkg.in/yaml.v3"
)

// Format is a schema exchange encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatForPath picks the exchange format from a file extension. YAML is the
// default.
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// EncodeSchema serializes a single schema for export.
func EncodeSchema(schema model.Schema, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(schema, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode schema json: %w", err)
		}
		return append(data, '\n'), nil
	case FormatYAML, "":
		data, err := yaml.Marshal(schema)
		if err != nil {
			return nil, fmt.Errorf("encode schema yaml: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("encode schema: unknown format %q", format)
	}
}

// DecodeSchema parses an exported schema and fills missing identifiers.
// The result is validated.
func DecodeSchema(data []byte, format Format) (model.Schema, error) {
	var schema model.Schema
	switch format {
	case FormatJSON:
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&schema); err != nil {
			return model.Schema{}, fmt.Errorf("decode schema json: %w", err)
		}
	case FormatYAML, "":
		if err := yaml.Unmarshal(data, &schema); err != nil {
			return model.Schema{}, fmt.Errorf("decode schema yaml: %w", err)
		}
	default:
		return model.Schema{}, fmt.Errorf("decode schema: unknown format %q", format)
	}

	schema.EnsureIDs()
	if err := schema.Validate(); err != nil {
		return model.Schema{}, fmt.Errorf("decode schema: %w", err)
	}
	return schema, nil
}
