package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nibzard/vine-go/internal/utils"
	"github.com/nibzard/vine-go/internal/vine"
)

// Supported formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// FormatForPath picks a format from a file extension (.json, .yaml, .yml).
func FormatForPath(path string) (string, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	format, ok := utils.NormalizeFormat(ext)
	if !ok {
		return "", fmt.Errorf("cannot infer format from %q (want .json, .yaml or .yml)", path)
	}
	return format, nil
}

// Encode writes g in the given format. The document is validated against
// the schema before it is returned.
func Encode(g *vine.Graph, format string) ([]byte, error) {
	normalized, ok := utils.NormalizeFormat(format)
	if !ok {
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	doc, err := FromGraph(g)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal json: %w", err)
	}
	if err := validateJSON(data); err != nil {
		return nil, err
	}

	if normalized == FormatJSON {
		return append(data, '\n'), nil
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode reads a document in the given format, validates it against the
// schema and converts it to a validated graph.
func Decode(data []byte, format string) (*vine.Graph, error) {
	normalized, ok := utils.NormalizeFormat(format)
	if !ok {
		return nil, fmt.Errorf("unsupported format %q", format)
	}

	jsonData := data
	if normalized == FormatYAML {
		var raw any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
		converted, err := json.Marshal(jsonCompatible(raw))
		if err != nil {
			return nil, fmt.Errorf("convert yaml: %w", err)
		}
		jsonData = converted
	}

	if err := validateJSON(jsonData); err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return doc.Graph()
}

func validateJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("parse json: %w", err)
	}
	return validateValue(v)
}

// jsonCompatible rewrites YAML-decoded values so encoding/json accepts them.
// yaml.v3 yields map[string]any for string-keyed mappings but
// map[any]any when a key is not a string.
func jsonCompatible(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = jsonCompatible(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[fmt.Sprint(k)] = jsonCompatible(val)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = jsonCompatible(val)
		}
		return out
	default:
		return v
	}
}
