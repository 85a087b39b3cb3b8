package export

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nibzard/vine-go/internal/utils"
)

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "https://github.com/nibzard/vine-go/schema/graph.json"

// ErrSchema is the sentinel wrapped by every *SchemaError.
var ErrSchema = errors.New("schema validation failed")

// Violation is one failed schema assertion. Path is a dotted instance path
// such as "tasks[0].status"; it is empty for the document itself.
type Violation struct {
	Path    string
	Message string
}

// SchemaError lists every violation found in a document.
type SchemaError struct {
	Violations []Violation
}

func (e *SchemaError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		if v.Path == "" {
			parts = append(parts, v.Message)
			continue
		}
		parts = append(parts, v.Path+": "+v.Message)
	}
	return fmt.Sprintf("%s: %s", ErrSchema, strings.Join(parts, "; "))
}

func (e *SchemaError) Unwrap() error { return ErrSchema }

// Schema returns the raw JSON Schema for export documents.
func Schema() []byte {
	return append([]byte(nil), schemaJSON...)
}

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
})

// validateValue checks a decoded JSON value (maps, slices, float64, string,
// bool, nil) against the export schema.
func validateValue(v any) error {
	schema, err := compiledSchema()
	if err != nil {
		return err
	}
	if err := schema.Validate(v); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			return err
		}
		result := &SchemaError{}
		collectViolations(result, ve)
		return result
	}
	return nil
}

// collectViolations walks the cause tree and keeps the leaves.
func collectViolations(result *SchemaError, err *jsonschema.ValidationError) {
	if err == nil {
		return
	}
	if len(err.Causes) == 0 {
		result.Violations = append(result.Violations, Violation{
			Path:    utils.JSONPointerToPath(err.InstanceLocation),
			Message: err.Message,
		})
		return
	}
	for _, cause := range err.Causes {
		collectViolations(result, cause)
	}
}
