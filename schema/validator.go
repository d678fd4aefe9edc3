// Package schema validates dashboard configuration against the JSON Schema
// embedded at build time.
package schema

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:generate go run ../tools/schema-generator

//go:embed dashboard.embedded.schema.json
var embeddedSchemaData []byte

const resourceName = "dashboard.json"

// Violation is a single schema failure at a JSON pointer location.
type Violation struct {
	Path    string
	Message string
}

// ValidationError lists every violation found in one document.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	lines := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		lines = append(lines, fmt.Sprintf("- %s: %s", v.Path, v.Message))
	}
	return "schema validation failed:\n" + strings.Join(lines, "\n")
}

// Validator validates configuration against the embedded JSON Schema.
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator creates a new schema validator, loading the embedded schema.
func NewValidator() (*Validator, error) {
	return NewValidatorFromBytes(embeddedSchemaData)
}

// NewValidatorFromBytes compiles an arbitrary schema document.
func NewValidatorFromBytes(schemaData []byte) (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7
	if err := compiler.AddResource(resourceName, strings.NewReader(string(schemaData))); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}

	compiled, err := compiler.Compile(resourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	return &Validator{schema: compiled}, nil
}

// Validate checks any JSON-marshalable value against the schema.
func (v *Validator) Validate(data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal config to JSON for validation: %w", err)
	}

	var doc interface{}
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return fmt.Errorf("failed to unmarshal JSON for validation: %w", err)
	}

	if err := v.schema.Validate(doc); err != nil {
		verr, ok := err.(*jsonschema.ValidationError)
		if !ok {
			return fmt.Errorf("schema validation failed: %w", err)
		}
		out := &ValidationError{}
		collect(verr, &out.Violations)
		sort.SliceStable(out.Violations, func(i, j int) bool {
			return out.Violations[i].Path < out.Violations[j].Path
		})
		return out
	}

	return nil
}

// collect flattens the leaf causes of a validation error.
func collect(err *jsonschema.ValidationError, out *[]Violation) {
	if len(err.Causes) == 0 {
		path := err.InstanceLocation
		if path == "" {
			path = "/"
		}
		*out = append(*out, Violation{Path: path, Message: err.Message})
		return
	}
	for _, cause := range err.Causes {
		collect(cause, out)
	}
}
