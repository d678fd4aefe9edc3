package config

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// GenerateSchema generates the JSON Schema for the dashboard configuration.
// Extensions are excluded; each extension ships its own schema.
func GenerateSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		ExpandedStruct:            true,
		FieldNameTag:              "yaml",
	}

	schema := r.Reflect(&Config{})
	schema.Title = "Dashboard Configuration"
	schema.Description = "Schema for dashboard.yml."
	schema.Version = "http://json-schema.org/draft-07/schema#"
	schema.Required = nil

	return json.MarshalIndent(schema, "", "  ")
}
