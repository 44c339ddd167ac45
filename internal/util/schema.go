package util

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// SchemaFor derives a JSON schema parameter map from a Go struct using
// reflection. Property names follow `json` tags; descriptions can be supplied
// via `jsonschema:"description=..."` tags. Fields without omitempty are
// marked required.
func SchemaFor(v any) (map[string]any, error) {
	r := &jsonschema.Reflector{
		Anonymous:                 true,
		DoNotReference:            true,
		AllowAdditionalProperties: false,
	}

	s := r.Reflect(v)
	s.Version = "" // providers reject meta keywords inside tool schemas

	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	var schema map[string]any
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}

	delete(schema, "$schema")
	delete(schema, "$id")

	return schema, nil
}
