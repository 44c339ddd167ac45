package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateParameters(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"x": map[string]any{"type": "integer"},
		},
		// Use []any to mirror possible JSON decoded schema shape
		"required": []any{"x"},
	}

	// Success
	err := ValidateParameters(map[string]any{"x": 5}, schema)
	assert.NoError(t, err)

	// JSON numbers arrive as float64; integral values pass
	err = ValidateParameters(map[string]any{"x": float64(5)}, schema)
	assert.NoError(t, err)

	// Missing required
	err = ValidateParameters(map[string]any{}, schema)
	require.Error(t, err)
	if vErr, ok := err.(*ValidationError); ok {
		assert.Equal(t, "x", vErr.Field)
	} else {
		t.Fatalf("expected ValidationError, got %T", err)
	}

	// Wrong type
	err = ValidateParameters(map[string]any{"x": "not-int"}, schema)
	require.Error(t, err)
	if vErr, ok := err.(*ValidationError); ok {
		assert.Contains(t, vErr.Message, "expected type integer")
	} else {
		t.Fatalf("expected ValidationError, got %T", err)
	}

	// Extra fields are allowed
	err = ValidateParameters(map[string]any{"x": 1, "y": "extra"}, schema)
	assert.NoError(t, err)
}

func TestValidateParameters_RequiredAsStringSlice(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name": map[string]any{"type": "string"},
		},
		"required": []string{"name"},
	}

	assert.NoError(t, ValidateParameters(map[string]any{"name": "a"}, schema))
	assert.Error(t, ValidateParameters(map[string]any{}, schema))
}

type sampleArgs struct {
	City  string `json:"city" jsonschema:"description=City name"`
	Days  int    `json:"days,omitempty"`
	Loud  bool   `json:"loud,omitempty"`
	Score float64
}

func TestSchemaFor(t *testing.T) {
	schema, err := SchemaFor(sampleArgs{})
	require.NoError(t, err)

	assert.Equal(t, "object", schema["type"])
	assert.NotContains(t, schema, "$schema")

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "city")
	assert.Contains(t, props, "days")
	assert.Contains(t, props, "loud")
	assert.Contains(t, props, "Score")

	city, ok := props["city"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "string", city["type"])
	assert.Equal(t, "City name", city["description"])

	// Only non-omitempty fields are required
	var required []string
	for _, r := range schema["required"].([]any) {
		required = append(required, r.(string))
	}
	assert.ElementsMatch(t, []string{"city", "Score"}, required)
}
