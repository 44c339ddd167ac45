package anthropic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeshnaroju/agents-manager/model"
)

// Interface compliance (compile-time assertion)
var _ model.Model = (*Model)(nil)

func TestNewModel_MissingAPIKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	_, err := NewModel()
	require.Error(t, err)

	var confErr *model.ConfigurationError
	require.ErrorAs(t, err, &confErr)
	assert.Equal(t, "anthropic", confErr.Provider)
}

func TestBuildMessages_SystemAndToolResults(t *testing.T) {
	messages := []model.Message{
		model.SystemMessage("be concise"),
		model.UserMessage("2*3?"),
		{Role: model.RoleAssistant, ToolCalls: []model.ToolCall{{ID: "c1", Name: "multiply", Arguments: `{"a":2,"b":3}`}}},
		model.ToolMessage("c1", "6"),
	}

	// System messages are lifted out of the message stream.
	out := buildMessages(messages)
	assert.Len(t, out, 3)

	blocks := extractSystem(messages)
	require.Len(t, blocks, 1)
	assert.Equal(t, "be concise", blocks[0].Text)
}

func TestBuildTools_RequiredShapes(t *testing.T) {
	defs := []model.ToolDefinition{
		{
			Name:        "multiply",
			Description: "Multiply two numbers",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"a": map[string]any{"type": "number"},
				},
				"required": []any{"a"},
			},
		},
	}

	tools := buildTools(defs)
	require.Len(t, tools, 1)
}
