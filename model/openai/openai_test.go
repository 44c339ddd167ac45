package openai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeshnaroju/agents-manager/model"
)

// Interface compliance (compile-time assertion)
var _ model.Model = (*Model)(nil)

func TestNewModel_MissingAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := NewModel()
	require.Error(t, err)

	var confErr *model.ConfigurationError
	require.ErrorAs(t, err, &confErr)
	assert.Equal(t, "openai", confErr.Provider)
}

func TestNewModel_ExplicitKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	m, err := NewModel(func(o *Options) {
		o.APIKey = "sk-test"
		o.Model = "gpt-4o"
	})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", m.Info().Name)
	assert.True(t, m.Info().SupportsTools)
}

func TestBuildMessages(t *testing.T) {
	msgs := buildMessages([]model.Message{
		model.SystemMessage("be concise"),
		model.UserMessage("2*3?"),
		{Role: model.RoleAssistant, ToolCalls: []model.ToolCall{{ID: "c1", Name: "multiply", Arguments: `{"a":2,"b":3}`}}},
		model.ToolMessage("c1", "6"),
		model.AssistantMessage("6"),
	})
	require.Len(t, msgs, 5)
	require.NotNil(t, msgs[2].OfAssistant)
	require.Len(t, msgs[2].OfAssistant.ToolCalls, 1)
	assert.Equal(t, "c1", msgs[2].OfAssistant.ToolCalls[0].ID)
	require.NotNil(t, msgs[3].OfTool)
}
