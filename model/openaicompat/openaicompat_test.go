package openaicompat

import (
	"testing"

	goopenai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeshnaroju/agents-manager/model"
)

var _ model.Model = (*Model)(nil)

func TestNewGrok(t *testing.T) {
	t.Run("MissingAPIKey", func(t *testing.T) {
		t.Setenv("XAI_API_KEY", "")
		_, err := NewGrok()
		var cfgErr *model.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "grok", cfgErr.Provider)
	})

	t.Run("ExplicitKey", func(t *testing.T) {
		t.Setenv("XAI_API_KEY", "")
		m, err := NewGrok(func(o *Options) {
			o.APIKey = "test-key"
		})
		require.NoError(t, err)
		info := m.Info()
		assert.Equal(t, "grok", info.Provider)
		assert.Equal(t, "grok-2-latest", info.Name)
		assert.True(t, info.SupportsTools)
	})
}

func TestNewDeepSeek(t *testing.T) {
	t.Setenv("DEEPSEEK_API_KEY", "sk-test")
	m, err := NewDeepSeek(func(o *Options) {
		o.Model = "deepseek-reasoner"
	})
	require.NoError(t, err)
	assert.Equal(t, "deepseek-reasoner", m.Info().Name)
}

func TestNewLlama(t *testing.T) {
	t.Run("DefaultsToLocalEndpoint", func(t *testing.T) {
		m, err := NewLlama("llama3.2")
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:11434/v1", m.opts.BaseURL)
		assert.Equal(t, "llama", m.Info().Provider)
	})

	t.Run("MissingModel", func(t *testing.T) {
		_, err := NewLlama("")
		var cfgErr *model.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
	})
}

func TestBuildRequest(t *testing.T) {
	m, err := NewModel("custom", func(o *Options) {
		o.APIKey = "test-key"
		o.Model = "test-model"
		o.BaseURL = "https://example.com/v1"
		o.ToolChoice = "get_weather"
	})
	require.NoError(t, err)

	req := model.Request{
		Messages: []model.Message{
			model.SystemMessage("You are helpful."),
			model.UserMessage("Weather in Paris?"),
			{
				Role: model.RoleAssistant,
				ToolCalls: []model.ToolCall{
					{ID: "call_1", Name: "get_weather", Arguments: `{"city":"Paris"}`},
				},
			},
			model.ToolMessage("call_1", `{"temp":21}`),
		},
		Tools: []model.ToolDefinition{
			{
				Name:        "get_weather",
				Description: "Current weather for a city.",
				Parameters: map[string]any{
					"type":       "object",
					"properties": map[string]any{"city": map[string]any{"type": "string"}},
					"required":   []string{"city"},
				},
			},
		},
	}

	ccr := m.buildRequest(req)

	require.Len(t, ccr.Messages, 4)
	assert.Equal(t, "system", ccr.Messages[0].Role)
	assert.Equal(t, "call_1", ccr.Messages[2].ToolCalls[0].ID)
	assert.Equal(t, "get_weather", ccr.Messages[2].ToolCalls[0].Function.Name)
	assert.Equal(t, "call_1", ccr.Messages[3].ToolCallID)

	require.Len(t, ccr.Tools, 1)
	assert.Equal(t, goopenai.ToolTypeFunction, ccr.Tools[0].Type)
	assert.Equal(t, "get_weather", ccr.Tools[0].Function.Name)

	tc, ok := ccr.ToolChoice.(goopenai.ToolChoice)
	require.True(t, ok)
	assert.Equal(t, "get_weather", tc.Function.Name)
}
