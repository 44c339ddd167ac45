// Package openaicompat provides a model.Model implementation for any endpoint
// speaking the OpenAI Chat Completions wire format. Grok, DeepSeek and local
// Llama servers (Ollama's /v1 surface) all expose this shape, so one adapter
// with per-provider presets covers all of them.
package openaicompat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/sandeshnaroju/agents-manager/model"
)

// Options configure the adapter. BaseURL selects the endpoint; an empty
// BaseURL targets api.openai.com.
type Options struct {
	BaseURL     string
	Model       string
	Temperature float32
	TopP        float32
	MaxTokens   int
	// ToolChoice forces the model to call the named tool ("" lets the model decide).
	ToolChoice string
	// APIKey overrides the provider's environment variable.
	APIKey string
}

// Model wraps an OpenAI-compatible Chat Completions endpoint behind the
// generic model.Model interface.
type Model struct {
	client   *goopenai.Client
	provider string
	opts     Options
}

// NewModel creates an adapter for an arbitrary OpenAI-compatible endpoint.
// It fails with *model.ConfigurationError if the API key or model id is missing.
func NewModel(provider string, optFns ...func(o *Options)) (*Model, error) {
	opts := Options{Temperature: 0.7, TopP: 1.0, MaxTokens: 4096}
	for _, fn := range optFns {
		fn(&opts)
	}
	return newModel(provider, "", opts)
}

// NewGrok creates an adapter for xAI's Grok API. The key is read from
// XAI_API_KEY unless supplied explicitly.
func NewGrok(optFns ...func(o *Options)) (*Model, error) {
	opts := Options{
		BaseURL:     "https://api.x.ai/v1",
		Model:       "grok-2-latest",
		Temperature: 0.7,
		TopP:        1.0,
		MaxTokens:   4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return newModel("grok", "XAI_API_KEY", opts)
}

// NewDeepSeek creates an adapter for the DeepSeek API. The key is read from
// DEEPSEEK_API_KEY unless supplied explicitly.
func NewDeepSeek(optFns ...func(o *Options)) (*Model, error) {
	opts := Options{
		BaseURL:     "https://api.deepseek.com",
		Model:       "deepseek-chat",
		Temperature: 0.7,
		TopP:        1.0,
		MaxTokens:   4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return newModel("deepseek", "DEEPSEEK_API_KEY", opts)
}

// NewLlama creates an adapter for a local Llama server exposing the OpenAI
// compatibility surface (e.g. Ollama at localhost:11434/v1). No API key is
// required; the model id must name a locally available model.
func NewLlama(llamaModel string, optFns ...func(o *Options)) (*Model, error) {
	opts := Options{
		BaseURL:     "http://localhost:11434/v1",
		Model:       llamaModel,
		Temperature: 0.7,
		TopP:        1.0,
		MaxTokens:   4096,
		APIKey:      "ollama", // compatibility servers ignore the key but the client requires one
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return newModel("llama", "", opts)
}

func newModel(provider, envKey string, opts Options) (*Model, error) {
	key := opts.APIKey
	if key == "" && envKey != "" {
		key = os.Getenv(envKey)
	}
	if key == "" {
		if envKey != "" {
			return nil, model.NewConfigurationError(provider, fmt.Sprintf("missing API key: set %s or Options.APIKey", envKey))
		}
		return nil, model.NewConfigurationError(provider, "missing API key")
	}
	if opts.Model == "" {
		return nil, model.NewConfigurationError(provider, "missing model identifier")
	}

	cfg := goopenai.DefaultConfig(key)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}

	return &Model{
		client:   goopenai.NewClientWithConfig(cfg),
		provider: provider,
		opts:     opts,
	}, nil
}

// Generate implements unified streaming / non-streaming generation against
// the compatible endpoint.
func (m *Model) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	out := make(chan model.Response, 32)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		ccr := m.buildRequest(req)
		if req.Stream {
			m.handleStreaming(ctx, ccr, out, errCh)
			return
		}

		resp, err := m.client.CreateChatCompletion(ctx, ccr)
		if err != nil {
			errCh <- model.NewCallError(m.provider, err)
			return
		}
		if len(resp.Choices) == 0 {
			errCh <- model.NewCallError(m.provider, errors.New("no choices returned"))
			return
		}

		ch0 := resp.Choices[0]
		msg := model.Message{Role: model.RoleAssistant, Content: ch0.Message.Content}
		for _, tc := range ch0.Message.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, model.ToolCall{
				ID:        tc.ID,
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			})
		}

		out <- model.Response{
			ID:           resp.ID,
			Partial:      false,
			Message:      msg,
			FinishReason: string(ch0.FinishReason),
			Usage: &model.TokenUsage{
				PromptTokens:     resp.Usage.PromptTokens,
				CompletionTokens: resp.Usage.CompletionTokens,
				TotalTokens:      resp.Usage.TotalTokens,
			},
		}
	}()

	return out, errCh
}

func (m *Model) buildRequest(req model.Request) goopenai.ChatCompletionRequest {
	ccr := goopenai.ChatCompletionRequest{
		Model:       m.opts.Model,
		Messages:    buildMessages(req.Messages),
		Temperature: m.opts.Temperature,
		TopP:        m.opts.TopP,
		MaxTokens:   m.opts.MaxTokens,
	}

	if len(req.Tools) > 0 {
		tools := make([]goopenai.Tool, len(req.Tools))
		for i, tdef := range req.Tools {
			tools[i] = goopenai.Tool{
				Type: goopenai.ToolTypeFunction,
				Function: &goopenai.FunctionDefinition{
					Name:        tdef.Name,
					Description: tdef.Description,
					Parameters:  tdef.Parameters,
				},
			}
		}
		ccr.Tools = tools
		if m.opts.ToolChoice != "" {
			ccr.ToolChoice = goopenai.ToolChoice{
				Type:     goopenai.ToolTypeFunction,
				Function: goopenai.ToolFunction{Name: m.opts.ToolChoice},
			}
		}
	}

	return ccr
}

func buildMessages(messages []model.Message) []goopenai.ChatCompletionMessage {
	out := make([]goopenai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		ccm := goopenai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
		for _, tc := range msg.ToolCalls {
			ccm.ToolCalls = append(ccm.ToolCalls, goopenai.ToolCall{
				ID:   tc.ID,
				Type: goopenai.ToolTypeFunction,
				Function: goopenai.FunctionCall{
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			})
		}
		if msg.Role == model.RoleTool {
			ccm.ToolCallID = msg.ToolCallID
		}
		out = append(out, ccm)
	}
	return out
}

// handleStreaming aggregates delta chunks into the final response while
// forwarding partial text.
func (m *Model) handleStreaming(
	ctx context.Context,
	ccr goopenai.ChatCompletionRequest,
	out chan<- model.Response,
	errCh chan<- error,
) {
	ccr.Stream = true
	stream, err := m.client.CreateChatCompletionStream(ctx, ccr)
	if err != nil {
		errCh <- model.NewCallError(m.provider, err)
		return
	}
	defer stream.Close()

	type aggCall struct{ id, name, args string }
	toolAgg := map[int]*aggCall{}
	var order []int
	var text string
	finishReason := "stop"

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			errCh <- model.NewCallError(m.provider, err)
			return
		}
		for _, ch := range resp.Choices {
			if ch.Delta.Content != "" {
				text += ch.Delta.Content
				out <- model.Response{
					Partial: true,
					Message: model.AssistantMessage(ch.Delta.Content),
				}
			}
			for _, tc := range ch.Delta.ToolCalls {
				idx := 0
				if tc.Index != nil {
					idx = *tc.Index
				}
				ac, ok := toolAgg[idx]
				if !ok {
					ac = &aggCall{}
					toolAgg[idx] = ac
					order = append(order, idx)
				}
				if tc.ID != "" {
					ac.id = tc.ID
				}
				if tc.Function.Name != "" {
					ac.name = tc.Function.Name
				}
				if tc.Function.Arguments != "" {
					ac.args += tc.Function.Arguments
				}
			}
			if ch.FinishReason != "" {
				finishReason = string(ch.FinishReason)
			}
		}
	}

	msg := model.Message{Role: model.RoleAssistant, Content: text}
	for _, idx := range order {
		ac := toolAgg[idx]
		msg.ToolCalls = append(msg.ToolCalls, model.ToolCall{
			ID:        ac.id,
			Name:      ac.name,
			Arguments: ac.args,
		})
	}

	out <- model.Response{
		Partial:      false,
		Message:      msg,
		FinishReason: finishReason,
	}
}

// Info returns metadata describing this adapter instance.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:          m.opts.Model,
		Provider:      m.provider,
		SupportsTools: true,
	}
}
