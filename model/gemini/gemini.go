// Package gemini provides a model.Model implementation backed by Google's
// Gemini API via the official generative-ai-go SDK.
//
// Gemini does not assign identifiers to function calls, so the adapter mints
// its own call ids and maps tool results back to function names when replaying
// the conversation.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/sandeshnaroju/agents-manager/internal/util"
	"github.com/sandeshnaroju/agents-manager/model"
)

const providerName = "gemini"

// Options configure the Gemini adapter.
type Options struct {
	Model           string
	Temperature     float32
	TopP            float32
	MaxOutputTokens int32
	// APIKey overrides GOOGLE_API_KEY / GEMINI_API_KEY.
	APIKey string
}

// Model wraps a Gemini generative model behind the generic model.Model interface.
type Model struct {
	client *genai.Client
	opts   Options
}

// NewModel creates a Gemini adapter. The key is read from GOOGLE_API_KEY,
// falling back to GEMINI_API_KEY, unless supplied explicitly.
func NewModel(ctx context.Context, optFns ...func(o *Options)) (*Model, error) {
	opts := Options{
		Model:           "gemini-1.5-flash",
		Temperature:     0.7,
		TopP:            1.0,
		MaxOutputTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	key := opts.APIKey
	if key == "" {
		key = os.Getenv("GOOGLE_API_KEY")
	}
	if key == "" {
		key = os.Getenv("GEMINI_API_KEY")
	}
	if key == "" {
		return nil, model.NewConfigurationError(providerName, "missing API key: set GOOGLE_API_KEY, GEMINI_API_KEY, or Options.APIKey")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(key))
	if err != nil {
		return nil, model.NewConfigurationError(providerName, fmt.Sprintf("client init: %v", err))
	}

	return &Model{client: client, opts: opts}, nil
}

// Close releases the underlying gRPC connection.
func (m *Model) Close() error {
	return m.client.Close()
}

// Generate implements model.Model. Gemini responses are delivered as a single
// final response even when streaming is requested.
func (m *Model) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	out := make(chan model.Response, 1)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		gm := m.client.GenerativeModel(m.opts.Model)
		gm.SetTemperature(m.opts.Temperature)
		gm.SetTopP(m.opts.TopP)
		gm.SetMaxOutputTokens(m.opts.MaxOutputTokens)

		if sys := extractSystem(req.Messages); sys != "" {
			gm.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(sys)}}
		}
		if len(req.Tools) > 0 {
			gm.Tools = buildTools(req.Tools)
		}

		history, last, err := buildContents(req.Messages)
		if err != nil {
			errCh <- model.NewCallError(providerName, err)
			return
		}
		if last == nil {
			errCh <- model.NewCallError(providerName, errors.New("conversation has no sendable message"))
			return
		}

		cs := gm.StartChat()
		cs.History = history

		resp, err := cs.SendMessage(ctx, last.Parts...)
		if err != nil {
			errCh <- model.NewCallError(providerName, err)
			return
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			errCh <- model.NewCallError(providerName, errors.New("empty response"))
			return
		}

		out <- toResponse(resp)
	}()

	return out, errCh
}

func toResponse(resp *genai.GenerateContentResponse) model.Response {
	cand := resp.Candidates[0]

	msg := model.Message{Role: model.RoleAssistant}
	for _, part := range cand.Content.Parts {
		switch p := part.(type) {
		case genai.Text:
			msg.Content += string(p)
		case genai.FunctionCall:
			args, err := json.Marshal(p.Args)
			if err != nil {
				args = []byte("{}")
			}
			msg.ToolCalls = append(msg.ToolCalls, model.ToolCall{
				ID:        "call_" + util.NewID(),
				Name:      p.Name,
				Arguments: string(args),
			})
		}
	}

	mr := model.Response{
		Partial:      false,
		Message:      msg,
		FinishReason: cand.FinishReason.String(),
	}
	if resp.UsageMetadata != nil {
		mr.Usage = &model.TokenUsage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}
	return mr
}

// buildContents converts the flat conversation into Gemini chat history plus
// the trailing message to send. System messages are handled separately via
// SystemInstruction and skipped here.
func buildContents(messages []model.Message) (history []*genai.Content, last *genai.Content, err error) {
	// Gemini identifies function results by name, not call id.
	callNames := map[string]string{}
	for _, msg := range messages {
		for _, tc := range msg.ToolCalls {
			callNames[tc.ID] = tc.Name
		}
	}

	var contents []*genai.Content
	for _, msg := range messages {
		switch msg.Role {
		case model.RoleSystem:
			continue
		case model.RoleUser:
			contents = append(contents, &genai.Content{
				Role:  "user",
				Parts: []genai.Part{genai.Text(msg.Content)},
			})
		case model.RoleAssistant:
			var parts []genai.Part
			if msg.Content != "" {
				parts = append(parts, genai.Text(msg.Content))
			}
			for _, tc := range msg.ToolCalls {
				args := map[string]any{}
				if tc.Arguments != "" {
					if uerr := json.Unmarshal([]byte(tc.Arguments), &args); uerr != nil {
						return nil, nil, fmt.Errorf("invalid tool call arguments for %q: %w", tc.Name, uerr)
					}
				}
				parts = append(parts, genai.FunctionCall{Name: tc.Name, Args: args})
			}
			if len(parts) == 0 {
				continue
			}
			contents = append(contents, &genai.Content{Role: "model", Parts: parts})
		case model.RoleTool:
			name := callNames[msg.ToolCallID]
			if name == "" {
				return nil, nil, fmt.Errorf("tool result %q does not answer any known call", msg.ToolCallID)
			}
			response := map[string]any{}
			if uerr := json.Unmarshal([]byte(msg.Content), &response); uerr != nil {
				response = map[string]any{"result": msg.Content}
			}
			contents = append(contents, &genai.Content{
				Role:  "user",
				Parts: []genai.Part{genai.FunctionResponse{Name: name, Response: response}},
			})
		}
	}

	if len(contents) == 0 {
		return nil, nil, nil
	}
	return contents[:len(contents)-1], contents[len(contents)-1], nil
}

func extractSystem(messages []model.Message) string {
	var sys string
	for _, msg := range messages {
		if msg.Role == model.RoleSystem {
			if sys != "" {
				sys += "\n"
			}
			sys += msg.Content
		}
	}
	return sys
}

func buildTools(defs []model.ToolDefinition) []*genai.Tool {
	decls := make([]*genai.FunctionDeclaration, 0, len(defs))
	for _, def := range defs {
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        def.Name,
			Description: def.Description,
			Parameters:  toSchema(def.Parameters),
		})
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}
}

// toSchema converts a JSON-schema style parameter map into the SDK's typed
// schema. Unknown or missing types default to string.
func toSchema(params map[string]any) *genai.Schema {
	if params == nil {
		return &genai.Schema{Type: genai.TypeObject}
	}

	schema := &genai.Schema{Type: schemaType(params["type"])}
	if desc, ok := params["description"].(string); ok {
		schema.Description = desc
	}
	if props, ok := params["properties"].(map[string]any); ok {
		schema.Properties = map[string]*genai.Schema{}
		for name, prop := range props {
			propMap, ok := prop.(map[string]any)
			if !ok {
				continue
			}
			schema.Properties[name] = toSchema(propMap)
		}
	}
	if items, ok := params["items"].(map[string]any); ok {
		schema.Items = toSchema(items)
	}
	switch req := params["required"].(type) {
	case []string:
		schema.Required = req
	case []any:
		for _, r := range req {
			if s, ok := r.(string); ok {
				schema.Required = append(schema.Required, s)
			}
		}
	}
	switch enum := params["enum"].(type) {
	case []string:
		schema.Enum = enum
	case []any:
		for _, e := range enum {
			if s, ok := e.(string); ok {
				schema.Enum = append(schema.Enum, s)
			}
		}
	}
	return schema
}

func schemaType(v any) genai.Type {
	t, _ := v.(string)
	switch t {
	case "object":
		return genai.TypeObject
	case "array":
		return genai.TypeArray
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "string":
		return genai.TypeString
	default:
		return genai.TypeString
	}
}

// Info returns metadata describing this adapter instance.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:          m.opts.Model,
		Provider:      providerName,
		SupportsTools: true,
	}
}
