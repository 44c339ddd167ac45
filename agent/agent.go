package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sandeshnaroju/agents-manager/logging"
	"github.com/sandeshnaroju/agents-manager/model"
	"github.com/sandeshnaroju/agents-manager/tool"
)

// DefaultMaxRounds bounds the resolution loop. Each round is one model call
// plus the execution of any tool calls it requested.
const DefaultMaxRounds = 25

// Options configure an Agent instance.
type Options struct {
	// Tools the model may call. The set is fixed for the agent's lifetime.
	Tools []tool.Tool
	// MaxRounds caps the number of model rounds per Run (default DefaultMaxRounds).
	MaxRounds int
	// Logger receives structured loop events (defaults to NoOpLogger).
	Logger logging.Logger
	// StreamHandler, if set, receives partial assistant text as it arrives
	// and switches provider calls into streaming mode.
	StreamHandler func(delta string)
}

// Agent owns an instruction, a model adapter instance and a tool set. All
// fields are read-only after construction, so a single Agent is safe for
// concurrent Run calls; every call builds independent conversation state.
type Agent struct {
	name        string
	instruction string
	model       model.Model
	tools       map[string]tool.Tool
	toolOrder   []string // registration order, kept stable for providers
	maxRounds   int
	logger      logging.Logger
	streamFn    func(string)
}

// New creates an Agent with the given name, system instruction and model
// adapter. The same adapter instance may be shared across agents.
func New(name, instruction string, m model.Model, optFns ...func(o *Options)) *Agent {
	opts := Options{
		MaxRounds: DefaultMaxRounds,
		Logger:    logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.MaxRounds <= 0 {
		opts.MaxRounds = DefaultMaxRounds
	}

	a := &Agent{
		name:        name,
		instruction: instruction,
		model:       m,
		tools:       make(map[string]tool.Tool, len(opts.Tools)),
		maxRounds:   opts.MaxRounds,
		logger:      opts.Logger,
		streamFn:    opts.StreamHandler,
	}

	for _, t := range opts.Tools {
		if _, exists := a.tools[t.Name()]; !exists {
			a.toolOrder = append(a.toolOrder, t.Name())
		}
		a.tools[t.Name()] = t
	}

	return a
}

// Name returns the agent's name (unique within a Manager).
func (a *Agent) Name() string { return a.name }

// Instruction returns the agent's system instruction.
func (a *Agent) Instruction() string { return a.instruction }

// Model returns the agent's provider adapter.
func (a *Agent) Model() model.Model { return a.model }

// Tools returns the agent's tools in registration order.
func (a *Agent) Tools() []tool.Tool {
	out := make([]tool.Tool, 0, len(a.toolOrder))
	for _, name := range a.toolOrder {
		out = append(out, a.tools[name])
	}
	return out
}

// Run executes the resolution loop for a single user message and returns the
// final assistant text. It fails with *ResolutionError wrapping the first
// unrecoverable provider error, or ErrRoundLimit if the loop cap is hit.
func (a *Agent) Run(ctx context.Context, userMessage string) (string, error) {
	return a.RunStream(ctx, userMessage, a.streamFn)
}

// RunStream behaves like Run but forwards partial assistant text to fn as it
// arrives. A nil fn falls back to the agent's configured stream handler.
func (a *Agent) RunStream(ctx context.Context, userMessage string, fn func(delta string)) (string, error) {
	if fn == nil {
		fn = a.streamFn
	}
	conv := []model.Message{
		model.SystemMessage(a.instruction),
		model.UserMessage(userMessage),
	}
	return a.resolve(ctx, conv, fn)
}

// runFrom re-enters the loop after a handoff: the agent starts from its own
// instruction plus the conversation accumulated so far, prior system messages
// stripped.
func (a *Agent) runFrom(ctx context.Context, history []model.Message, fn func(string)) (string, error) {
	conv := make([]model.Message, 0, len(history)+1)
	conv = append(conv, model.SystemMessage(a.instruction))
	for _, msg := range history {
		if msg.Role == model.RoleSystem {
			continue
		}
		conv = append(conv, msg)
	}
	if fn == nil {
		fn = a.streamFn
	}
	return a.resolve(ctx, conv, fn)
}

// resolve is the resolution loop: model call, tool execution, fold, repeat.
// The only success exits are a final answer from the model or a handoff.
func (a *Agent) resolve(ctx context.Context, conv []model.Message, streamFn func(string)) (string, error) {
	for round := 1; round <= a.maxRounds; round++ {
		a.logger.Debug("agent.model.call", "agent", a.name, "round", round, "messages", len(conv))

		final, err := a.generate(ctx, conv, streamFn)
		if err != nil {
			return "", &ResolutionError{Agent: a.name, Round: round, Err: err}
		}

		calls := final.Message.ToolCalls
		if len(calls) == 0 {
			conv = append(conv, model.AssistantMessage(final.Message.Content))
			a.logger.Info("agent.final", "agent", a.name, "round", round)
			return final.Message.Content, nil
		}

		// Record the requested calls, preserving order and ids.
		conv = append(conv, final.Message)

		for _, call := range calls {
			result, callErr := a.invoke(ctx, call)

			if target := handoffTarget(result); callErr == nil && target != nil {
				conv = append(conv, model.ToolMessage(call.ID, fmt.Sprintf("transferring to %s", target.name)))
				a.logger.Info("agent.handoff", "from", a.name, "to", target.name, "call_id", call.ID)
				return target.runFrom(ctx, conv, streamFn)
			}

			conv = append(conv, foldResult(call, result, callErr))
		}
	}

	return "", &ResolutionError{Agent: a.name, Round: a.maxRounds, Err: ErrRoundLimit}
}

// generate performs one provider call, forwarding partial text and returning
// the single final response.
func (a *Agent) generate(ctx context.Context, conv []model.Message, streamFn func(string)) (model.Response, error) {
	req := model.Request{
		Messages: conv,
		Tools:    a.toolDefinitions(),
		Stream:   streamFn != nil,
	}

	respCh, errCh := a.model.Generate(ctx, req)

	var final model.Response
	var seenFinal bool
	for respCh != nil || errCh != nil {
		select {
		case resp, ok := <-respCh:
			if !ok {
				respCh = nil
				continue
			}
			if resp.Partial {
				if streamFn != nil && resp.Message.Content != "" {
					streamFn(resp.Message.Content)
				}
				continue
			}
			final = resp
			seenFinal = true
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if err != nil {
				return model.Response{}, err
			}
		}
	}

	if !seenFinal {
		return model.Response{}, fmt.Errorf("model %s closed without a final response", a.model.Info().Name)
	}
	return final, nil
}

// invoke looks up and executes one requested tool call. Unknown tools and
// malformed arguments are reported as *tool.ToolError so the caller can fold
// them instead of aborting.
func (a *Agent) invoke(ctx context.Context, call model.ToolCall) (any, error) {
	impl, ok := a.tools[call.Name]
	if !ok {
		a.logger.Warn("agent.tool.unknown", "agent", a.name, "tool", call.Name, "call_id", call.ID)
		return nil, tool.NewToolError(call.Name, "unknown tool", tool.CodeUnknownTool)
	}

	args := map[string]any{}
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return nil, &tool.ToolError{
				Tool:    call.Name,
				Message: fmt.Sprintf("failed to unmarshal arguments: %v", err),
				Code:    tool.CodeValidation,
			}
		}
	}

	start := time.Now()
	result, err := impl.Call(ctx, args)
	a.logger.Info("agent.tool.executed",
		"agent", a.name,
		"tool", call.Name,
		"call_id", call.ID,
		"duration_ms", time.Since(start).Milliseconds(),
		"error", err != nil,
	)
	return result, err
}

func (a *Agent) toolDefinitions() []model.ToolDefinition {
	if len(a.toolOrder) == 0 {
		return nil
	}
	defs := make([]model.ToolDefinition, 0, len(a.toolOrder))
	for _, name := range a.toolOrder {
		t := a.tools[name]
		defs = append(defs, model.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	return defs
}

// foldResult converts one tool invocation outcome into a tool result message
// tagged with the original call id. Errors become descriptions the model can
// reason about rather than aborting the loop.
func foldResult(call model.ToolCall, result any, err error) model.Message {
	if err != nil {
		return model.ToolMessage(call.ID, fmt.Sprintf("error: %v", err))
	}
	return model.ToolMessage(call.ID, stringify(result))
}

func stringify(result any) string {
	switch v := result.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		if raw, err := json.Marshal(v); err == nil {
			return string(raw)
		}
		return fmt.Sprintf("%v", v)
	}
}
