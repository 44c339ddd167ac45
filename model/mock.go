package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// MockModel is a lightweight in-memory Model useful for tests & examples.
//
// Two modes can be combined: a script of steps consumed one per Generate
// call (tool call rounds, canned answers, injected errors), and a simple
// prompt->response map used when the script is exhausted.
type MockModel struct {
	mu        sync.Mutex
	info      Info
	responses map[string]string
	script    []mockStep
	requests  []Request
}

type mockStep struct {
	resp Response
	err  error
}

// NewMockModel constructs a MockModel with basic tool support enabled.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info: Info{
			Name:          name,
			Provider:      provider,
			SupportsTools: true,
		},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for an input prompt.
func (m *MockModel) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = response
}

// EnqueueAnswer appends a scripted final answer step.
func (m *MockModel) EnqueueAnswer(text string) {
	m.enqueue(mockStep{resp: Response{
		Message:      AssistantMessage(text),
		FinishReason: "stop",
	}})
}

// EnqueueToolCalls appends a scripted step requesting the given tool calls.
// Calls without an ID are assigned a generated one.
func (m *MockModel) EnqueueToolCalls(calls ...ToolCall) {
	for i := range calls {
		if calls[i].ID == "" {
			calls[i].ID = "call_" + uuid.NewString()
		}
	}
	m.enqueue(mockStep{resp: Response{
		Message:      Message{Role: RoleAssistant, ToolCalls: calls},
		FinishReason: "tool_calls",
	}})
}

// EnqueueError appends a scripted step that fails with err.
func (m *MockModel) EnqueueError(err error) {
	m.enqueue(mockStep{err: err})
}

func (m *MockModel) enqueue(s mockStep) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, s)
}

// Calls reports how many Generate invocations have been made.
func (m *MockModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Requests returns a copy of every Request seen so far, in order.
func (m *MockModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Generate implements Model; pops the next scripted step or falls back to the
// prompt map, emitting optional streaming char chunks before the final response.
func (m *MockModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 16)
	errCh := make(chan error, 1)

	m.mu.Lock()
	m.requests = append(m.requests, req)
	var step *mockStep
	if len(m.script) > 0 {
		s := m.script[0]
		m.script = m.script[1:]
		step = &s
	}
	m.mu.Unlock()

	go func() {
		defer close(respCh)
		defer close(errCh)

		if step != nil {
			if step.err != nil {
				errCh <- step.err
				return
			}
			m.emit(ctx, req, step.resp, respCh, errCh)
			return
		}

		if len(req.Messages) == 0 {
			errCh <- fmt.Errorf("no messages provided")
			return
		}
		inputText := req.Messages[len(req.Messages)-1].Content
		full := m.lookup(inputText)
		if full == "" {
			full = fmt.Sprintf("Mock response to: %s", inputText)
		}
		m.emit(ctx, req, Response{
			Message:      AssistantMessage(full),
			FinishReason: "stop",
		}, respCh, errCh)
	}()
	return respCh, errCh
}

func (m *MockModel) lookup(prompt string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.responses[prompt]
}

func (m *MockModel) emit(ctx context.Context, req Request, final Response, respCh chan<- Response, errCh chan<- error) {
	if req.Stream && final.Message.Content != "" {
		for _, r := range final.Message.Content {
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			case respCh <- Response{
				Partial: true,
				Message: AssistantMessage(string(r)),
			}:
			}
		}
	}
	respCh <- final
}

// Info implements Model interface.
func (m *MockModel) Info() Info { return m.info }
