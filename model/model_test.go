package model

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Interface compliance (compile-time assertion)
var _ Model = (*MockModel)(nil)

func drain(t *testing.T, respCh <-chan Response, errCh <-chan error) (Response, error) {
	t.Helper()
	var final Response
	for respCh != nil || errCh != nil {
		select {
		case resp, ok := <-respCh:
			if !ok {
				respCh = nil
				continue
			}
			if !resp.Partial {
				final = resp
			}
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if err != nil {
				return Response{}, err
			}
		}
	}
	return final, nil
}

func TestMessageHelpers(t *testing.T) {
	sys := SystemMessage("be helpful")
	assert.Equal(t, RoleSystem, sys.Role)
	assert.Equal(t, "be helpful", sys.Content)

	tm := ToolMessage("call_1", "42")
	assert.Equal(t, RoleTool, tm.Role)
	assert.Equal(t, "call_1", tm.ToolCallID)
	assert.Equal(t, "42", tm.Content)
}

func TestMockModel_PromptMap(t *testing.T) {
	m := NewMockModel("mock-1", "mock")
	m.AddResponse("hello", "world")

	respCh, errCh := m.Generate(context.Background(), Request{
		Messages: []Message{UserMessage("hello")},
	})
	final, err := drain(t, respCh, errCh)
	require.NoError(t, err)
	assert.Equal(t, "world", final.Message.Content)
	assert.Equal(t, "stop", final.FinishReason)
	assert.Equal(t, 1, m.Calls())
}

func TestMockModel_Script(t *testing.T) {
	m := NewMockModel("mock-1", "mock")
	m.EnqueueToolCalls(ToolCall{ID: "call_1", Name: "multiply", Arguments: `{"a":2,"b":3}`})
	m.EnqueueAnswer("6")

	respCh, errCh := m.Generate(context.Background(), Request{Messages: []Message{UserMessage("2*3?")}})
	final, err := drain(t, respCh, errCh)
	require.NoError(t, err)
	require.Len(t, final.Message.ToolCalls, 1)
	assert.Equal(t, "multiply", final.Message.ToolCalls[0].Name)
	assert.Equal(t, "tool_calls", final.FinishReason)

	respCh, errCh = m.Generate(context.Background(), Request{Messages: []Message{UserMessage("again")}})
	final, err = drain(t, respCh, errCh)
	require.NoError(t, err)
	assert.Equal(t, "6", final.Message.Content)
}

func TestMockModel_ScriptedError(t *testing.T) {
	m := NewMockModel("mock-1", "mock")
	boom := NewCallError("mock", errors.New("rate limited"))
	m.EnqueueError(boom)

	respCh, errCh := m.Generate(context.Background(), Request{Messages: []Message{UserMessage("x")}})
	_, err := drain(t, respCh, errCh)
	require.Error(t, err)

	var callErr *CallError
	require.True(t, errors.As(err, &callErr))
	assert.Equal(t, "mock", callErr.Provider)
}

func TestMockModel_Streaming(t *testing.T) {
	m := NewMockModel("mock-1", "mock")
	m.EnqueueAnswer("hey")

	respCh, errCh := m.Generate(context.Background(), Request{
		Messages: []Message{UserMessage("hi")},
		Stream:   true,
	})

	var partials string
	var final Response
	for resp := range respCh {
		if resp.Partial {
			partials += resp.Message.Content
			continue
		}
		final = resp
	}
	require.NoError(t, <-errCh)
	assert.Equal(t, "hey", partials)
	assert.Equal(t, "hey", final.Message.Content)
}

func TestMockModel_RecordsRequests(t *testing.T) {
	m := NewMockModel("mock-1", "mock")
	_, _ = m.Generate(context.Background(), Request{Messages: []Message{UserMessage("one")}})
	_, _ = m.Generate(context.Background(), Request{Messages: []Message{UserMessage("two")}})

	reqs := m.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "one", reqs[0].Messages[0].Content)
	assert.Equal(t, "two", reqs[1].Messages[0].Content)
}
