package agentsmanager

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeshnaroju/agents-manager/agent"
	"github.com/sandeshnaroju/agents-manager/model"
)

func TestManager_RegisterAndRun(t *testing.T) {
	m := model.NewMockModel("mock", "mock")
	m.AddResponse("hi", "hello")

	mgr := New()
	require.NoError(t, mgr.Register(agent.New("Greeter", "greet", m)))

	out, err := mgr.Run(context.Background(), "Greeter", "hi")
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
}

func TestManager_DuplicateRegistration(t *testing.T) {
	m := model.NewMockModel("mock", "mock")
	mgr := New()

	require.NoError(t, mgr.Register(agent.New("Greeter", "greet", m)))

	err := mgr.Register(agent.New("Greeter", "other instruction", m))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateAgent))

	// Overwrite replaces the existing registration.
	replacement := agent.New("Greeter", "replacement", m)
	require.NoError(t, mgr.Register(replacement, WithOverwrite()))

	got, ok := mgr.Get("Greeter")
	require.True(t, ok)
	assert.Equal(t, "replacement", got.Instruction())
}

func TestManager_UnknownAgentNeverCallsProvider(t *testing.T) {
	m := model.NewMockModel("mock", "mock")
	mgr := New()
	require.NoError(t, mgr.Register(agent.New("Greeter", "greet", m)))

	_, err := mgr.Run(context.Background(), "Nobody", "hi")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownAgent))
	assert.Equal(t, 0, m.Calls())
}

func TestManager_Names(t *testing.T) {
	m := model.NewMockModel("mock", "mock")
	mgr := New()
	require.NoError(t, mgr.Register(agent.New("Bravo", "b", m)))
	require.NoError(t, mgr.Register(agent.New("Alpha", "a", m)))

	assert.Equal(t, []string{"Alpha", "Bravo"}, mgr.Names())
}

func TestManager_RunStream(t *testing.T) {
	m := model.NewMockModel("mock", "mock")
	m.EnqueueAnswer("streamed")

	mgr := New()
	require.NoError(t, mgr.Register(agent.New("Streamer", "stream", m)))

	var deltas string
	out, err := mgr.RunStream(context.Background(), "Streamer", "go", func(delta string) {
		deltas += delta
	})
	require.NoError(t, err)
	assert.Equal(t, "streamed", out)
	assert.Equal(t, "streamed", deltas)
}
