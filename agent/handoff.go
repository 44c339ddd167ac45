package agent

import (
	"context"
	"fmt"

	"github.com/sandeshnaroju/agents-manager/tool"
)

// Handoff is the tagged result a tool returns to transfer the conversation to
// another agent. Returning it terminates the current loop immediately: queued
// calls in the same round are not executed and the target agent continues
// from the accumulated conversation under its own instruction and tool set.
type Handoff struct {
	Target *Agent
}

// NewHandoffTool builds a transfer tool for the given target agent, in the
// shape models expect for delegation: calling transfer_to_<name> with no
// arguments moves the conversation to that agent.
func NewHandoffTool(target *Agent) tool.Tool {
	return tool.NewFunctionTool(
		"transfer_to_"+target.Name(),
		fmt.Sprintf("Transfer the conversation to agent %q when it is better suited to handle the request.", target.Name()),
		map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
		func(_ context.Context, _ map[string]any) (any, error) {
			return &Handoff{Target: target}, nil
		},
	)
}

// handoffTarget extracts a transfer target from a tool result. A *Handoff is
// the preferred, explicit signal; a bare *Agent is honored for compatibility
// with tools that return the agent itself.
func handoffTarget(result any) *Agent {
	switch v := result.(type) {
	case *Handoff:
		if v == nil {
			return nil
		}
		return v.Target
	case *Agent:
		return v
	default:
		return nil
	}
}
