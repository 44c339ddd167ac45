// Package tool implements the function / tool calling subsystem that lets
// agents invoke structured capabilities (APIs, computations, side-effects)
// with schema validated arguments and consistent error handling.
package tool

import (
	"context"
	"fmt"
)

// Error codes used by ToolError for uniform downstream handling.
const (
	// CodeValidation marks a schema / argument mismatch.
	CodeValidation = "VALIDATION_ERROR"
	// CodeExecution marks a failure of the underlying function.
	CodeExecution = "EXECUTION_ERROR"
	// CodeUnknownTool marks a call to a tool the agent does not have.
	CodeUnknownTool = "UNKNOWN_TOOL"
)

// Tool defines the interface for extending agent capabilities with external functions.
//
// Tools are registered with agents to enable function calling, allowing agents
// to perform actions beyond text generation such as API calls, calculations,
// database queries, or any other programmatic operations.
//
// Tool implementations should:
//   - Provide clear, descriptive names and descriptions
//   - Define proper JSON schema for parameters
//   - Handle errors gracefully
//   - Be thread-safe if used concurrently
type Tool interface {
	// Name returns the unique identifier for this tool.
	// Names should be descriptive and follow function naming conventions (snake_case recommended).
	Name() string

	// Description returns a human-readable description of what this tool does.
	// This description is provided to the LLM to help it understand when and how to use the tool.
	Description() string

	// Parameters returns a JSON schema describing the expected input format.
	// This schema is used for parameter validation and LLM function calling.
	Parameters() map[string]any

	// Call executes the tool with structured arguments. Arguments are parsed
	// from the provider-supplied JSON and validated against the tool's schema
	// before execution. The returned value must be JSON-serializable; agents
	// may additionally recognize control-flow result types (see the agent
	// package's Handoff).
	Call(ctx context.Context, args map[string]any) (any, error)
}

// ToolError represents errors that occur during tool invocation. Invocation
// failures are recoverable: the agent loop folds them back into the
// conversation as error tool results instead of aborting.
type ToolError struct {
	Tool    string `json:"tool"`              // Name of the tool that failed
	Message string `json:"message"`           // Error message
	Code    string `json:"code"`              // Error code for categorization
	Details any    `json:"details,omitempty"` // Additional error details
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{
		Tool:    tool,
		Message: message,
		Code:    code,
	}
}
