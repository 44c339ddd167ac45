package model

import "fmt"

// ConfigurationError reports an adapter that cannot be constructed, typically
// because a required credential or model identifier is absent. It is surfaced
// before any conversation starts.
type ConfigurationError struct {
	Provider string `json:"provider"`
	Reason   string `json:"reason"`
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s configuration: %s", e.Provider, e.Reason)
}

// NewConfigurationError creates a ConfigurationError for the given provider.
func NewConfigurationError(provider, reason string) *ConfigurationError {
	return &ConfigurationError{Provider: provider, Reason: reason}
}

// CallError wraps a transport, authentication or rate-limit failure raised
// during a provider call. The core never retries; the error is surfaced out
// of the resolution loop unchanged.
type CallError struct {
	Provider string
	Err      error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("%s call failed: %v", e.Provider, e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }

// NewCallError wraps err as a CallError for the given provider.
func NewCallError(provider string, err error) *CallError {
	return &CallError{Provider: provider, Err: err}
}
