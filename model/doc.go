// Package model defines the provider-agnostic abstractions for interacting
// with language models inside agents-manager.
//
// Core goals:
//   - Unify streaming + non-streaming generation behind a single interface
//   - Normalize the conversation shape (Message) and tool call representation
//     (ToolCall, ToolDefinition) across vendors
//   - Keep request/response shapes minimal and transport independent
//   - Facilitate lightweight mocking for tests (MockModel)
//
// Providers (OpenAI, Anthropic, Gemini, OpenAI-compatible endpoints) implement
// the Model interface from this package so higher layers (agents, the manager)
// remain decoupled from vendor SDKs.
package model
