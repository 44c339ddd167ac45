// Package agentsmanager provides a small framework for defining named agents
// (each a bundle of a system instruction, a model provider adapter and a set
// of callable tools) and dispatching user messages to them by name.
//
// Most applications interact with this package by:
//  1. Constructing one or more model adapters (model/openai, model/anthropic,
//     model/gemini, model/openaicompat)
//  2. Creating agents with agent.New, optionally wiring tools and handoffs
//  3. Registering the agents on a Manager and calling Run / RunStream
//
// The resolution loop lives in the agent package: the model either answers or
// requests tool calls; calls are executed in order and folded back into the
// conversation until a final answer arrives or a tool hands the conversation
// off to another agent.
package agentsmanager
