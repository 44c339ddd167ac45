// Package agent implements the tool-call resolution loop at the heart of
// agents-manager.
//
// An Agent bundles a system instruction, a model provider adapter and a fixed
// tool set. Run drives the conversation: the model either answers or requests
// tool calls; requested calls are executed in order and their results folded
// back into the conversation until the model produces a final answer. A tool
// may transfer the conversation to another agent by returning a *Handoff,
// in which case the target agent continues from the accumulated state and its
// final answer becomes the result of the original Run.
package agent
