package util

import "github.com/google/uuid"

// NewID returns a new unique identifier suitable for correlating tool calls
// with their results.
func NewID() string { return uuid.NewString() }
