package agent

import (
	"errors"
	"fmt"
)

// ErrRoundLimit is reported when the resolution loop exceeds its configured
// maximum number of model rounds without reaching a final answer.
var ErrRoundLimit = errors.New("resolution round limit exceeded")

// ResolutionError wraps the first unrecoverable provider error encountered by
// Run, or ErrRoundLimit when the safety cap is hit. Locally recovered errors
// (invalid tool arguments, unknown tools) never surface as ResolutionError;
// they are folded back into the conversation instead.
type ResolutionError struct {
	Agent string // Name of the agent whose loop failed
	Round int    // 1-based round at which the failure occurred
	Err   error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("agent %q: resolution failed at round %d: %v", e.Agent, e.Round, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }
