package engine

import "fmt"

// ExecutionError is the engine's fatal failure type: a node threw instead
// of returning an error edge, the plan was malformed, or the run timed out.
type ExecutionError struct {
	ExecutionID string
	NodeID      string
	Cause       error
}

func (e *ExecutionError) Error() string {
	if e.NodeID != "" {
		return fmt.Sprintf("execution '%s' failed at node '%s': %v", e.ExecutionID, e.NodeID, e.Cause)
	}
	return fmt.Sprintf("execution '%s' failed: %v", e.ExecutionID, e.Cause)
}

func (e *ExecutionError) Unwrap() error { return e.Cause }

// LoopLimitError reports a workflow-authored cycle that exceeded the
// iteration ceiling. It is not retryable without fixing the workflow.
type LoopLimitError struct {
	ExecutionID string
	Iterations  int
}

func (e *LoopLimitError) Error() string {
	return fmt.Sprintf("execution '%s' exceeded the loop limit of %d iterations", e.ExecutionID, e.Iterations)
}
