package engine

import "time"

// Status is the terminal state of an execution.
type Status int

const (
	// Idle means the execution has not started.
	Idle Status = iota
	// Running means the step loop is in progress.
	Running
	// Completed means the cursor was exhausted or a node signaled a
	// terminal edge.
	Completed
	// Failed means a fatal error ended the run.
	Failed
	// LoopLimitExceeded means the iteration ceiling ended the run.
	LoopLimitExceeded
)

// String returns the lowercase name used in logs and transport payloads.
func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	case LoopLimitExceeded:
		return "loop-limit-exceeded"
	default:
		return "unknown"
	}
}

// StepTrace records one executed step for the run's timeline.
type StepTrace struct {
	NodeID   string        `json:"nodeId"`
	Edge     string        `json:"edge"`
	Duration time.Duration `json:"duration"`
}

// Result is what the caller receives for every run, successful or not.
type Result struct {
	ExecutionID string         `json:"executionId"`
	Status      Status         `json:"status"`
	FinalState  map[string]any `json:"finalState"`
	Trace       []StepTrace    `json:"trace"`
	Duration    time.Duration  `json:"duration"`
}
