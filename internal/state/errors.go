package state

import "fmt"

// StateNotFoundError reports an operation against an unknown execution id.
type StateNotFoundError struct {
	ExecutionID string
}

func (e *StateNotFoundError) Error() string {
	return fmt.Sprintf("no state exists for execution '%s'", e.ExecutionID)
}

// StateLockError reports a write attempt against a locked key. It carries
// the execution id and key for diagnostics; callers may back off and retry.
type StateLockError struct {
	ExecutionID string
	Key         string
}

func (e *StateLockError) Error() string {
	return fmt.Sprintf("key '%s' is locked for execution '%s'", e.Key, e.ExecutionID)
}

// SnapshotNotFoundError reports a reference to an unknown snapshot id.
type SnapshotNotFoundError struct {
	ExecutionID string
	SnapshotID  string
}

func (e *SnapshotNotFoundError) Error() string {
	return fmt.Sprintf("snapshot '%s' not found for execution '%s'", e.SnapshotID, e.ExecutionID)
}

// DuplicateStateError reports a Create call for an execution id that already
// has a live bag.
type DuplicateStateError struct {
	ExecutionID string
}

func (e *DuplicateStateError) Error() string {
	return fmt.Sprintf("state already exists for execution '%s'", e.ExecutionID)
}
