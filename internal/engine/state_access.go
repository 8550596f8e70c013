package engine

import (
	"github.com/specialistvlad/nodeflow/internal/state"
)

// stateAccess adapts the process-wide state manager into the per-execution
// view nodes receive. It pins the execution id so a node can never address
// another execution's bag.
type stateAccess struct {
	executionID string
	states      *state.Manager
}

func (a *stateAccess) Get() (map[string]any, error) {
	return a.states.Get(a.executionID)
}

func (a *stateAccess) Set(key string, value any) error {
	return a.states.Set(a.executionID, key, value)
}

func (a *stateAccess) Update(patch map[string]any) error {
	return a.states.Update(a.executionID, patch)
}

func (a *stateAccess) LockKey(key string) error {
	return a.states.LockKey(a.executionID, key)
}

func (a *stateAccess) UnlockKey(key string) error {
	return a.states.UnlockKey(a.executionID, key)
}
