package node

import (
	"context"
	"fmt"
	"strings"
)

// Well-known edge names. Nodes are free to return any edge name; these two
// carry engine-level meaning.
const (
	EdgeSuccess = "success"
	EdgeError   = "error"
)

// Producer lazily yields the payload of a fired edge. The engine invokes at
// most one producer per node execution; the producer may also write to the
// execution state through the context it captured.
type Producer func() (map[string]any, error)

// EdgeMap is the result of a node execution: a mapping from edge name to the
// producer that materializes that edge's output.
type EdgeMap map[string]Producer

// Node is the interface the engine requires from every node implementation.
type Node interface {
	// Metadata returns the node's identity record. It must be constant for
	// the lifetime of the instance.
	Metadata() Metadata

	// Execute runs the node against the given execution context and step
	// configuration and reports its outcome as an EdgeMap.
	Execute(ctx context.Context, ec *ExecutionContext, config map[string]any) (EdgeMap, error)
}

// Factory constructs a fresh node instance. The registry calls it once at
// registration time to read metadata, and again per lookup unless the node
// is registered as a singleton.
type Factory func() Node

// Metadata is the identity record for a node type. ID, Name and Version are
// mandatory; the remaining fields are documentation for catalogue consumers.
type Metadata struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Version     string            `json:"version"`
	Description string            `json:"description,omitempty"`
	Inputs      []string          `json:"inputs,omitempty"`
	Outputs     []string          `json:"outputs,omitempty"`
	AIHints     map[string]string `json:"aiHints,omitempty"`
}

// Validate reports the first missing mandatory field, if any.
func (m Metadata) Validate() error {
	var missing []string
	if m.ID == "" {
		missing = append(missing, "id")
	}
	if m.Name == "" {
		missing = append(missing, "name")
	}
	if m.Version == "" {
		missing = append(missing, "version")
	}
	if len(missing) > 0 {
		return fmt.Errorf("metadata is missing mandatory fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// StateAccess is the node-facing view of the execution's state bag. It is
// scoped to a single execution id; a node must never retain it past the end
// of its Execute call.
type StateAccess interface {
	// Get returns a copy of the current state bag.
	Get() (map[string]any, error)

	// Set writes a single key. It fails with a StateLockError when the key
	// is locked.
	Set(key string, value any) error

	// Update merge-writes the given patch into the bag.
	Update(patch map[string]any) error

	// LockKey and UnlockKey manage advisory per-key locks. Outstanding
	// locks are released when the execution terminates.
	LockKey(key string) error
	UnlockKey(key string) error
}

// ExecutionContext carries the per-execution facilities a node may use.
type ExecutionContext struct {
	// ExecutionID identifies the current run.
	ExecutionID string

	// WorkflowID is the id of the workflow document being executed.
	WorkflowID string

	// State is the live execution state bag.
	State StateAccess
}

// SingleEdge is a convenience for nodes with exactly one outcome.
func SingleEdge(name string, payload map[string]any) EdgeMap {
	return EdgeMap{name: func() (map[string]any, error) { return payload, nil }}
}

// ErrorEdge builds the conventional error edge carrying a message payload.
func ErrorEdge(err error) EdgeMap {
	return EdgeMap{EdgeError: func() (map[string]any, error) {
		return map[string]any{"error": err.Error()}, nil
	}}
}
