package hook

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/specialistvlad/nodeflow/internal/ctxlog"
)

// EventType names a lifecycle point of a workflow run.
type EventType string

const (
	WorkflowBeforeStart EventType = "workflow:before-start"
	WorkflowAfterEnd    EventType = "workflow:after-end"
	WorkflowError       EventType = "workflow:error"
	NodeBeforeExecute   EventType = "node:before-execute"
	NodeAfterExecute    EventType = "node:after-execute"
)

// Event is the context passed to every handler of a lifecycle point.
type Event struct {
	Type        EventType
	ExecutionID string
	WorkflowID  string

	// NodeID and Edge are set for node:* events; Edge only after execution.
	NodeID string
	Edge   string

	// State is a point-in-time copy of the execution state.
	State map[string]any

	// Err is set for workflow:error.
	Err error

	Timestamp time.Time
}

// Handler is an observer callback for a lifecycle event.
type Handler func(ctx context.Context, ev Event) error

// Registration binds a named handler to an event type. The name exists for
// diagnostics and unregistration, not uniqueness enforcement.
type Registration struct {
	Name    string
	Handler Handler
}

// Manager holds the ordered handler lists per event type. It is safe for
// concurrent use by many in-flight executions.
type Manager struct {
	mu       sync.RWMutex
	handlers map[EventType][]Registration
	failures map[EventType]int
}

// NewManager creates an empty hook manager.
func NewManager() *Manager {
	return &Manager{
		handlers: make(map[EventType][]Registration),
		failures: make(map[EventType]int),
	}
}

// Register appends a handler to the ordered list for the event type.
func (m *Manager) Register(t EventType, reg Registration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[t] = append(m.handlers[t], reg)
}

// Unregister removes every handler registered under the given name for the
// event type.
func (m *Manager) Unregister(t EventType, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.handlers[t][:0]
	for _, reg := range m.handlers[t] {
		if reg.Name != name {
			kept = append(kept, reg)
		}
	}
	m.handlers[t] = kept
}

// Trigger invokes the handlers for the event type sequentially, in
// registration order. Handler errors and panics are contained: they are
// logged, counted, and do not prevent later handlers from running.
func (m *Manager) Trigger(ctx context.Context, t EventType, ev Event) {
	m.mu.RLock()
	regs := make([]Registration, len(m.handlers[t]))
	copy(regs, m.handlers[t])
	m.mu.RUnlock()

	ev.Type = t
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	logger := ctxlog.FromContext(ctx)
	for _, reg := range regs {
		if err := m.invoke(ctx, reg, ev); err != nil {
			m.mu.Lock()
			m.failures[t]++
			m.mu.Unlock()
			logger.Warn("Hook handler failed, continuing.", "event", string(t), "handler", reg.Name, "error", err)
		}
	}
}

// invoke runs one handler inside its own fault boundary.
func (m *Manager) invoke(ctx context.Context, reg Registration, ev Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return reg.Handler(ctx, ev)
}

// Failures returns how many handler invocations have failed for the event
// type since the manager was created or cleared.
func (m *Manager) Failures(t EventType) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.failures[t]
}

// Handlers returns the number of handlers registered for the event type.
func (m *Manager) Handlers(t EventType) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.handlers[t])
}

// Clear removes every handler and resets the failure counters.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers = make(map[EventType][]Registration)
	m.failures = make(map[EventType]int)
}
