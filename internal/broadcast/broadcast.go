// Package broadcast relays execution lifecycle events to external
// listeners, typically a dashboard over socket.io. It subscribes to the
// hook manager and translates internal hook events into the public event
// vocabulary.
package broadcast

import (
	"context"

	"github.com/specialistvlad/nodeflow/internal/ctxlog"
	"github.com/specialistvlad/nodeflow/internal/hook"
)

// Public event names emitted to listeners.
const (
	EventWorkflowStarted   = "workflow:started"
	EventWorkflowProgress  = "workflow:progress"
	EventWorkflowCompleted = "workflow:completed"
	EventWorkflowFailed    = "workflow:failed"
	EventNodeStarted       = "node:started"
	EventNodeCompleted     = "node:completed"
	EventNodeFailed        = "node:failed"
)

// Emitter is the transport the broadcaster publishes through.
type Emitter interface {
	Emit(event string, payload map[string]any) error
	Close() error
}

// Broadcaster maps hook events onto Emitter publishes. Emit failures are
// logged and swallowed; a flaky listener never disturbs an execution.
type Broadcaster struct {
	emitter Emitter
}

// New creates a broadcaster over the given transport.
func New(emitter Emitter) *Broadcaster {
	return &Broadcaster{emitter: emitter}
}

// Attach registers the broadcaster's handlers on the hook manager.
func (b *Broadcaster) Attach(hooks *hook.Manager) {
	hooks.Register(hook.WorkflowBeforeStart, hook.Registration{
		Name: "broadcast", Handler: b.onWorkflowStart,
	})
	hooks.Register(hook.NodeBeforeExecute, hook.Registration{
		Name: "broadcast", Handler: b.onNodeStart,
	})
	hooks.Register(hook.NodeAfterExecute, hook.Registration{
		Name: "broadcast", Handler: b.onNodeDone,
	})
	hooks.Register(hook.WorkflowAfterEnd, hook.Registration{
		Name: "broadcast", Handler: b.onWorkflowEnd,
	})
	hooks.Register(hook.WorkflowError, hook.Registration{
		Name: "broadcast", Handler: b.onWorkflowError,
	})
}

// Close releases the underlying transport.
func (b *Broadcaster) Close() error {
	return b.emitter.Close()
}

func (b *Broadcaster) onWorkflowStart(ctx context.Context, ev hook.Event) error {
	b.publish(ctx, EventWorkflowStarted, map[string]any{
		"executionId": ev.ExecutionID,
		"workflowId":  ev.WorkflowID,
		"timestamp":   ev.Timestamp,
	})
	return nil
}

func (b *Broadcaster) onNodeStart(ctx context.Context, ev hook.Event) error {
	b.publish(ctx, EventNodeStarted, map[string]any{
		"executionId": ev.ExecutionID,
		"workflowId":  ev.WorkflowID,
		"nodeId":      ev.NodeID,
		"timestamp":   ev.Timestamp,
	})
	return nil
}

func (b *Broadcaster) onNodeDone(ctx context.Context, ev hook.Event) error {
	name := EventNodeCompleted
	if ev.Edge == "error" {
		name = EventNodeFailed
	}
	b.publish(ctx, name, map[string]any{
		"executionId": ev.ExecutionID,
		"workflowId":  ev.WorkflowID,
		"nodeId":      ev.NodeID,
		"edge":        ev.Edge,
		"timestamp":   ev.Timestamp,
	})
	b.publish(ctx, EventWorkflowProgress, map[string]any{
		"executionId": ev.ExecutionID,
		"workflowId":  ev.WorkflowID,
		"nodeId":      ev.NodeID,
		"state":       ev.State,
		"timestamp":   ev.Timestamp,
	})
	return nil
}

func (b *Broadcaster) onWorkflowEnd(ctx context.Context, ev hook.Event) error {
	b.publish(ctx, EventWorkflowCompleted, map[string]any{
		"executionId": ev.ExecutionID,
		"workflowId":  ev.WorkflowID,
		"state":       ev.State,
		"timestamp":   ev.Timestamp,
	})
	return nil
}

func (b *Broadcaster) onWorkflowError(ctx context.Context, ev hook.Event) error {
	payload := map[string]any{
		"executionId": ev.ExecutionID,
		"workflowId":  ev.WorkflowID,
		"nodeId":      ev.NodeID,
		"state":       ev.State,
		"timestamp":   ev.Timestamp,
	}
	if ev.Err != nil {
		payload["error"] = ev.Err.Error()
	}
	b.publish(ctx, EventWorkflowFailed, payload)
	return nil
}

func (b *Broadcaster) publish(ctx context.Context, event string, payload map[string]any) {
	if err := b.emitter.Emit(event, payload); err != nil {
		ctxlog.FromContext(ctx).Warn("Failed to broadcast event.", "event", event, "error", err)
	}
}
