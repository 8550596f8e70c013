// Package delay provides the built-in 'delay' node, which pauses a run for
// a configured duration while staying responsive to cancellation.
package delay

import (
	"context"
	"fmt"
	"time"

	"github.com/specialistvlad/nodeflow/internal/ctxlog"
	"github.com/specialistvlad/nodeflow/internal/node"
	"github.com/specialistvlad/nodeflow/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the node factory with the registry.
func (m *Module) Register(r *registry.Registry) error {
	return r.Register(New, registry.Options{Singleton: true, Source: "builtin"})
}

// New constructs the delay node.
func New() node.Node { return &delayNode{} }

type delayNode struct{}

func (n *delayNode) Metadata() node.Metadata {
	return node.Metadata{
		ID:          "delay",
		Name:        "Delay",
		Version:     "1.0.0",
		Description: "Pauses the workflow for a configured duration.",
		Inputs:      []string{"duration"},
		AIHints: map[string]string{
			"purpose": "Throttle a workflow or wait out an external system, e.g. between polling attempts.",
		},
	}
}

func (n *delayNode) Execute(ctx context.Context, ec *node.ExecutionContext, config map[string]any) (node.EdgeMap, error) {
	raw, ok := config["duration"].(string)
	if !ok {
		return nil, fmt.Errorf("'duration' must be a string")
	}
	dur, err := time.ParseDuration(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid 'duration': %w", err)
	}
	if dur < 0 {
		return nil, fmt.Errorf("'duration' must not be negative")
	}

	ctxlog.FromContext(ctx).Debug("Delaying.", "node", "delay", "duration", dur)

	timer := time.NewTimer(dur)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		return nil, fmt.Errorf("delay interrupted: %w", ctx.Err())
	}

	return node.SingleEdge(node.EdgeSuccess, map[string]any{"waited": dur.String()}), nil
}
