// Package print provides the built-in 'print' node, the smallest useful
// node: it logs a message and passes state through untouched.
package print

import (
	"context"
	"fmt"

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

// New constructs the print node.
func New() node.Node { return &printNode{} }

type printNode struct{}

func (n *printNode) Metadata() node.Metadata {
	return node.Metadata{
		ID:          "print",
		Name:        "Print",
		Version:     "1.0.0",
		Description: "Logs a message at the chosen level.",
		Inputs:      []string{"message", "level"},
		AIHints: map[string]string{
			"purpose": "Emit a human-readable message during a run, typically for debugging workflows.",
		},
	}
}

func (n *printNode) Execute(ctx context.Context, ec *node.ExecutionContext, config map[string]any) (node.EdgeMap, error) {
	message, ok := config["message"].(string)
	if !ok {
		return nil, fmt.Errorf("'message' must be a string")
	}

	logger := ctxlog.FromContext(ctx).With("node", "print")
	switch config["level"] {
	case "debug":
		logger.Debug(message)
	case "warn":
		logger.Warn(message)
	case "error":
		logger.Error(message)
	default:
		logger.Info(message)
	}

	return node.SingleEdge(node.EdgeSuccess, map[string]any{"printed": message}), nil
}
