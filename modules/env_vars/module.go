// Package env_vars provides the built-in 'env_vars' node, which loads
// named environment variables into the execution state.
package env_vars

import (
	"context"
	"fmt"
	"os"
	"strings"

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

// New constructs the env_vars node.
func New() node.Node { return &envVarsNode{} }

type envVarsNode struct{}

func (n *envVarsNode) Metadata() node.Metadata {
	return node.Metadata{
		ID:          "env_vars",
		Name:        "Environment Variables",
		Version:     "1.0.0",
		Description: "Loads named environment variables into the execution state.",
		Inputs:      []string{"names", "required"},
		AIHints: map[string]string{
			"purpose": "Bring configuration such as API keys from the process environment into state.",
		},
	}
}

func (n *envVarsNode) Execute(ctx context.Context, ec *node.ExecutionContext, config map[string]any) (node.EdgeMap, error) {
	rawNames, ok := config["names"].([]any)
	if !ok {
		return nil, fmt.Errorf("'names' must be a list of strings")
	}
	required, _ := config["required"].(bool)

	payload := make(map[string]any, len(rawNames))
	var missing []string
	for _, raw := range rawNames {
		name, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("'names' must be a list of strings, got %T", raw)
		}
		value, found := os.LookupEnv(name)
		if !found {
			missing = append(missing, name)
			continue
		}
		payload[name] = value
	}

	logger := ctxlog.FromContext(ctx).With("node", "env_vars")
	if len(missing) > 0 && required {
		logger.Warn("Required environment variables are missing.", "missing", missing)
		return node.SingleEdge(node.EdgeError, map[string]any{
			"error":   fmt.Sprintf("missing required environment variables: %s", strings.Join(missing, ", ")),
			"missing": missing,
		}), nil
	}

	logger.Debug("Environment variables loaded.", "count", len(payload))
	return node.SingleEdge(node.EdgeSuccess, payload), nil
}
