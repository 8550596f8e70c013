package env_vars

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/nodeflow/internal/node"
	"github.com/specialistvlad/nodeflow/internal/registry"
)

func TestExecuteLoadsVariables(t *testing.T) {
	t.Setenv("NODEFLOW_TEST_TOKEN", "s3cret")
	n := New()

	edges, err := n.Execute(context.Background(), &node.ExecutionContext{}, map[string]any{
		"names": []any{"NODEFLOW_TEST_TOKEN", "NODEFLOW_TEST_ABSENT"},
	})

	require.NoError(t, err)
	require.Contains(t, edges, node.EdgeSuccess)
	payload, err := edges[node.EdgeSuccess]()
	require.NoError(t, err)
	assert.Equal(t, "s3cret", payload["NODEFLOW_TEST_TOKEN"])
	assert.NotContains(t, payload, "NODEFLOW_TEST_ABSENT", "missing optional vars are simply omitted")
}

func TestExecuteRequiredMissingFiresErrorEdge(t *testing.T) {
	n := New()

	edges, err := n.Execute(context.Background(), &node.ExecutionContext{}, map[string]any{
		"names":    []any{"NODEFLOW_TEST_ABSENT"},
		"required": true,
	})

	require.NoError(t, err)
	require.Contains(t, edges, node.EdgeError)
	payload, err := edges[node.EdgeError]()
	require.NoError(t, err)
	assert.Contains(t, payload["error"], "NODEFLOW_TEST_ABSENT")
}

func TestExecuteRejectsBadNames(t *testing.T) {
	n := New()

	_, err := n.Execute(context.Background(), &node.ExecutionContext{}, map[string]any{
		"names": "PATH",
	})

	require.Error(t, err)
}

func TestRegister(t *testing.T) {
	r := registry.New()
	require.NoError(t, (&Module{}).Register(r))
	assert.True(t, r.Has("env_vars"))
}
