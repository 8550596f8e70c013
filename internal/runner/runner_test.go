package runner

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/nodeflow/internal/engine"
	"github.com/specialistvlad/nodeflow/internal/hook"
	"github.com/specialistvlad/nodeflow/internal/node"
	"github.com/specialistvlad/nodeflow/internal/registry"
	"github.com/specialistvlad/nodeflow/internal/state"
	"github.com/specialistvlad/nodeflow/internal/testutil"
	"github.com/specialistvlad/nodeflow/internal/workflow"
)

func newEngine(t *testing.T, factories ...node.Factory) (*engine.Engine, *registry.Registry) {
	t.Helper()
	reg := registry.New()
	for _, f := range factories {
		require.NoError(t, reg.Register(f, registry.Options{}))
	}
	return engine.New(reg, state.NewManager(), hook.NewManager()), reg
}

func parseDoc(t *testing.T, reg *registry.Registry, doc string) *workflow.ParsedWorkflow {
	t.Helper()
	def, err := workflow.Decode(strings.NewReader(doc))
	require.NoError(t, err)
	parsed, err := workflow.NewParser(reg).Parse(def)
	require.NoError(t, err)
	return parsed
}

func TestSubmit(t *testing.T) {
	eng, reg := newEngine(t, testutil.SuccessFactory("hello", map[string]any{"ok": true}))
	parsed := parseDoc(t, reg, `{
		"id": "wf", "name": "WF", "version": "1.0.0",
		"workflow": ["hello"]
	}`)
	r, err := New(eng, 2)
	require.NoError(t, err)
	defer r.Close()

	out, err := r.Submit(context.Background(), Job{Workflow: parsed})
	require.NoError(t, err)

	outcome := <-out
	require.NoError(t, outcome.Err)
	assert.Equal(t, engine.Completed, outcome.Result.Status)
	assert.Equal(t, true, outcome.Result.FinalState["ok"])
}

func TestRunAllIsolatesConcurrentExecutions(t *testing.T) {
	// --- Arrange: every execution writes its own seed back to state; any
	// cross-talk between bags would corrupt at least one outcome.
	eng, reg := newEngine(t, testutil.Factory("echo", func(ctx context.Context, ec *node.ExecutionContext, config map[string]any) (node.EdgeMap, error) {
		data, err := ec.State.Get()
		if err != nil {
			return nil, err
		}
		return node.SingleEdge(node.EdgeSuccess, map[string]any{"echo": data["seed"]}), nil
	}))
	parsed := parseDoc(t, reg, `{
		"id": "wf-iso", "name": "Iso", "version": "1.0.0",
		"workflow": ["echo"]
	}`)

	const n = 50
	jobs := make([]Job, n)
	for i := range jobs {
		jobs[i] = Job{Workflow: parsed, Initial: map[string]any{"seed": fmt.Sprintf("seed-%d", i)}}
	}
	r, err := New(eng, 8)
	require.NoError(t, err)
	defer r.Close()

	// --- Act ---
	outcomes, err := r.RunAll(context.Background(), jobs)

	// --- Assert ---
	require.NoError(t, err)
	require.Len(t, outcomes, n)
	ids := make(map[string]bool, n)
	for i, outcome := range outcomes {
		require.NoError(t, outcome.Err)
		assert.Equal(t, fmt.Sprintf("seed-%d", i), outcome.Result.FinalState["echo"])
		ids[outcome.Result.ExecutionID] = true
	}
	assert.Len(t, ids, n, "every execution gets its own id")
}

func TestNewDefaultsPoolSize(t *testing.T) {
	eng, _ := newEngine(t)
	r, err := New(eng, 0)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, 0, r.Running())
}
