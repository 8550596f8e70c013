package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/specialistvlad/nodeflow/internal/ctxlog"
	"github.com/specialistvlad/nodeflow/internal/hook"
	"github.com/specialistvlad/nodeflow/internal/node"
	"github.com/specialistvlad/nodeflow/internal/registry"
	"github.com/specialistvlad/nodeflow/internal/state"
	"github.com/specialistvlad/nodeflow/internal/workflow"
)

const (
	// MaxLoopIterations is the hard ceiling on total steps per run, the
	// primary defense against author-introduced infinite loops.
	MaxLoopIterations = 1000

	// DefaultTimeout bounds an execution's wall-clock time independent of
	// iteration count.
	DefaultTimeout = 5 * time.Minute
)

// Engine orchestrates workflow runs against a shared registry, state
// manager and hook manager. One Engine handles many concurrent executions;
// all mutable per-run data lives in the state manager.
type Engine struct {
	registry      *registry.Registry
	states        *state.Manager
	hooks         *hook.Manager
	timeout       time.Duration
	maxIterations int
}

// Option adjusts engine construction.
type Option func(*Engine)

// WithTimeout overrides the per-execution wall-clock limit.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// WithMaxIterations overrides the iteration ceiling.
func WithMaxIterations(n int) Option {
	return func(e *Engine) { e.maxIterations = n }
}

// New creates an engine. The registry, state manager and hook manager are
// owned by the caller's composition root and passed by reference, so many
// engines (or none) can share them.
func New(reg *registry.Registry, states *state.Manager, hooks *hook.Manager, opts ...Option) *Engine {
	e := &Engine{
		registry:      reg,
		states:        states,
		hooks:         hooks,
		timeout:       DefaultTimeout,
		maxIterations: MaxLoopIterations,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute drives one run of the parsed workflow. The initial state is the
// workflow's own initialState merged with the caller's override, the
// override winning on conflicts. The returned Result is non-nil even on
// failure and carries the trace up to the failure point; the execution's
// state bag is destroyed on every exit path.
func (e *Engine) Execute(ctx context.Context, parsed *workflow.ParsedWorkflow, initial map[string]any) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	execID := uuid.NewString()
	logger = logger.With("executionID", execID, "workflowID", parsed.ID)
	ctx = ctxlog.WithLogger(ctx, logger)

	seed := make(map[string]any, len(parsed.InitialState)+len(initial))
	for k, v := range parsed.InitialState {
		seed[k] = v
	}
	for k, v := range initial {
		seed[k] = v
	}

	if err := e.states.Create(execID, seed); err != nil {
		return &Result{ExecutionID: execID, Status: Failed}, &ExecutionError{ExecutionID: execID, Cause: err}
	}

	run := &run{
		engine:  e,
		parsed:  parsed,
		execID:  execID,
		started: time.Now(),
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	e.hooks.Trigger(ctx, hook.WorkflowBeforeStart, hook.Event{
		ExecutionID: execID,
		WorkflowID:  parsed.ID,
		State:       run.stateSnapshot(),
	})

	result, err := run.loop(ctx)

	// The bag is released whatever happened above; the final state was
	// already captured into the result.
	if destroyErr := e.states.Destroy(execID); destroyErr != nil {
		logger.Error("Failed to release execution state.", "error", destroyErr)
	}

	if err != nil {
		logger.Warn("Execution finished with failure.", "status", result.Status.String(), "error", err)
		return result, err
	}
	logger.Info("Execution completed.", "steps", len(result.Trace), "duration", result.Duration)
	return result, nil
}

// run is the per-execution scratch space of the step loop.
type run struct {
	engine  *Engine
	parsed  *workflow.ParsedWorkflow
	execID  string
	started time.Time
	trace   []StepTrace
}

func (r *run) loop(ctx context.Context) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	cursor := 0
	iterations := 0

	for cursor >= 0 {
		iterations++
		if iterations > r.engine.maxIterations {
			err := &LoopLimitError{ExecutionID: r.execID, Iterations: r.engine.maxIterations}
			return r.fail(ctx, LoopLimitExceeded, "", err), err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			err := &ExecutionError{ExecutionID: r.execID, Cause: fmt.Errorf("execution timed out: %w", ctxErr)}
			return r.fail(ctx, Failed, "", err), err
		}

		step := r.parsed.Steps[cursor]
		stepStart := time.Now()
		logger.Debug("Executing step.", "index", step.Index, "nodeID", step.NodeID)

		r.engine.hooks.Trigger(ctx, hook.NodeBeforeExecute, hook.Event{
			ExecutionID: r.execID,
			WorkflowID:  r.parsed.ID,
			NodeID:      step.NodeID,
			State:       r.stateSnapshot(),
		})

		instance, err := r.engine.registry.Instance(step.NodeID)
		if err != nil {
			execErr := &ExecutionError{ExecutionID: r.execID, NodeID: step.NodeID, Cause: err}
			return r.fail(ctx, Failed, step.NodeID, execErr), execErr
		}

		ec := &node.ExecutionContext{
			ExecutionID: r.execID,
			WorkflowID:  r.parsed.ID,
			State:       &stateAccess{executionID: r.execID, states: r.engine.states},
		}

		edges, err := instance.Execute(ctx, ec, step.Config)
		if err != nil {
			execErr := &ExecutionError{ExecutionID: r.execID, NodeID: step.NodeID, Cause: err}
			return r.fail(ctx, Failed, step.NodeID, execErr), execErr
		}

		edge, routed, err := pickEdge(step, edges)
		if err != nil {
			execErr := &ExecutionError{ExecutionID: r.execID, NodeID: step.NodeID, Cause: err}
			return r.fail(ctx, Failed, step.NodeID, execErr), execErr
		}

		// Exactly one producer is invoked per node execution.
		payload, err := edges[edge]()
		if err != nil {
			execErr := &ExecutionError{ExecutionID: r.execID, NodeID: step.NodeID, Cause: fmt.Errorf("edge '%s' producer failed: %w", edge, err)}
			return r.fail(ctx, Failed, step.NodeID, execErr), execErr
		}
		if len(payload) > 0 {
			if err := r.engine.states.Update(r.execID, payload); err != nil {
				execErr := &ExecutionError{ExecutionID: r.execID, NodeID: step.NodeID, Cause: err}
				return r.fail(ctx, Failed, step.NodeID, execErr), execErr
			}
		}

		r.trace = append(r.trace, StepTrace{NodeID: step.NodeID, Edge: edge, Duration: time.Since(stepStart)})

		r.engine.hooks.Trigger(ctx, hook.NodeAfterExecute, hook.Event{
			ExecutionID: r.execID,
			WorkflowID:  r.parsed.ID,
			NodeID:      step.NodeID,
			Edge:        edge,
			State:       r.stateSnapshot(),
		})

		// An unrouted error edge fails the run after its payload was
		// merged, so state-at-failure carries the diagnostics.
		if edge == node.EdgeError && !routed {
			execErr := &ExecutionError{ExecutionID: r.execID, NodeID: step.NodeID, Cause: fmt.Errorf("node signaled an unhandled error edge")}
			return r.fail(ctx, Failed, step.NodeID, execErr), execErr
		}

		if routed {
			cursor = step.Edges[edge].Candidates[0]
		} else {
			cursor = step.Next
		}
	}

	final := r.stateSnapshot()
	result := &Result{
		ExecutionID: r.execID,
		Status:      Completed,
		FinalState:  final,
		Trace:       r.trace,
		Duration:    time.Since(r.started),
	}
	r.engine.hooks.Trigger(ctx, hook.WorkflowAfterEnd, hook.Event{
		ExecutionID: r.execID,
		WorkflowID:  r.parsed.ID,
		State:       final,
	})
	return result, nil
}

// fail assembles the failure result and fires the error hook with the
// state at failure for diagnostics.
func (r *run) fail(ctx context.Context, status Status, nodeID string, cause error) *Result {
	atFailure := r.stateSnapshot()
	r.engine.hooks.Trigger(ctx, hook.WorkflowError, hook.Event{
		ExecutionID: r.execID,
		WorkflowID:  r.parsed.ID,
		NodeID:      nodeID,
		State:       atFailure,
		Err:         cause,
	})
	return &Result{
		ExecutionID: r.execID,
		Status:      status,
		FinalState:  atFailure,
		Trace:       r.trace,
		Duration:    time.Since(r.started),
	}
}

func (r *run) stateSnapshot() map[string]any {
	snapshot, err := r.engine.states.Get(r.execID)
	if err != nil {
		return nil
	}
	return snapshot
}

// pickEdge decides which returned edge fired. A route declared by the step
// and matched by a returned key always wins. Otherwise a single returned
// key default-advances. When a node returns multiple keys with no matching
// route, the engine prefers "success", then the lexicographically smallest
// non-error key; a bare "error" key is never picked implicitly alongside
// alternatives, and an unroutable error-only map is reported by the caller
// after its payload is merged.
func pickEdge(step workflow.Step, edges node.EdgeMap) (string, bool, error) {
	if len(edges) == 0 {
		return "", false, fmt.Errorf("node returned no edges")
	}

	var matched []string
	for name := range edges {
		if _, declared := step.Edges[name]; declared {
			matched = append(matched, name)
		}
	}
	if len(matched) > 0 {
		return preferEdge(matched), true, nil
	}

	if len(edges) == 1 {
		for name := range edges {
			return name, false, nil
		}
	}

	var candidates []string
	for name := range edges {
		if name != node.EdgeError {
			candidates = append(candidates, name)
		}
	}
	if len(candidates) == 0 {
		// Multiple keys, all error: fire the conventional one.
		return node.EdgeError, false, nil
	}
	return preferEdge(candidates), false, nil
}

// preferEdge applies the deterministic ordering: success first, then
// lexicographic, with error last.
func preferEdge(names []string) string {
	sort.Slice(names, func(i, j int) bool {
		switch {
		case names[i] == node.EdgeSuccess:
			return true
		case names[j] == node.EdgeSuccess:
			return false
		case names[i] == node.EdgeError:
			return false
		case names[j] == node.EdgeError:
			return true
		default:
			return names[i] < names[j]
		}
	})
	return names[0]
}
