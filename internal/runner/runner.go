// Package runner executes workflows concurrently on a bounded goroutine
// pool, so a host can fire many executions without unbounded fan-out.
package runner

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/specialistvlad/nodeflow/internal/engine"
	"github.com/specialistvlad/nodeflow/internal/workflow"
)

// DefaultConcurrency is the pool size used when the host does not pick one.
const DefaultConcurrency = 8

// Job is one requested execution: a parsed plan plus its caller seed state.
type Job struct {
	Workflow *workflow.ParsedWorkflow
	Initial  map[string]any
}

// Outcome pairs an execution result with its terminal error, if any.
type Outcome struct {
	Result *engine.Result
	Err    error
}

// Runner schedules executions onto a fixed-size worker pool.
type Runner struct {
	engine *engine.Engine
	pool   *ants.Pool
}

// New creates a runner with the given pool size. Size zero or below falls
// back to DefaultConcurrency.
func New(eng *engine.Engine, size int) (*Runner, error) {
	if size <= 0 {
		size = DefaultConcurrency
	}
	pool, err := ants.NewPool(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	return &Runner{engine: eng, pool: pool}, nil
}

// Submit schedules one execution and returns a channel that delivers its
// single Outcome. The channel is buffered, so the caller may drop it.
func (r *Runner) Submit(ctx context.Context, job Job) (<-chan Outcome, error) {
	out := make(chan Outcome, 1)
	err := r.pool.Submit(func() {
		result, execErr := r.engine.Execute(ctx, job.Workflow, job.Initial)
		out <- Outcome{Result: result, Err: execErr}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to schedule execution: %w", err)
	}
	return out, nil
}

// RunAll executes every job and blocks until all finish. Outcomes are
// returned in job order regardless of completion order.
func (r *Runner) RunAll(ctx context.Context, jobs []Job) ([]Outcome, error) {
	outcomes := make([]Outcome, len(jobs))
	var wg sync.WaitGroup
	for i, job := range jobs {
		wg.Add(1)
		i, job := i, job
		err := r.pool.Submit(func() {
			defer wg.Done()
			result, execErr := r.engine.Execute(ctx, job.Workflow, job.Initial)
			outcomes[i] = Outcome{Result: result, Err: execErr}
		})
		if err != nil {
			wg.Done()
			outcomes[i] = Outcome{Err: fmt.Errorf("failed to schedule execution: %w", err)}
		}
	}
	wg.Wait()
	return outcomes, nil
}

// Running reports how many workers are currently busy.
func (r *Runner) Running() int { return r.pool.Running() }

// Close releases the pool. Pending submissions are rejected afterwards.
func (r *Runner) Close() { r.pool.Release() }
