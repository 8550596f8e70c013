package app

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/specialistvlad/nodeflow/internal/ctxlog"
	"github.com/specialistvlad/nodeflow/internal/engine"
	"github.com/specialistvlad/nodeflow/internal/fsutil"
	"github.com/specialistvlad/nodeflow/internal/runner"
	"github.com/specialistvlad/nodeflow/internal/workflow"
)

// Run loads, validates and executes every workflow document found at the
// configured path. Validation failures are printed per document before any
// execution starts; a single invalid document fails the whole invocation.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.HealthcheckPort > 0 {
		a.startHealthcheckServer(a.config.HealthcheckPort)
	}

	paths, err := fsutil.FindFilesByExtension(a.config.WorkflowPath, ".json")
	if err != nil {
		return fmt.Errorf("failed to locate workflow files: %w", err)
	}
	if len(paths) == 0 {
		a.logger.Warn("No workflow files found, execution not required.", "path", a.config.WorkflowPath)
		return nil
	}
	sort.Strings(paths)
	a.logger.Info("Workflow files located.", "count", len(paths))

	parser := workflow.NewParser(a.registry)
	jobs := make([]runner.Job, 0, len(paths))
	invalid := false
	for _, path := range paths {
		def, err := workflow.Load(path)
		if err != nil {
			fmt.Fprintf(a.outW, "%s: %v\n", path, err)
			invalid = true
			continue
		}
		parsed, err := parser.Parse(def)
		if err != nil {
			var parseErr *workflow.WorkflowParseError
			if errors.As(err, &parseErr) {
				for _, ve := range parseErr.Errors {
					fmt.Fprintf(a.outW, "%s: %s\n", path, ve.String())
				}
			} else {
				fmt.Fprintf(a.outW, "%s: %v\n", path, err)
			}
			invalid = true
			continue
		}
		jobs = append(jobs, runner.Job{Workflow: parsed})
	}
	if invalid {
		return errors.New("one or more workflow documents failed validation")
	}

	a.logger.Info("Starting concurrent execution...", "workflows", len(jobs))
	outcomes, err := a.runner.RunAll(ctx, jobs)
	if err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}

	failed := 0
	for i, outcome := range outcomes {
		result := outcome.Result
		if outcome.Err != nil {
			failed++
			status := engine.Failed
			if result != nil {
				status = result.Status
			}
			a.logger.Error("Workflow failed.", "path", paths[i], "status", status.String(), "error", outcome.Err)
			continue
		}
		a.logger.Info("Workflow completed.",
			"path", paths[i],
			"executionID", result.ExecutionID,
			"steps", len(result.Trace),
			"duration", result.Duration,
		)
	}
	a.logger.Info("Execution finished.", "total", len(outcomes), "failed", failed)

	if failed > 0 {
		return fmt.Errorf("%d of %d workflows failed", failed, len(outcomes))
	}
	return nil
}
