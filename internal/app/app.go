package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/specialistvlad/nodeflow/internal/broadcast"
	"github.com/specialistvlad/nodeflow/internal/ctxlog"
	"github.com/specialistvlad/nodeflow/internal/engine"
	"github.com/specialistvlad/nodeflow/internal/hook"
	"github.com/specialistvlad/nodeflow/internal/registry"
	"github.com/specialistvlad/nodeflow/internal/runner"
	"github.com/specialistvlad/nodeflow/internal/state"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW        io.Writer
	logger      *slog.Logger
	config      *Config
	registry    *registry.Registry
	states      *state.Manager
	hooks       *hook.Manager
	engine      *engine.Engine
	runner      *runner.Runner
	broadcaster *broadcast.Broadcaster
}

// New is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger, registry, state
// manager and hook manager. Startup integrity failures panic; the cmd layer
// recovers them into a clean exit.
func New(outW io.Writer, cfg *Config, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		if err := mod.Register(reg); err != nil {
			// A module that cannot register is a programmer error.
			panic(fmt.Errorf("failed to register module: %w", err))
		}
	}
	logger.Debug("All node modules registered.", "count", reg.Size())

	if cfg.ModulesPath != "" {
		count, err := reg.DiscoverManifests(ctx, cfg.ModulesPath)
		if err != nil {
			panic(fmt.Errorf("failed to discover node manifests: %w", err))
		}
		logger.Debug("Node manifests discovered.", "count", count)
	}

	// A mismatch between manifests and compiled factories is fatal.
	if err := reg.ValidateManifests(ctx); err != nil {
		panic(err)
	}
	logger.Debug("Registry validation passed.")

	states := state.NewManager()
	hooks := hook.NewManager()
	eng := engine.New(reg, states, hooks)

	pool, err := runner.New(eng, cfg.Concurrency)
	if err != nil {
		panic(fmt.Errorf("failed to create runner: %w", err))
	}

	a := &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		registry: reg,
		states:   states,
		hooks:    hooks,
		engine:   eng,
		runner:   pool,
	}

	if cfg.EventsURL != "" {
		emitter, err := broadcast.NewSocketEmitter(ctx, cfg.EventsURL)
		if err != nil {
			// A dashboard being down must not block runs.
			logger.Warn("Event endpoint unreachable, continuing without broadcasting.", "error", err)
		} else {
			a.broadcaster = broadcast.New(emitter)
			a.broadcaster.Attach(hooks)
			logger.Info("Event broadcasting enabled.", "url", cfg.EventsURL)
		}
	}

	return a
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Hooks returns the application's hook manager so hosts can register
// listeners before running.
func (a *App) Hooks() *hook.Manager {
	return a.hooks
}

// Close releases the worker pool and the broadcast connection.
func (a *App) Close() error {
	a.runner.Close()
	if a.broadcaster != nil {
		return a.broadcaster.Close()
	}
	return nil
}
