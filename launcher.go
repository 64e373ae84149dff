// Package launcher wires the wd-launcher run lifecycle: resolve the run
// definition, execute the pre-launch hooks, dispatch worker sessions, execute
// the post-run hooks and report the aggregate outcome.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/gridware/wd-launcher/exitcodes"
	"github.com/gridware/wd-launcher/hooks"
	"github.com/gridware/wd-launcher/metrics"
	"github.com/gridware/wd-launcher/registry"
	"github.com/gridware/wd-launcher/types"
	"github.com/gridware/wd-launcher/workers"
)

// Launcher is the test-runner process manager. It owns the run lifecycle and
// treats severe hook escalations as fatal, run-aborting conditions.
type Launcher struct {
	ctx      context.Context
	config   *Config
	version  string
	registry *registry.Registry
	engine   *hooks.Engine
	session  workers.SessionLauncher
	result   *types.ResultSummary
	markers  []int

	running atomic.Bool
	done    chan struct{}
	wg      sync.WaitGroup
	tracer  trace.Tracer

	shutdownCallback func(error) // Callback to signal application shutdown
}

// Option customizes launcher construction.
type Option func(*options)

type options struct {
	factories map[string]registry.Factory
	session   workers.SessionLauncher
}

// WithServiceFactories registers the named service plugins available to the
// run definition.
func WithServiceFactories(factories map[string]registry.Factory) Option {
	return func(o *options) { o.factories = factories }
}

// WithSessionLauncher supplies the browser session bootstrap used for each
// worker.
func WithSessionLauncher(s workers.SessionLauncher) Option {
	return func(o *options) { o.session = s }
}

func New(ctx context.Context, config *Config, version string, shutdownCallback func(error), opts ...Option) (*Launcher, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	config.Log.Debugw("Creating launcher with config",
		"runConfig", config.RunConfigPath,
		"runInterval", config.RunInterval,
		"runOnce", config.RunOnce,
		"dryRun", config.DryRun)

	reg, err := registry.NewRegistry(registry.Config{
		Log:             config.Log,
		RunConfigFile:   config.RunConfigPath,
		Factories:       o.factories,
		LauncherVersion: version,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create registry: %w", err)
	}

	session := o.session
	if session == nil {
		if !config.DryRun {
			config.Log.Warnw("No session launcher configured, running in dry-run mode")
		}
		session = &workers.DryRunLauncher{Log: config.Log}
	}

	return &Launcher{
		ctx:              ctx,
		config:           config,
		version:          version,
		registry:         reg,
		engine:           hooks.NewEngine(config.Log),
		session:          session,
		done:             make(chan struct{}),
		tracer:           otel.Tracer("wd-launcher"),
		shutdownCallback: shutdownCallback,
	}, nil
}

// Start runs the launcher lifecycle, once or periodically at the configured
// interval.
func (l *Launcher) Start(ctx context.Context) error {
	// Panics anywhere in the lifecycle are runtime errors, exit code 2.
	defer func() {
		if r := recover(); r != nil {
			l.config.Log.Errorw("Runtime error occurred", "error", r)
			os.Exit(exitcodes.RuntimeErr)
		}
	}()

	l.ctx = ctx
	l.done = make(chan struct{})
	l.running.Store(true)

	if l.config.RunOnce {
		l.config.Log.Infow("Starting wd-launcher in run-once mode")
	} else {
		l.config.Log.Infow("Starting wd-launcher in continuous mode", "interval", l.config.RunInterval)
	}

	err := l.runLifecycle()
	if err != nil {
		l.config.Log.Errorw("Runtime error running lifecycle", "error", err)
		return err
	}

	if l.config.RunOnce {
		l.config.Log.Infow("Run completed, exiting (run-once mode)")

		if l.result != nil && l.result.Status() == types.WorkerStatusFail {
			l.config.Log.Warnw("Run completed with failures, returning exit code 1")
			return NewRunFailureError(l.result.String())
		}

		go func() {
			l.shutdownCallback(nil)
		}()
		return nil
	}

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		l.config.Log.Debugw("Starting periodic run goroutine", "interval", l.config.RunInterval)

		for {
			select {
			case <-time.After(l.config.RunInterval):
				if !l.running.Load() {
					l.config.Log.Debugw("Service stopped, exiting periodic runner")
					return
				}

				l.config.Log.Infow("Running periodic lifecycle")
				if err := l.runLifecycle(); err != nil {
					l.config.Log.Errorw("Error running periodic lifecycle", "error", err)
				}

			case <-l.done:
				l.config.Log.Debugw("Done signal received, stopping periodic runner")
				return

			case <-ctx.Done():
				l.config.Log.Debugw("Context canceled, stopping periodic runner")
				l.running.Store(false)
				return
			}
		}
	}()
	l.config.Log.Debugw("wd-launcher started successfully")
	return nil
}

// runLifecycle executes one full run: pre-launch hooks, worker dispatch,
// post-run hooks, result reporting. The returned error is always a
// RuntimeError; worker session failures surface through the stored result
// instead.
func (l *Launcher) runLifecycle() error {
	runID := uuid.New().String()
	run := l.registry.RunConfig()

	ctx, span := l.tracer.Start(l.ctx, "launcher.run",
		trace.WithAttributes(attribute.String("run.id", runID)))
	defer span.End()

	l.config.Log.Infow("Starting run", "run_id", runID, "version", l.version)

	if err := l.engine.RunOnPrepare(ctx, l.registry.PrepareHooks(), run, run.Capabilities); err != nil {
		span.RecordError(err)
		metrics.RecordErrorDetails("prepare hooks failed", err)
		return NewRuntimeError(err)
	}

	concurrency := run.MaxWorkers
	if l.config.MaxWorkers > 0 {
		concurrency = l.config.MaxWorkers
	}

	pool, err := workers.NewPool(workers.Config{
		Log:              l.config.Log,
		Hooks:            l.engine,
		WorkerStartHooks: l.registry.WorkerStartHooks(),
		Session:          l.session,
		Concurrency:      concurrency,
	})
	if err != nil {
		return NewRuntimeError(fmt.Errorf("failed to create worker pool: %w", err))
	}

	summary, err := pool.Run(ctx, runID, workers.BuildWork(run))
	if err != nil {
		span.RecordError(err)
		metrics.RecordErrorDetails("worker dispatch failed", err)
		return NewRuntimeError(err)
	}
	l.result = summary

	exitCode := exitcodes.Success
	if summary.Failed > 0 {
		exitCode = exitcodes.RunFailure
	}

	markers, err := l.engine.RunOnComplete(ctx, l.registry.CompleteHooks(), exitCode, run, run.Capabilities, summary)
	if err != nil {
		span.RecordError(err)
		metrics.RecordErrorDetails("complete hooks failed", err)
		return NewRuntimeError(err)
	}
	l.markers = markers

	// Post-run hook failures are advisory: they are visible in the summary
	// but do not by themselves change the exit status.
	for i, marker := range markers {
		if marker != 0 {
			l.config.Log.Warnw("Post-run hook reported a failure", "hook", i)
		}
	}

	l.printResultsTable(runID)
	fmt.Println(summary.String())

	metrics.RecordRun(runID, summary.Status().String(), summary.Passed, summary.Failed, summary.Duration)
	l.config.Log.Infow("Run completed", "run_id", runID, "status", summary.Status())
	return nil
}

// Result returns the summary of the most recent run, if any.
func (l *Launcher) Result() *types.ResultSummary {
	return l.result
}

// Stop stops the launcher service.
func (l *Launcher) Stop(ctx context.Context) error {
	l.config.Log.Infow("Stopping wd-launcher")

	if !l.running.Load() {
		l.config.Log.Debugw("Service already stopped, nothing to do")
		return nil
	}

	l.running.Store(false)
	close(l.done)

	l.config.Log.Infow("wd-launcher stopped successfully")
	return nil
}

// Stopped returns true if the launcher service is stopped.
func (l *Launcher) Stopped() bool {
	return !l.running.Load()
}
