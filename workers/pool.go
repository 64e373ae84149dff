// Package workers dispatches worker sessions across a bounded pool.
package workers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gridware/wd-launcher/hooks"
	"github.com/gridware/wd-launcher/types"
)

// SessionLauncher bootstraps one remote browser session and drives the specs
// assigned to it. The actual automation client wiring lives behind this
// interface; the pool only consumes its result.
type SessionLauncher interface {
	LaunchSession(ctx context.Context, work Work) (types.WorkerResult, error)
}

// Work is one unit of dispatch: a capability running a group of spec files.
type Work struct {
	WorkerID   string
	Capability types.Capability
	Specs      []string
}

// BuildWork expands the run definition into work items, one per capability
// instance. Worker IDs follow the "<capability>-<instance>" convention.
func BuildWork(run *types.RunConfig) []Work {
	var items []Work
	for ci, cap := range run.Capabilities {
		for inst := 0; inst < cap.MaxInstances; inst++ {
			items = append(items, Work{
				WorkerID:   fmt.Sprintf("%d-%d", ci, inst),
				Capability: cap,
				Specs:      run.Specs,
			})
		}
	}
	return items
}

// Config contains pool configuration
type Config struct {
	Log              *zap.SugaredLogger
	Hooks            *hooks.Engine
	WorkerStartHooks any
	Session          SessionLauncher
	Concurrency      int
}

// Pool runs work items with bounded concurrency. Before each session the
// pre-worker-session hooks run; a severe hook failure aborts the whole
// dispatch.
type Pool struct {
	config Config
	log    *zap.SugaredLogger
}

// NewPool creates a worker pool from the given configuration.
func NewPool(cfg Config) (*Pool, error) {
	if cfg.Session == nil {
		return nil, fmt.Errorf("session launcher is required")
	}
	if cfg.Hooks == nil {
		return nil, fmt.Errorf("hook engine is required")
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.Log == nil {
		cfg.Log = zap.NewNop().Sugar()
	}
	return &Pool{
		config: cfg,
		log:    cfg.Log.With("component", "worker-pool"),
	}, nil
}

// workResult pairs a finished work item with its outcome.
type workResult struct {
	work   Work
	result types.WorkerResult
	err    error
}

// Run dispatches the work items and aggregates their results. The returned
// error is non-nil only for a fatal condition (a severe worker-start hook
// failure); ordinary session failures are reflected in the summary instead.
func (p *Pool) Run(ctx context.Context, runID string, items []Work) (*types.ResultSummary, error) {
	start := time.Now()
	summary := &types.ResultSummary{RunID: runID}

	if len(items) == 0 {
		p.log.Debugw("No work items to dispatch")
		return summary, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p.log.Infow("Dispatching worker sessions",
		"workers", len(items), "concurrency", p.config.Concurrency)

	workChan := make(chan Work, min(p.config.Concurrency*2, len(items)))
	resultChan := make(chan workResult, len(items))

	var wg sync.WaitGroup
	for i := 0; i < p.config.Concurrency; i++ {
		wg.Add(1)
		go p.worker(ctx, &wg, workChan, resultChan)
	}

	go func() {
		defer close(workChan)
		for _, work := range items {
			select {
			case workChan <- work:
			case <-ctx.Done():
				p.log.Debugw("Context cancelled while sending work items")
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	var fatal error
	for wr := range resultChan {
		if wr.err != nil {
			if fatal == nil {
				fatal = wr.err
				cancel()
			}
			continue
		}
		summary.Workers = append(summary.Workers, wr.result)
		summary.Total++
		if wr.result.Status == types.WorkerStatusPass {
			summary.Passed++
		} else {
			summary.Failed++
		}
	}
	summary.Duration = time.Since(start)

	if fatal != nil {
		return nil, fatal
	}

	p.log.Infow("Worker dispatch completed",
		"duration", summary.Duration,
		"total", summary.Total,
		"passed", summary.Passed,
		"failed", summary.Failed)

	return summary, nil
}

// worker processes work items until the channel closes or the context is
// cancelled.
func (p *Pool) worker(ctx context.Context, wg *sync.WaitGroup, workChan <-chan Work, resultChan chan<- workResult) {
	defer wg.Done()

	for {
		select {
		case work, ok := <-workChan:
			if !ok {
				return
			}
			resultChan <- p.launch(ctx, work)
		case <-ctx.Done():
			return
		}
	}
}

// launch runs the pre-worker-session hooks and then the session itself. A
// hook error here is by contract severe (ordinary hook failures never cross
// the engine boundary) and is forwarded as a fatal result.
func (p *Pool) launch(ctx context.Context, work Work) workResult {
	p.log.Debugw("Starting worker session",
		"workerID", work.WorkerID, "capability", work.Capability.DisplayName())

	if err := p.config.Hooks.RunOnWorkerStart(ctx, p.config.WorkerStartHooks, work.WorkerID, work.Capability, work.Specs); err != nil {
		return workResult{work: work, err: fmt.Errorf("worker %s start hooks: %w", work.WorkerID, err)}
	}

	start := time.Now()
	result, err := p.config.Session.LaunchSession(ctx, work)
	if err != nil {
		// Session bootstrap errors are per-worker failures, not fatal.
		p.log.Errorw("Worker session errored",
			"workerID", work.WorkerID, "error", err)
		result = types.WorkerResult{
			WorkerID:   work.WorkerID,
			Capability: work.Capability,
			Specs:      work.Specs,
			Status:     types.WorkerStatusError,
			Duration:   time.Since(start),
			Error:      err.Error(),
		}
	}
	return workResult{work: work, result: result}
}
