package hooks

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/gridware/wd-launcher/metrics"
	"github.com/gridware/wd-launcher/types"
)

// Lifecycle names passed to hooks logging and metrics.
const (
	LifecycleOnPrepare     = "onPrepare"
	LifecycleOnWorkerStart = "onWorkerStart"
	LifecycleOnComplete    = "onComplete"
)

// Engine executes hook sets at runner lifecycle points.
type Engine struct {
	log    *zap.SugaredLogger
	tracer trace.Tracer
}

// NewEngine creates a hook engine that logs failures through the given logger.
func NewEngine(log *zap.SugaredLogger) *Engine {
	return &Engine{
		log:    log,
		tracer: otel.Tracer("wd-launcher/hooks"),
	}
}

// RunOnPrepare executes the pre-launch hook set. The argument tuple is
// forwarded verbatim to every hook. Ordinary hook failures are logged and
// tolerated; only a severe failure surfaces as the returned error, and the
// caller must treat it as fatal.
func (e *Engine) RunOnPrepare(ctx context.Context, ref any, args ...any) error {
	_, err := e.run(ctx, LifecycleOnPrepare, ref, args)
	return err
}

// RunOnWorkerStart executes the pre-worker-session hook set with the same
// semantics as RunOnPrepare.
func (e *Engine) RunOnWorkerStart(ctx context.Context, ref any, args ...any) error {
	_, err := e.run(ctx, LifecycleOnWorkerStart, ref, args)
	return err
}

// RunOnComplete executes the post-run hook set. Every hook receives the exit
// code, the run configuration, the capability list and the results summary.
// The returned slice holds one marker per entry of the normalized hook set,
// positionally aligned with it: 1 for a hook that failed, 0 otherwise
// (skipped non-callable entries were never invoked and count as 0). A severe
// failure returns a nil slice and the error instead.
func (e *Engine) RunOnComplete(
	ctx context.Context,
	ref any,
	exitCode int,
	cfg *types.RunConfig,
	caps []types.Capability,
	results *types.ResultSummary,
) ([]int, error) {
	return e.run(ctx, LifecycleOnComplete, ref, []any{exitCode, cfg, caps, results})
}

// pendingHook tracks an asynchronous hook that has been started but not yet
// settled.
type pendingHook struct {
	index int
	done  <-chan error
}

// outcome pairs a settled asynchronous hook with its position.
type outcome struct {
	index int
	err   error
}

// run fans out to every entry of the hook set in declaration order and joins
// all pending asynchronous completions afterwards ("start all, then join
// all"). Synchronous hooks complete inline; a severe synchronous failure at
// position k means entries after k are never started. A severe asynchronous
// failure abandons the join without waiting for still-pending hooks.
func (e *Engine) run(ctx context.Context, lifecycle string, ref any, args []any) ([]int, error) {
	entries := Normalize(ref)
	markers := make([]int, len(entries))

	ctx, span := e.tracer.Start(ctx, "hooks."+lifecycle,
		trace.WithAttributes(attribute.Int("hooks.count", len(entries))))
	defer span.End()

	metrics.RecordHookSet(lifecycle, len(entries))

	var pending []pendingHook
	for i, entry := range entries {
		done, err, callable := invoke(ctx, entry, args)
		if !callable {
			e.log.Debugw("Skipping non-callable hook entry",
				"lifecycle", lifecycle, "hook", i)
			continue
		}
		if done != nil {
			pending = append(pending, pendingHook{index: i, done: done})
			continue
		}
		if err == nil {
			continue
		}
		if severe := e.recordFailure(span, lifecycle, i, err, markers); severe != nil {
			return nil, severe
		}
	}

	if len(pending) == 0 {
		return markers, nil
	}

	// Completion order is unconstrained; the buffered channel keeps the
	// forwarding goroutines from blocking if the join is abandoned early.
	settled := make(chan outcome, len(pending))
	for _, p := range pending {
		go func(p pendingHook) {
			settled <- outcome{index: p.index, err: <-p.done}
		}(p)
	}
	for range pending {
		out := <-settled
		if out.err == nil {
			continue
		}
		if severe := e.recordFailure(span, lifecycle, out.index, out.err, markers); severe != nil {
			return nil, severe
		}
	}

	return markers, nil
}

// recordFailure applies the escalation policy to a captured hook failure.
// Ordinary failures are logged, counted and marked; the returned error is
// non-nil only for severe failures, which terminate the lifecycle point.
func (e *Engine) recordFailure(span trace.Span, lifecycle string, index int, err error, markers []int) error {
	span.RecordError(err)
	if IsSevere(err) {
		metrics.RecordHookFailure(lifecycle, true)
		e.log.Errorw("Stopping runner due to severe service error in hook",
			"lifecycle", lifecycle, "hook", index, "error", err)
		return err
	}
	metrics.RecordHookFailure(lifecycle, false)
	e.log.Errorw("Service hook failed",
		"lifecycle", lifecycle, "hook", index, "error", err)
	markers[index] = 1
	return nil
}
