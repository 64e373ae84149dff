package hooks

import (
	"context"
	"fmt"
)

// HookFunc is the canonical synchronous hook signature. The argument tuple is
// determined by the lifecycle point and forwarded verbatim to every hook.
type HookFunc func(ctx context.Context, args ...any) error

// AsyncHookFunc is the asynchronous hook signature. The call is expected to
// start its work and return immediately; the returned channel settles with the
// hook's outcome. The engine joins all pending completions of a lifecycle
// point together, so independent asynchronous hooks overlap in time.
type AsyncHookFunc func(ctx context.Context, args ...any) <-chan error

// Normalize converts a hook reference into an ordered entry list. A reference
// may be absent (nil), a single callable, or a slice of entries. No input is
// rejected here; non-callable entries are preserved positionally so the
// invoker can apply a uniform skip rule.
func Normalize(ref any) []any {
	switch v := ref.(type) {
	case nil:
		return nil
	case []any:
		return v
	case []HookFunc:
		entries := make([]any, len(v))
		for i, h := range v {
			entries[i] = h
		}
		return entries
	case []AsyncHookFunc:
		entries := make([]any, len(v))
		for i, h := range v {
			entries[i] = h
		}
		return entries
	case []func(context.Context, ...any) error:
		entries := make([]any, len(v))
		for i, h := range v {
			entries[i] = HookFunc(h)
		}
		return entries
	case []func(context.Context, ...any) <-chan error:
		entries := make([]any, len(v))
		for i, h := range v {
			entries[i] = AsyncHookFunc(h)
		}
		return entries
	default:
		return []any{ref}
	}
}

// invoke executes a single entry with the lifecycle's argument tuple and
// produces exactly one of three results:
//   - callable=false: the entry is not a supported callable and was skipped
//   - pending!=nil: an asynchronous hook was started; the channel settles later
//   - otherwise: a synchronous hook completed inline with err as its outcome
//
// Panics inside a hook body never escape; they become that hook's failure.
func invoke(ctx context.Context, entry any, args []any) (pending <-chan error, err error, callable bool) {
	switch fn := entry.(type) {
	case HookFunc:
		return nil, callRecovered(func() error { return fn(ctx, args...) }), true
	case func(context.Context, ...any) error:
		return nil, callRecovered(func() error { return fn(ctx, args...) }), true
	case AsyncHookFunc:
		return startRecovered(func() <-chan error { return fn(ctx, args...) })
	case func(context.Context, ...any) <-chan error:
		return startRecovered(func() <-chan error { return fn(ctx, args...) })
	case func(...any) error:
		return nil, callRecovered(func() error { return fn(args...) }), true
	case func() error:
		return nil, callRecovered(fn), true
	case func():
		return nil, callRecovered(func() error { fn(); return nil }), true
	default:
		return nil, nil, false
	}
}

// callRecovered runs a synchronous hook body, converting a panic into an
// ordinary hook failure.
func callRecovered(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("hook panicked: %v", r)
		}
	}()
	return fn()
}

// startRecovered starts an asynchronous hook. A panic while starting (before
// the hook hands back its completion channel) is a synchronous failure; a nil
// channel is treated as an already-completed hook.
func startRecovered(start func() <-chan error) (pending <-chan error, err error, callable bool) {
	defer func() {
		if r := recover(); r != nil {
			pending = nil
			err = fmt.Errorf("hook panicked: %v", r)
			callable = true
		}
	}()
	return start(), nil, true
}
