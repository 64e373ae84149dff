// Package hooks implements the runner lifecycle hook engine.
//
// Service plugins and user configuration contribute hook callbacks that are
// executed at named lifecycle points (onPrepare, onWorkerStart, onComplete).
// The engine tolerates and isolates ordinary hook failures, runs asynchronous
// hooks concurrently, and escalates severe service errors to the caller so the
// whole run can be aborted.
package hooks
