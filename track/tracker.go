// Package track defines the observer hook the build engine invokes on build
// events, plus the stock implementations: a no-op, a slog-backed logging
// tracker for build logs, an in-memory event tracker for test assertions,
// and a composite fan-out.
//
// Trackers are pure observers. They must never influence build outcomes.
package track

import (
	"github.com/vk/rebuild/dep"
	"github.com/vk/rebuild/stamp"
	"github.com/vk/rebuild/task"
)

// Tracker receives build events at well-defined points of a session. The
// engine calls it from a single goroutine; implementations need no internal
// locking unless they are shared across engines.
type Tracker interface {
	// RequireStart and RequireEnd bracket one top-level Session.Require.
	RequireStart(t task.Task)
	RequireEnd(t task.Task, output any, err error)

	// CheckTaskStart and CheckTaskEnd bracket the consistency check of one
	// task; CheckDependencyStart/End bracket each recorded dependency
	// within it, in creation order.
	CheckTaskStart(t task.Task)
	CheckDependencyStart(t task.Task, d dep.Dependency)
	CheckDependencyEnd(t task.Task, d dep.Dependency, consistent bool, err error)
	CheckTaskEnd(t task.Task, consistent bool)

	// ExecuteStart and ExecuteEnd bracket one task execution.
	ExecuteStart(t task.Task)
	ExecuteEnd(t task.Task, output any, err error)
	// UpToDate fires instead of ExecuteStart/End when a task was found
	// consistent and its cached output was returned.
	UpToDate(t task.Task)

	// RequireFile, ProvideFile and RequireTask fire when an executing task
	// declares the corresponding dependency.
	RequireFile(d dep.FileDependency)
	ProvideFile(d dep.FileDependency)
	RequireTask(t task.Task, stamper stamp.OutputStamper)

	// Violation fires when a fatal cycle or soundness error is detected,
	// immediately before it aborts the session's require chain.
	Violation(err error)
}
