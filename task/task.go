// Package task defines the contract between host-authored build tasks and
// the incremental build engine: the Task unit of computation and the Context
// capability surface a task uses to declare its dependencies while it runs.
package task

import (
	"io"

	"github.com/vk/rebuild/stamp"
)

// Task is the unit of computation in the build system. Implementations are
// immutable values: the task's identity is its Key, which must be stable and
// unique over the task's input fields. Two tasks with equal keys are the
// same task.
type Task interface {
	// Key returns the task's stable identity.
	Key() string
	// Execute runs the task. Every file or task the body consumes must be
	// declared through ctx at the moment it is consumed. A returned error is
	// the task's own result value: it is cached and replayed to dependents
	// like any other output, and does not abort the build.
	Execute(ctx Context) (any, error)
}

// Context is the capability surface handed to an executing task. It is only
// valid for the duration of that execution; tasks must not retain it.
type Context interface {
	// RequireTask returns the up-to-date output of t, executing it if any of
	// its recorded dependencies changed, and records a dependency from the
	// calling task to t using the engine's default output stamper. The
	// returned error is t's own result error, unless it is a fatal cycle or
	// soundness violation aborting the build.
	RequireTask(t Task) (any, error)
	// RequireTaskWithStamper is RequireTask with an explicit stamp policy.
	RequireTaskWithStamper(t Task, stamper stamp.OutputStamper) (any, error)

	// RequireFile records a read dependency on path, stamped at call time
	// with the engine's default file stamper, and returns the file's
	// contents. A nonexistent file is not an error: it yields nil contents
	// and an absent stamp, so the dependency also covers the file's
	// creation.
	RequireFile(path string) ([]byte, error)
	// RequireFileWithStamper is RequireFile with an explicit stamp policy.
	RequireFileWithStamper(path string, stamper stamp.FileStamper) ([]byte, error)

	// ProvideFile writes path through the given function and records a write
	// dependency, stamped after the write with the engine's default file
	// stamper. At most one task may provide a given path; a second provider,
	// or a provider whose file was already read by an unrelated task, is a
	// fatal soundness violation.
	ProvideFile(path string, write func(w io.Writer) error) error
	// ProvideFileWithStamper is ProvideFile with an explicit stamp policy.
	ProvideFileWithStamper(path string, stamper stamp.FileStamper, write func(w io.Writer) error) error
}

// Result is the recorded outcome of one task execution: the output value and
// the task's own error, if any. Both halves are data; a cached failure is
// replayed to dependents without re-execution for as long as the task stays
// consistent.
type Result struct {
	Output any
	Err    error
}
