package rebuild

import (
	"errors"
	"fmt"
	"strings"
)

// CycleError reports that a task, directly or transitively, required itself.
// It aborts the enclosing require chain: a cyclic task graph is a defect in
// the host program, not a transient condition.
type CycleError struct {
	// TaskKey is the task whose requirement closed the cycle.
	TaskKey string
	// Chain is the dependency chain from TaskKey back to itself.
	Chain []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cyclic task dependency: requiring task %q closes the cycle %s",
		e.TaskKey, strings.Join(e.Chain, " -> "))
}

// SoundnessKind names the category of a detected soundness violation.
type SoundnessKind int

const (
	// OverlappingProvider: two distinct tasks registered as provider of the
	// same file.
	OverlappingProvider SoundnessKind = iota
	// HiddenDependency: a file was read without a task dependency on the
	// task that provides it, so incremental ordering between reader and
	// writer cannot be guaranteed.
	HiddenDependency
)

// SoundnessError reports a dependency-declaration mistake in the host's task
// graph that would silently corrupt incrementality if tolerated. It aborts
// the enclosing require chain.
type SoundnessError struct {
	Kind SoundnessKind
	// Path is the file over which the violation occurred.
	Path string
	// TaskKey is the task whose declaration triggered the detection.
	TaskKey string
	// OtherKey is the other involved task: the earlier provider for
	// OverlappingProvider, the providing or reading task for
	// HiddenDependency.
	OtherKey string
}

func (e *SoundnessError) Error() string {
	switch e.Kind {
	case OverlappingProvider:
		return fmt.Sprintf("overlapping provider: file %q is provided by task %q but already has provider %q",
			e.Path, e.TaskKey, e.OtherKey)
	case HiddenDependency:
		return fmt.Sprintf("hidden dependency: file %q links tasks %q and %q without a task dependency on its provider",
			e.Path, e.TaskKey, e.OtherKey)
	default:
		return fmt.Sprintf("soundness violation on file %q between tasks %q and %q", e.Path, e.TaskKey, e.OtherKey)
	}
}

// IsFatal reports whether err is a build-aborting violation (cycle or
// soundness error) rather than a task's own execution error. Task errors are
// data: they are cached and replayed to dependents. Fatal errors abort the
// session's require chain.
func IsFatal(err error) bool {
	var cycleErr *CycleError
	var soundErr *SoundnessError
	return errors.As(err, &cycleErr) || errors.As(err, &soundErr)
}
