// Package rebuild is a programmatic incremental build engine: host programs
// express a build as interdependent, re-executable tasks, and the engine
// re-executes only the tasks invalidated by an external change, while
// guaranteeing that every invalidated task is re-executed.
//
// An Engine owns the persistent dependency store. Each build pass runs in a
// Session; requiring a task recursively checks its recorded dependencies in
// creation order, re-executing the task on the first inconsistency and
// returning the cached result otherwise. Tasks declare dependencies
// dynamically, through the task.Context they execute under, so the
// dependency graph is discovered rather than declared up front.
//
// The engine verifies the soundness of the task graph at run time: a task
// requiring itself directly or transitively is rejected with a CycleError,
// and two tasks providing the same file, or a file being read without a
// dependency on its provider, are rejected with a SoundnessError. These
// indicate defects in the host's task graph and abort the build; a task's
// own execution error, by contrast, is an ordinary result value that is
// cached and replayed to dependents.
package rebuild
