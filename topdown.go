package rebuild

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vk/rebuild/dep"
	"github.com/vk/rebuild/stamp"
	"github.com/vk/rebuild/task"
)

// buildContext implements task.Context for one top-level require: the
// synchronous, depth-first top-down algorithm. It carries the stack of
// currently executing tasks so that dependencies can be attributed to the
// right task and cycles can be reported with their require chain.
type buildContext struct {
	session *Session
	logger  *slog.Logger
	// stack holds the keys of tasks currently executing, outermost first.
	// Tasks being consistency-checked are not on the stack.
	stack []string
}

func (c *buildContext) currentTask() (string, bool) {
	if len(c.stack) == 0 {
		return "", false
	}
	return c.stack[len(c.stack)-1], true
}

func (c *buildContext) RequireTask(t task.Task) (any, error) {
	return c.RequireTaskWithStamper(t, c.session.engine.outputStamper)
}

func (c *buildContext) RequireTaskWithStamper(t task.Task, stamper stamp.OutputStamper) (any, error) {
	res, err := c.require(t, stamper)
	if err != nil {
		return nil, err
	}
	return res.Output, res.Err
}

// require resolves t to an up-to-date result and, when called on behalf of
// an executing task, records the task dependency. The returned error is
// fatal-only; t's own execution error travels inside the result.
func (c *buildContext) require(t task.Task, stamper stamp.OutputStamper) (task.Result, error) {
	key := t.Key()
	st := c.session.store
	st.RegisterTask(t)
	c.session.tracker.RequireTask(t, stamper)

	cur, executing := c.currentTask()

	// Reserve the dependency edge before resolving, so that a cycle is
	// caught ahead of execution instead of recursing forever.
	reserved := false
	if executing {
		added, err := st.AddTaskEdge(cur, key)
		if err != nil {
			cycleErr := c.newCycleError(cur, key)
			c.session.tracker.Violation(cycleErr)
			return task.Result{}, cycleErr
		}
		reserved = added
	}

	res, err := c.makeConsistent(t)
	if err != nil {
		// The aborted pass never records the matching dependency, so a
		// freshly reserved edge must not outlive it.
		if reserved {
			st.RemoveTaskEdge(cur, key)
		}
		return task.Result{}, err
	}

	if executing {
		d := dep.NewRequireTask(t, stamper, res)
		if appendErr := st.AppendDependency(cur, d); appendErr != nil {
			// The edge was reserved above, so this cannot cycle.
			return task.Result{}, fmt.Errorf("recording task dependency %s -> %s: %w", cur, key, appendErr)
		}
	}
	return res, nil
}

// makeConsistent is the consistency check at the heart of the top-down
// algorithm: return the cached result if every recorded dependency is still
// consistent, in creation order, stopping at the first mismatch; otherwise
// reset and re-execute the task.
func (c *buildContext) makeConsistent(t task.Task) (task.Result, error) {
	key := t.Key()
	s := c.session

	// Each task is resolved at most once per session; the filesystem may
	// change mid-pass, so re-inspection would be unsound.
	if _, ok := s.visited[key]; ok {
		res, ok := s.store.Result(key)
		if !ok {
			return task.Result{}, fmt.Errorf("task %q visited this session but has no result", key)
		}
		return res, nil
	}

	s.tracker.CheckTaskStart(t)
	res, hasResult := s.store.Result(key)

	// A task with no cached result is new, and inconsistent by definition.
	consistent := hasResult
	if hasResult {
		for _, d := range s.store.Dependencies(key) {
			depConsistent, err := c.checkDependency(t, d)
			if err != nil {
				s.tracker.CheckTaskEnd(t, false)
				return task.Result{}, err
			}
			if !depConsistent {
				consistent = false
				break
			}
		}
	}
	s.tracker.CheckTaskEnd(t, consistent)

	if consistent {
		s.visited[key] = struct{}{}
		s.tracker.UpToDate(t)
		c.logger.Debug("Task consistent, returning cached result.", "task", key)
		return res, nil
	}

	// Inconsistent: drop the stale dependency list and re-execute under a
	// fresh recording context.
	s.store.ResetTask(key)
	c.stack = append(c.stack, key)
	s.tracker.ExecuteStart(t)
	c.logger.Debug("Executing task.", "task", key)

	output, execErr := t.Execute(c)

	s.tracker.ExecuteEnd(t, output, execErr)
	c.stack = c.stack[:len(c.stack)-1]

	// A fatal violation surfaced through the task body aborts the pass; it
	// must not be cached as the task's result.
	if IsFatal(execErr) {
		return task.Result{}, execErr
	}

	res = task.Result{Output: output, Err: execErr}
	s.store.SetResult(key, res)
	s.visited[key] = struct{}{}
	return res, nil
}

// checkDependency re-validates one recorded dependency. A file dependency is
// re-stamped; a task dependency recursively brings its target up to date, so
// indirect changes propagate. The recursion goes through makeConsistent, not
// require: a consistency check must never record dependencies or edges
// against the currently executing task, it only inspects stored state. A
// failing re-stamp counts as inconsistent: the re-execution will surface the
// underlying I/O problem to the task itself.
func (c *buildContext) checkDependency(t task.Task, d dep.Dependency) (bool, error) {
	s := c.session
	s.tracker.CheckDependencyStart(t, d)

	switch d := d.(type) {
	case dep.FileDependency:
		consistent, _, err := d.IsConsistent()
		s.tracker.CheckDependencyEnd(t, d, consistent, err)
		if err != nil {
			return false, nil
		}
		return consistent, nil
	case dep.TaskDependency:
		res, err := c.makeConsistent(d.Task)
		if err != nil {
			s.tracker.CheckDependencyEnd(t, d, false, err)
			return false, err
		}
		consistent, _ := d.IsConsistentWith(res)
		s.tracker.CheckDependencyEnd(t, d, consistent, nil)
		return consistent, nil
	default:
		s.tracker.CheckDependencyEnd(t, d, false, nil)
		return false, fmt.Errorf("unknown dependency kind %T", d)
	}
}

func (c *buildContext) RequireFile(path string) ([]byte, error) {
	return c.RequireFileWithStamper(path, c.session.engine.fileStamper)
}

func (c *buildContext) RequireFileWithStamper(path string, stamper stamp.FileStamper) ([]byte, error) {
	s := c.session
	d, content, err := dep.NewRequireFile(path, stamper)
	if err != nil {
		// An unreadable file is the requesting task's problem, not the
		// engine's.
		return nil, err
	}
	s.tracker.RequireFile(d)

	if cur, ok := c.currentTask(); ok {
		// A read of a path some other task provides is only sound when the
		// reader depends on the provider, which forces the write to happen
		// first.
		if provider, ok := s.store.Provider(path); ok && provider != cur {
			if !s.store.HasTransitiveDependency(cur, provider) {
				soundErr := &SoundnessError{Kind: HiddenDependency, Path: path, TaskKey: cur, OtherKey: provider}
				s.tracker.Violation(soundErr)
				return nil, soundErr
			}
		}
		if err := s.store.AppendDependency(cur, d); err != nil {
			return nil, fmt.Errorf("recording file dependency of %s on %s: %w", cur, path, err)
		}
	}
	return content, nil
}

func (c *buildContext) ProvideFile(path string, write func(w io.Writer) error) error {
	return c.ProvideFileWithStamper(path, c.session.engine.provideStamper, write)
}

func (c *buildContext) ProvideFileWithStamper(path string, stamper stamp.FileStamper, write func(w io.Writer) error) error {
	s := c.session
	cur, ok := c.currentTask()
	if !ok {
		return fmt.Errorf("providing file %s: no task is executing", path)
	}

	// Soundness checks come before the write, so a rejected provide does
	// not clobber the other task's output file.
	if prev, ok := s.store.Provider(path); ok && prev != cur {
		soundErr := &SoundnessError{Kind: OverlappingProvider, Path: path, TaskKey: cur, OtherKey: prev}
		s.tracker.Violation(soundErr)
		return soundErr
	}
	for _, reader := range s.store.Requirers(path) {
		if reader == cur {
			continue
		}
		if !s.store.HasTransitiveDependency(reader, cur) {
			soundErr := &SoundnessError{Kind: HiddenDependency, Path: path, TaskKey: cur, OtherKey: reader}
			s.tracker.Violation(soundErr)
			return soundErr
		}
	}

	if err := writeFile(path, write); err != nil {
		return err
	}

	// Stamp after the write, so the stamp covers the written state.
	d, err := dep.NewProvideFile(path, stamper)
	if err != nil {
		return err
	}
	s.tracker.ProvideFile(d)

	if err := s.store.SetProvider(path, cur); err != nil {
		return fmt.Errorf("registering provider of %s: %w", path, err)
	}
	if err := s.store.AppendDependency(cur, d); err != nil {
		return fmt.Errorf("recording provide dependency of %s on %s: %w", cur, path, err)
	}
	return nil
}

// newCycleError renders the cycle closed by cur requiring key, using the
// stored chain from key back to cur.
func (c *buildContext) newCycleError(cur, key string) *CycleError {
	chain := c.session.store.DependencyPath(key, cur)
	if chain == nil {
		chain = []string{key}
	}
	return &CycleError{TaskKey: key, Chain: append(chain, key)}
}

// writeFile creates path and streams the task's writer function into it.
func writeFile(path string, write func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
