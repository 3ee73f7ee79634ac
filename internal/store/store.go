// Package store holds the build engine's persistent dependency graph: cached
// task results, each task's ordered dependency list, the task-to-task edge
// index used for cycle rejection, and the bookkeeping of which task provides
// and which tasks require each file path.
//
// The store is owned by one engine and accessed by at most one session at a
// time; it does no locking of its own.
package store

import (
	"errors"
	"sort"

	"github.com/vk/rebuild/dep"
	"github.com/vk/rebuild/task"
)

// ErrCycle is returned when inserting a task edge would close a cycle in the
// task dependency graph. The graph is left untouched.
var ErrCycle = errors.New("edge would close a dependency cycle")

// ErrDuplicateProvider is returned when a second task registers as provider
// of a path that a different task already provides.
var ErrDuplicateProvider = errors.New("file already has a provider")

// Store is the persistent dependency graph and output cache, keyed by task
// key and file path.
type Store struct {
	tasks     map[string]task.Task
	results   map[string]task.Result
	deps      map[string][]dep.Dependency
	taskEdges map[string]map[string]struct{}
	providers map[string]string
	requirers map[string]map[string]struct{}
}

// New creates an empty store.
func New() *Store {
	return &Store{
		tasks:     make(map[string]task.Task),
		results:   make(map[string]task.Result),
		deps:      make(map[string][]dep.Dependency),
		taskEdges: make(map[string]map[string]struct{}),
		providers: make(map[string]string),
		requirers: make(map[string]map[string]struct{}),
	}
}

// RegisterTask records the task value behind a key, so that stored
// dependencies can be re-required and error messages can name tasks. It is
// idempotent: the first registration wins.
func (s *Store) RegisterTask(t task.Task) {
	key := t.Key()
	if _, ok := s.tasks[key]; !ok {
		s.tasks[key] = t
	}
}

// Task returns the registered task value for key.
func (s *Store) Task(key string) (task.Task, bool) {
	t, ok := s.tasks[key]
	return t, ok
}

// Result returns the cached result for key, if the task has executed before.
func (s *Store) Result(key string) (task.Result, bool) {
	r, ok := s.results[key]
	return r, ok
}

// SetResult caches the result for key, replacing any previous value.
func (s *Store) SetResult(key string, r task.Result) {
	s.results[key] = r
}

// Dependencies returns key's recorded dependencies in creation order. The
// returned slice is owned by the store; callers must not mutate it.
func (s *Store) Dependencies(key string) []dep.Dependency {
	return s.deps[key]
}

// AddTaskEdge inserts a task-requirement edge from src to dst, rejecting the
// insertion with ErrCycle if it would close a cycle. The returned bool
// reports whether the edge was newly inserted; inserting an existing edge is
// a no-op. The edge index backs cycle rejection ahead of the actual
// dependency record, so a requirement can be reserved before the required
// task runs.
func (s *Store) AddTaskEdge(src, dst string) (bool, error) {
	if edges, ok := s.taskEdges[src]; ok {
		if _, ok := edges[dst]; ok {
			return false, nil
		}
	}
	if src == dst || s.HasTransitiveDependency(dst, src) {
		return false, ErrCycle
	}
	if s.taskEdges[src] == nil {
		s.taskEdges[src] = make(map[string]struct{})
	}
	s.taskEdges[src][dst] = struct{}{}
	return true, nil
}

// RemoveTaskEdge deletes the edge from src to dst, if present. It exists so
// that a reservation made through AddTaskEdge can be rolled back when the
// matching dependency record never materializes.
func (s *Store) RemoveTaskEdge(src, dst string) {
	edges, ok := s.taskEdges[src]
	if !ok {
		return
	}
	delete(edges, dst)
	if len(edges) == 0 {
		delete(s.taskEdges, src)
	}
}

// AppendDependency appends d to src's ordered dependency list. A task
// dependency also inserts the corresponding edge, failing with ErrCycle
// before any mutation if it would close a cycle; a file read dependency also
// indexes src as a requirer of the path.
func (s *Store) AppendDependency(src string, d dep.Dependency) error {
	switch d := d.(type) {
	case dep.TaskDependency:
		if _, err := s.AddTaskEdge(src, d.Task.Key()); err != nil {
			return err
		}
	case dep.FileDependency:
		if !d.Provide {
			if s.requirers[d.Path] == nil {
				s.requirers[d.Path] = make(map[string]struct{})
			}
			s.requirers[d.Path][src] = struct{}{}
		}
	}
	s.deps[src] = append(s.deps[src], d)
	return nil
}

// HasTransitiveDependency reports whether src directly or transitively
// requires dst through task edges.
func (s *Store) HasTransitiveDependency(src, dst string) bool {
	return s.findPath(src, dst, nil) != nil
}

// DependencyPath returns the chain of task keys from src to dst through task
// edges, inclusive of both ends, or nil if no path exists. Used to render
// cycle errors.
func (s *Store) DependencyPath(src, dst string) []string {
	return s.findPath(src, dst, nil)
}

func (s *Store) findPath(src, dst string, seen map[string]struct{}) []string {
	if src == dst {
		return []string{src}
	}
	if seen == nil {
		seen = make(map[string]struct{})
	}
	seen[src] = struct{}{}

	// Deterministic traversal order keeps error messages stable.
	next := make([]string, 0, len(s.taskEdges[src]))
	for key := range s.taskEdges[src] {
		next = append(next, key)
	}
	sort.Strings(next)

	for _, key := range next {
		if _, ok := seen[key]; ok {
			continue
		}
		if path := s.findPath(key, dst, seen); path != nil {
			return append([]string{src}, path...)
		}
	}
	return nil
}

// Provider returns the key of the task registered as provider of path.
func (s *Store) Provider(path string) (string, bool) {
	key, ok := s.providers[path]
	return key, ok
}

// SetProvider registers src as the provider of path. A different task
// already holding the registration is rejected with ErrDuplicateProvider;
// re-registration by the same task is a no-op.
func (s *Store) SetProvider(path, src string) error {
	if prev, ok := s.providers[path]; ok && prev != src {
		return ErrDuplicateProvider
	}
	s.providers[path] = src
	return nil
}

// Requirers returns the keys of all tasks holding a read dependency on
// path, sorted for determinism.
func (s *Store) Requirers(path string) []string {
	keys := make([]string, 0, len(s.requirers[path]))
	for key := range s.requirers[path] {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// ResetTask removes src's cached result, dependency list, task edges, and
// file bookkeeping, ahead of re-execution. Stale dependencies from a
// previous execution must not linger. Other tasks are left untouched.
func (s *Store) ResetTask(src string) {
	delete(s.results, src)
	delete(s.deps, src)
	delete(s.taskEdges, src)
	for path, keys := range s.requirers {
		delete(keys, src)
		if len(keys) == 0 {
			delete(s.requirers, path)
		}
	}
	for path, provider := range s.providers {
		if provider == src {
			delete(s.providers, path)
		}
	}
}
