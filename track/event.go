package track

import (
	"github.com/vk/rebuild/dep"
	"github.com/vk/rebuild/stamp"
	"github.com/vk/rebuild/task"
)

// EventKind discriminates recorded build events.
type EventKind int

const (
	EventRequireStart EventKind = iota
	EventRequireEnd
	EventCheckTaskStart
	EventCheckDependencyStart
	EventCheckDependencyEnd
	EventCheckTaskEnd
	EventExecuteStart
	EventExecuteEnd
	EventUpToDate
	EventRequireFile
	EventProvideFile
	EventRequireTask
	EventViolation
)

// Event is one recorded build event. Fields beyond Kind are populated where
// they apply.
type Event struct {
	Kind       EventKind
	TaskKey    string
	Path       string
	Dependency dep.Dependency
	Consistent bool
	Output     any
	Err        error
}

// Events is a Tracker that records every event in memory, in order, with
// query helpers for test assertions.
type Events struct {
	events []Event
}

// NewEvents creates an empty recording tracker.
func NewEvents() *Events {
	return &Events{}
}

func (e *Events) record(ev Event) { e.events = append(e.events, ev) }

func (e *Events) RequireStart(t task.Task) {
	e.record(Event{Kind: EventRequireStart, TaskKey: t.Key()})
}

func (e *Events) RequireEnd(t task.Task, output any, err error) {
	e.record(Event{Kind: EventRequireEnd, TaskKey: t.Key(), Output: output, Err: err})
}

func (e *Events) CheckTaskStart(t task.Task) {
	e.record(Event{Kind: EventCheckTaskStart, TaskKey: t.Key()})
}

func (e *Events) CheckDependencyStart(t task.Task, d dep.Dependency) {
	e.record(Event{Kind: EventCheckDependencyStart, TaskKey: t.Key(), Dependency: d})
}

func (e *Events) CheckDependencyEnd(t task.Task, d dep.Dependency, consistent bool, err error) {
	e.record(Event{Kind: EventCheckDependencyEnd, TaskKey: t.Key(), Dependency: d, Consistent: consistent, Err: err})
}

func (e *Events) CheckTaskEnd(t task.Task, consistent bool) {
	e.record(Event{Kind: EventCheckTaskEnd, TaskKey: t.Key(), Consistent: consistent})
}

func (e *Events) ExecuteStart(t task.Task) {
	e.record(Event{Kind: EventExecuteStart, TaskKey: t.Key()})
}

func (e *Events) ExecuteEnd(t task.Task, output any, err error) {
	e.record(Event{Kind: EventExecuteEnd, TaskKey: t.Key(), Output: output, Err: err})
}

func (e *Events) UpToDate(t task.Task) {
	e.record(Event{Kind: EventUpToDate, TaskKey: t.Key()})
}

func (e *Events) RequireFile(d dep.FileDependency) {
	e.record(Event{Kind: EventRequireFile, Path: d.Path, Dependency: d})
}

func (e *Events) ProvideFile(d dep.FileDependency) {
	e.record(Event{Kind: EventProvideFile, Path: d.Path, Dependency: d})
}

func (e *Events) RequireTask(t task.Task, _ stamp.OutputStamper) {
	e.record(Event{Kind: EventRequireTask, TaskKey: t.Key()})
}

func (e *Events) Violation(err error) {
	e.record(Event{Kind: EventViolation, Err: err})
}

// All returns the recorded events in order.
func (e *Events) All() []Event { return e.events }

// Clear discards all recorded events.
func (e *Events) Clear() { e.events = nil }

// Executions returns how many times the task with the given key was
// executed.
func (e *Events) Executions(key string) int {
	n := 0
	for _, ev := range e.events {
		if ev.Kind == EventExecuteStart && ev.TaskKey == key {
			n++
		}
	}
	return n
}

// TotalExecutions returns how many task executions were recorded.
func (e *Events) TotalExecutions() int {
	n := 0
	for _, ev := range e.events {
		if ev.Kind == EventExecuteStart {
			n++
		}
	}
	return n
}

// Executed reports whether the task with the given key was executed at
// least once.
func (e *Events) Executed(key string) bool { return e.Executions(key) > 0 }

// FoundUpToDate reports whether the task with the given key was found
// consistent and served from cache.
func (e *Events) FoundUpToDate(key string) bool {
	for _, ev := range e.events {
		if ev.Kind == EventUpToDate && ev.TaskKey == key {
			return true
		}
	}
	return false
}

// RequiredFile reports whether a read dependency on path was recorded.
func (e *Events) RequiredFile(path string) bool {
	for _, ev := range e.events {
		if ev.Kind == EventRequireFile && ev.Path == path {
			return true
		}
	}
	return false
}

// Violations returns the recorded fatal errors, in order.
func (e *Events) Violations() []error {
	var errs []error
	for _, ev := range e.events {
		if ev.Kind == EventViolation {
			errs = append(errs, ev.Err)
		}
	}
	return errs
}
