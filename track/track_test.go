package track

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/rebuild/dep"
	"github.com/vk/rebuild/stamp"
	"github.com/vk/rebuild/task"
)

type fakeTask struct{ key string }

func (t fakeTask) Key() string                       { return t.key }
func (t fakeTask) Execute(task.Context) (any, error) { return nil, nil }

func TestEventsRecordsInOrder(t *testing.T) {
	e := NewEvents()
	tk := fakeTask{key: "a"}

	e.RequireStart(tk)
	e.ExecuteStart(tk)
	e.ExecuteEnd(tk, "out", nil)
	e.RequireEnd(tk, "out", nil)

	kinds := make([]EventKind, 0, len(e.All()))
	for _, ev := range e.All() {
		kinds = append(kinds, ev.Kind)
	}
	assert.Equal(t, []EventKind{EventRequireStart, EventExecuteStart, EventExecuteEnd, EventRequireEnd}, kinds)
}

func TestEventsQueries(t *testing.T) {
	e := NewEvents()
	a, b := fakeTask{key: "a"}, fakeTask{key: "b"}

	e.ExecuteStart(a)
	e.ExecuteEnd(a, nil, nil)
	e.ExecuteStart(a)
	e.ExecuteEnd(a, nil, nil)
	e.UpToDate(b)
	e.RequireFile(dep.FileDependency{Path: "in.txt"})
	e.Violation(errors.New("boom"))

	assert.Equal(t, 2, e.Executions("a"))
	assert.Equal(t, 0, e.Executions("b"))
	assert.Equal(t, 2, e.TotalExecutions())
	assert.True(t, e.Executed("a"))
	assert.False(t, e.Executed("b"))
	assert.True(t, e.FoundUpToDate("b"))
	assert.False(t, e.FoundUpToDate("a"))
	assert.True(t, e.RequiredFile("in.txt"))
	assert.False(t, e.RequiredFile("other.txt"))
	require.Len(t, e.Violations(), 1)
	assert.EqualError(t, e.Violations()[0], "boom")

	e.Clear()
	assert.Empty(t, e.All())
}

func TestCompositeFansOut(t *testing.T) {
	first, second := NewEvents(), NewEvents()
	c := NewComposite(first, second)
	tk := fakeTask{key: "a"}

	c.ExecuteStart(tk)
	c.ExecuteEnd(tk, nil, nil)
	c.UpToDate(tk)

	assert.Equal(t, 1, first.Executions("a"))
	assert.Equal(t, 1, second.Executions("a"))
	assert.True(t, first.FoundUpToDate("a"))
	assert.True(t, second.FoundUpToDate("a"))
}

func TestLoggingWritesEvents(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	l := NewLogging(logger)
	tk := fakeTask{key: "compile"}

	l.RequireStart(tk)
	l.ExecuteStart(tk)
	l.ExecuteEnd(tk, "done", nil)
	l.RequireTask(tk, stamp.OutputEquals)
	l.Violation(errors.New("cycle"))

	out := buf.String()
	assert.Contains(t, out, "compile")
	assert.Contains(t, out, "Executing task.")
	assert.Contains(t, out, "Build invariant violated.")
}

func TestNoopImplementsTracker(t *testing.T) {
	var _ Tracker = Noop{}
	var _ Tracker = NewLogging(slog.Default())
	var _ Tracker = NewEvents()
	var _ Tracker = NewComposite()
}
