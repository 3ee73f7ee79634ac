package dep

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/rebuild/stamp"
	"github.com/vk/rebuild/task"
)

// constTask is a minimal task for exercising task dependencies.
type constTask struct{ value string }

func (t constTask) Key() string                      { return "const(" + t.value + ")" }
func (t constTask) Execute(task.Context) (any, error) { return t.value, nil }

func TestRequireFileDependency(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	d, content, err := NewRequireFile(path, stamp.FileHash)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), content)
	assert.False(t, d.Provide)

	consistent, _, err := d.IsConsistent()
	require.NoError(t, err)
	assert.True(t, consistent)

	require.NoError(t, os.WriteFile(path, []byte("world"), 0o644))
	consistent, newStamp, err := d.IsConsistent()
	require.NoError(t, err)
	assert.False(t, consistent)
	assert.False(t, newStamp.Equal(d.Stamp))
}

func TestRequireAbsentFileDependency(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "missing.txt")

	d, content, err := NewRequireFile(path, stamp.FileModified)
	require.NoError(t, err)
	assert.Nil(t, content)
	assert.False(t, d.Stamp.Present())

	// Still consistent while the file stays absent.
	consistent, _, err := d.IsConsistent()
	require.NoError(t, err)
	assert.True(t, consistent)

	// Creating the file is a change.
	require.NoError(t, os.WriteFile(path, []byte("now"), 0o644))
	consistent, _, err = d.IsConsistent()
	require.NoError(t, err)
	assert.False(t, consistent)
}

func TestProvideFileDependency(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	require.NoError(t, os.WriteFile(path, []byte("written"), 0o644))

	d, err := NewProvideFile(path, stamp.FileHash)
	require.NoError(t, err)
	assert.True(t, d.Provide)

	consistent, _, err := d.IsConsistent()
	require.NoError(t, err)
	assert.True(t, consistent)

	// Changing a provided file behind the provider's back is inconsistent.
	require.NoError(t, os.WriteFile(path, []byte("tampered"), 0o644))
	consistent, _, err = d.IsConsistent()
	require.NoError(t, err)
	assert.False(t, consistent)
}

func TestTaskDependency(t *testing.T) {
	tk := constTask{value: "hello"}
	d := NewRequireTask(tk, stamp.OutputEquals, task.Result{Output: "hello"})

	consistent, _ := d.IsConsistentWith(task.Result{Output: "hello"})
	assert.True(t, consistent)

	consistent, newStamp := d.IsConsistentWith(task.Result{Output: "world"})
	assert.False(t, consistent)
	assert.False(t, newStamp.Equal(d.Stamp))

	// A task error is part of the stamped result.
	consistent, _ = d.IsConsistentWith(task.Result{Err: errors.New("boom")})
	assert.False(t, consistent)
}

func TestTaskDependencyInconsequential(t *testing.T) {
	tk := constTask{value: "hello"}
	d := NewRequireTask(tk, stamp.OutputInconsequential, task.Result{Output: "hello"})

	// Any result is consistent under the inconsequential policy.
	consistent, _ := d.IsConsistentWith(task.Result{Output: "entirely different"})
	assert.True(t, consistent)
}
