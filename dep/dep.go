// Package dep defines the dependency records the build engine stores for
// each task: tagged file-read, file-write, and task-requirement entries,
// each carrying the stamp taken when the dependency was created.
package dep

import (
	"fmt"

	"github.com/vk/rebuild/stamp"
	"github.com/vk/rebuild/task"
)

// Dependency is a single recorded dependency of a task, created as a side
// effect of the task's execution. Implementations are FileDependency and
// TaskDependency.
type Dependency interface {
	// String renders the dependency for logs and error messages.
	String() string

	sealed()
}

// FileDependency records that a task read (required) or wrote (provided) a
// file, together with the stamp taken at the moment of the read or write.
type FileDependency struct {
	Path    string
	Provide bool
	Stamper stamp.FileStamper
	Stamp   stamp.FileStamp
}

// NewRequireFile stamps path under the given policy and returns the read
// dependency together with the file's contents. A nonexistent file yields
// nil contents and an absent stamp.
func NewRequireFile(path string, stamper stamp.FileStamper) (FileDependency, []byte, error) {
	s, err := stamper.Stamp(path)
	if err != nil {
		return FileDependency{}, nil, err
	}
	var content []byte
	if s.Present() {
		content, err = readFile(path)
		if err != nil {
			return FileDependency{}, nil, err
		}
	}
	return FileDependency{Path: path, Stamper: stamper, Stamp: s}, content, nil
}

// NewProvideFile stamps path under the given policy and returns the write
// dependency. Call this after writing the file, so that the stamp covers the
// written state.
func NewProvideFile(path string, stamper stamp.FileStamper) (FileDependency, error) {
	s, err := stamper.Stamp(path)
	if err != nil {
		return FileDependency{}, err
	}
	return FileDependency{Path: path, Provide: true, Stamper: stamper, Stamp: s}, nil
}

// IsConsistent re-stamps the file and compares against the recorded stamp.
// The new stamp is returned for tracker reporting.
func (d FileDependency) IsConsistent() (bool, stamp.FileStamp, error) {
	s, err := d.Stamper.Stamp(d.Path)
	if err != nil {
		return false, stamp.FileStamp{}, err
	}
	return s.Equal(d.Stamp), s, nil
}

func (d FileDependency) String() string {
	verb := "require"
	if d.Provide {
		verb = "provide"
	}
	return fmt.Sprintf("%s file %s [%s]", verb, d.Path, d.Stamp)
}

func (FileDependency) sealed() {}

// TaskDependency records that a task required another task, together with
// the stamp of the required task's result at that time.
type TaskDependency struct {
	Task    task.Task
	Stamper stamp.OutputStamper
	Stamp   stamp.OutputStamp
}

// NewRequireTask stamps the required task's result under the given policy.
func NewRequireTask(t task.Task, stamper stamp.OutputStamper, result task.Result) TaskDependency {
	return TaskDependency{Task: t, Stamper: stamper, Stamp: stamper.Stamp(result.Output, result.Err)}
}

// IsConsistentWith stamps an up-to-date result of the required task and
// compares against the recorded stamp. The caller supplies the result,
// obtained by recursively requiring the task.
func (d TaskDependency) IsConsistentWith(result task.Result) (bool, stamp.OutputStamp) {
	s := d.Stamper.Stamp(result.Output, result.Err)
	return s.Equal(d.Stamp), s
}

func (d TaskDependency) String() string {
	return fmt.Sprintf("require task %s [%s]", d.Task.Key(), d.Stamp)
}

func (TaskDependency) sealed() {}
