package track

import (
	"github.com/vk/rebuild/dep"
	"github.com/vk/rebuild/stamp"
	"github.com/vk/rebuild/task"
)

// Noop is a Tracker that ignores every event. It is the engine's default.
type Noop struct{}

func (Noop) RequireStart(task.Task)                                    {}
func (Noop) RequireEnd(task.Task, any, error)                          {}
func (Noop) CheckTaskStart(task.Task)                                  {}
func (Noop) CheckDependencyStart(task.Task, dep.Dependency)            {}
func (Noop) CheckDependencyEnd(task.Task, dep.Dependency, bool, error) {}
func (Noop) CheckTaskEnd(task.Task, bool)                              {}
func (Noop) ExecuteStart(task.Task)                                    {}
func (Noop) ExecuteEnd(task.Task, any, error)                          {}
func (Noop) UpToDate(task.Task)                                        {}
func (Noop) RequireFile(dep.FileDependency)                            {}
func (Noop) ProvideFile(dep.FileDependency)                            {}
func (Noop) RequireTask(task.Task, stamp.OutputStamper)                {}
func (Noop) Violation(error)                                           {}
