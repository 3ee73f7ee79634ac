package track

import (
	"log/slog"

	"github.com/vk/rebuild/dep"
	"github.com/vk/rebuild/stamp"
	"github.com/vk/rebuild/task"
)

// Logging is a Tracker that serializes build events to a slog.Logger, for
// interactive debugging and build logs. Consistency-check details are logged
// at debug level; executions, up-to-date hits and violations at info and
// error levels.
type Logging struct {
	logger *slog.Logger
}

// NewLogging creates a logging tracker over the given logger.
func NewLogging(logger *slog.Logger) *Logging {
	return &Logging{logger: logger}
}

func (l *Logging) RequireStart(t task.Task) {
	l.logger.Info("Require started.", "task", t.Key())
}

func (l *Logging) RequireEnd(t task.Task, output any, err error) {
	if err != nil {
		l.logger.Info("Require finished with task error.", "task", t.Key(), "error", err)
		return
	}
	l.logger.Info("Require finished.", "task", t.Key(), "output", output)
}

func (l *Logging) CheckTaskStart(t task.Task) {
	l.logger.Debug("Checking task consistency.", "task", t.Key())
}

func (l *Logging) CheckDependencyStart(t task.Task, d dep.Dependency) {
	l.logger.Debug("Checking dependency.", "task", t.Key(), "dependency", d.String())
}

func (l *Logging) CheckDependencyEnd(t task.Task, d dep.Dependency, consistent bool, err error) {
	if err != nil {
		l.logger.Debug("Dependency check failed.", "task", t.Key(), "dependency", d.String(), "error", err)
		return
	}
	l.logger.Debug("Dependency checked.", "task", t.Key(), "dependency", d.String(), "consistent", consistent)
}

func (l *Logging) CheckTaskEnd(t task.Task, consistent bool) {
	l.logger.Debug("Task consistency check finished.", "task", t.Key(), "consistent", consistent)
}

func (l *Logging) ExecuteStart(t task.Task) {
	l.logger.Info("Executing task.", "task", t.Key())
}

func (l *Logging) ExecuteEnd(t task.Task, output any, err error) {
	if err != nil {
		l.logger.Info("Task execution finished with task error.", "task", t.Key(), "error", err)
		return
	}
	l.logger.Info("Task execution finished.", "task", t.Key(), "output", output)
}

func (l *Logging) UpToDate(t task.Task) {
	l.logger.Info("Task up to date.", "task", t.Key())
}

func (l *Logging) RequireFile(d dep.FileDependency) {
	l.logger.Debug("File required.", "path", d.Path, "stamp", d.Stamp.String())
}

func (l *Logging) ProvideFile(d dep.FileDependency) {
	l.logger.Debug("File provided.", "path", d.Path, "stamp", d.Stamp.String())
}

func (l *Logging) RequireTask(t task.Task, stamper stamp.OutputStamper) {
	l.logger.Debug("Task required.", "task", t.Key(), "stamper", stamper.String())
}

func (l *Logging) Violation(err error) {
	l.logger.Error("Build invariant violated.", "error", err)
}
