package track

import (
	"github.com/vk/rebuild/dep"
	"github.com/vk/rebuild/stamp"
	"github.com/vk/rebuild/task"
)

// Composite is a Tracker that forwards every event to each of its children,
// in order. Useful for recording events while also logging them.
type Composite struct {
	trackers []Tracker
}

// NewComposite creates a fan-out tracker over the given children.
func NewComposite(trackers ...Tracker) *Composite {
	return &Composite{trackers: trackers}
}

func (c *Composite) RequireStart(t task.Task) {
	for _, tr := range c.trackers {
		tr.RequireStart(t)
	}
}

func (c *Composite) RequireEnd(t task.Task, output any, err error) {
	for _, tr := range c.trackers {
		tr.RequireEnd(t, output, err)
	}
}

func (c *Composite) CheckTaskStart(t task.Task) {
	for _, tr := range c.trackers {
		tr.CheckTaskStart(t)
	}
}

func (c *Composite) CheckDependencyStart(t task.Task, d dep.Dependency) {
	for _, tr := range c.trackers {
		tr.CheckDependencyStart(t, d)
	}
}

func (c *Composite) CheckDependencyEnd(t task.Task, d dep.Dependency, consistent bool, err error) {
	for _, tr := range c.trackers {
		tr.CheckDependencyEnd(t, d, consistent, err)
	}
}

func (c *Composite) CheckTaskEnd(t task.Task, consistent bool) {
	for _, tr := range c.trackers {
		tr.CheckTaskEnd(t, consistent)
	}
}

func (c *Composite) ExecuteStart(t task.Task) {
	for _, tr := range c.trackers {
		tr.ExecuteStart(t)
	}
}

func (c *Composite) ExecuteEnd(t task.Task, output any, err error) {
	for _, tr := range c.trackers {
		tr.ExecuteEnd(t, output, err)
	}
}

func (c *Composite) UpToDate(t task.Task) {
	for _, tr := range c.trackers {
		tr.UpToDate(t)
	}
}

func (c *Composite) RequireFile(d dep.FileDependency) {
	for _, tr := range c.trackers {
		tr.RequireFile(d)
	}
}

func (c *Composite) ProvideFile(d dep.FileDependency) {
	for _, tr := range c.trackers {
		tr.ProvideFile(d)
	}
}

func (c *Composite) RequireTask(t task.Task, stamper stamp.OutputStamper) {
	for _, tr := range c.trackers {
		tr.RequireTask(t, stamper)
	}
}

func (c *Composite) Violation(err error) {
	for _, tr := range c.trackers {
		tr.Violation(err)
	}
}
