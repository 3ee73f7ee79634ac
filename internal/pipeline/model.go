package pipeline

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/rebuild/task"
)

// hclPipelineFile is the top-level shape of a pipeline file for decoding.
type hclPipelineFile struct {
	Variables []*hclVariable `hcl:"variable,block"`
	Stages    []*hclStage    `hcl:"stage,block"`
	Settings  *hclSettings   `hcl:"settings,block"`
}

// hclVariable declares a pipeline variable with an optional default. A
// variable without a default must be supplied by the caller.
type hclVariable struct {
	Name    string    `hcl:"name,label"`
	Default cty.Value `hcl:"default,optional"`
}

// hclStage is a stage header. The kind-specific attributes stay undecoded in
// Remain until the kind is known.
type hclStage struct {
	Kind   string   `hcl:"kind,label"`
	Name   string   `hcl:"name,label"`
	Remain hcl.Body `hcl:",remain"`

	// dir is the directory of the declaring file; stage paths resolve
	// against it.
	dir string
}

// hclSettings carries pipeline-wide options.
type hclSettings struct {
	Target string `hcl:"target,optional"`
}

// Kind-specific stage attribute sets.

type readConfig struct {
	Path string `hcl:"path"`
}

type transformConfig struct {
	Input string `hcl:"input"`
}

type concatConfig struct {
	Inputs    []string `hcl:"inputs"`
	Separator string   `hcl:"separator,optional"`
}

type writeConfig struct {
	Input string `hcl:"input"`
	Path  string `hcl:"path"`
}

// Pipeline is a loaded pipeline: one build task per stage, addressable by
// stage name.
type Pipeline struct {
	tasks  map[string]task.Task
	order  []string
	target string
}

// Stages returns the stage names in declaration order.
func (p *Pipeline) Stages() []string {
	order := make([]string, len(p.order))
	copy(order, p.order)
	return order
}

// Task returns the build task for the named stage.
func (p *Pipeline) Task(name string) (task.Task, bool) {
	t, ok := p.tasks[name]
	return t, ok
}

// Target returns the name of the stage a run should require: the settings
// block's target, or the last declared stage.
func (p *Pipeline) Target() string { return p.target }

// TargetTask returns the build task of the target stage.
func (p *Pipeline) TargetTask() task.Task { return p.tasks[p.target] }

// buildEvalContext merges declared defaults with caller overrides into the
// var scope stage expressions evaluate against.
func buildEvalContext(variables []*hclVariable, overrides map[string]string) (*hcl.EvalContext, error) {
	vals := make(map[string]cty.Value, len(variables))
	for _, v := range variables {
		if _, dup := vals[v.Name]; dup {
			return nil, fmt.Errorf("variable %q declared twice", v.Name)
		}
		vals[v.Name] = v.Default
	}
	for name, raw := range overrides {
		if _, ok := vals[name]; !ok {
			return nil, fmt.Errorf("override for undeclared variable %q", name)
		}
		vals[name] = cty.StringVal(raw)
	}
	for name, val := range vals {
		if val == cty.NilVal || val.IsNull() {
			return nil, fmt.Errorf("variable %q has no default and no override", name)
		}
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"var": cty.ObjectVal(vals)},
	}, nil
}
