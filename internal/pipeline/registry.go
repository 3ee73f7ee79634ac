package pipeline

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"

	"github.com/vk/rebuild/task"
)

// kindDecoder lowers one stage of its kind into a build task. resolve maps a
// referenced stage name to its task, lowering it first if needed.
type kindDecoder func(l *Loader, stage *hclStage, ectx *hcl.EvalContext, resolve func(string) (task.Task, error)) (task.Task, error)

// kinds binds stage kind names to their decoders. Transform kinds share one
// decoder; the kind label doubles as the transform op.
var kinds = map[string]kindDecoder{
	"read":   decodeRead,
	"upper":  decodeTransform,
	"lower":  decodeTransform,
	"trim":   decodeTransform,
	"concat": decodeConcat,
	"write":  decodeWrite,
}

func decodeRead(l *Loader, stage *hclStage, ectx *hcl.EvalContext, _ func(string) (task.Task, error)) (task.Task, error) {
	var cfg readConfig
	if diags := gohcl.DecodeBody(stage.Remain, ectx, &cfg); diags.HasErrors() {
		return nil, fmt.Errorf("stage %q: %w", stage.Name, diags)
	}
	return ReadTask{Path: stage.resolvePath(cfg.Path), Stamper: l.fileStamper}, nil
}

func decodeTransform(_ *Loader, stage *hclStage, ectx *hcl.EvalContext, resolve func(string) (task.Task, error)) (task.Task, error) {
	var cfg transformConfig
	if diags := gohcl.DecodeBody(stage.Remain, ectx, &cfg); diags.HasErrors() {
		return nil, fmt.Errorf("stage %q: %w", stage.Name, diags)
	}
	input, err := resolve(cfg.Input)
	if err != nil {
		return nil, fmt.Errorf("stage %q: %w", stage.Name, err)
	}
	return TransformTask{Op: TransformOp(stage.Kind), Input: input}, nil
}

func decodeConcat(_ *Loader, stage *hclStage, ectx *hcl.EvalContext, resolve func(string) (task.Task, error)) (task.Task, error) {
	var cfg concatConfig
	if diags := gohcl.DecodeBody(stage.Remain, ectx, &cfg); diags.HasErrors() {
		return nil, fmt.Errorf("stage %q: %w", stage.Name, diags)
	}
	inputs := make([]task.Task, 0, len(cfg.Inputs))
	for _, name := range cfg.Inputs {
		input, err := resolve(name)
		if err != nil {
			return nil, fmt.Errorf("stage %q: %w", stage.Name, err)
		}
		inputs = append(inputs, input)
	}
	return ConcatTask{Inputs: inputs, Separator: cfg.Separator}, nil
}

func decodeWrite(l *Loader, stage *hclStage, ectx *hcl.EvalContext, resolve func(string) (task.Task, error)) (task.Task, error) {
	var cfg writeConfig
	if diags := gohcl.DecodeBody(stage.Remain, ectx, &cfg); diags.HasErrors() {
		return nil, fmt.Errorf("stage %q: %w", stage.Name, diags)
	}
	input, err := resolve(cfg.Input)
	if err != nil {
		return nil, fmt.Errorf("stage %q: %w", stage.Name, err)
	}
	return WriteTask{Input: input, Path: stage.resolvePath(cfg.Path), Stamper: l.provideStamper}, nil
}
