package pipeline

import (
	"fmt"
	"io"
	"strings"

	"github.com/vk/rebuild/stamp"
	"github.com/vk/rebuild/task"
)

// ReadTask reads a source file and outputs its contents as a string. An
// absent file yields the empty string; the recorded dependency makes the
// stage re-run once the file appears.
type ReadTask struct {
	Path    string
	Stamper stamp.FileStamper
}

func (t ReadTask) Key() string { return fmt.Sprintf("read(%s)", t.Path) }

func (t ReadTask) Execute(ctx task.Context) (any, error) {
	content, err := ctx.RequireFileWithStamper(t.Path, t.Stamper)
	if err != nil {
		return nil, err
	}
	return string(content), nil
}

// TransformOp names a string transformation applied by a TransformTask.
type TransformOp string

const (
	OpUpper TransformOp = "upper"
	OpLower TransformOp = "lower"
	OpTrim  TransformOp = "trim"
)

// TransformTask applies a string transformation to another task's output.
type TransformTask struct {
	Op    TransformOp
	Input task.Task
}

func (t TransformTask) Key() string { return fmt.Sprintf("%s(%s)", t.Op, t.Input.Key()) }

func (t TransformTask) Execute(ctx task.Context) (any, error) {
	text, err := requireString(ctx, t.Input)
	if err != nil {
		return nil, err
	}
	switch t.Op {
	case OpUpper:
		return strings.ToUpper(text), nil
	case OpLower:
		return strings.ToLower(text), nil
	case OpTrim:
		return strings.TrimSpace(text), nil
	default:
		return nil, fmt.Errorf("unknown transform %q", t.Op)
	}
}

// ConcatTask joins the outputs of several tasks with a separator.
type ConcatTask struct {
	Inputs    []task.Task
	Separator string
}

func (t ConcatTask) Key() string {
	keys := make([]string, 0, len(t.Inputs))
	for _, input := range t.Inputs {
		keys = append(keys, input.Key())
	}
	return fmt.Sprintf("concat(%s)", strings.Join(keys, ","))
}

func (t ConcatTask) Execute(ctx task.Context) (any, error) {
	parts := make([]string, 0, len(t.Inputs))
	for _, input := range t.Inputs {
		text, err := requireString(ctx, input)
		if err != nil {
			return nil, err
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, t.Separator), nil
}

// WriteTask writes another task's output to a destination file, registering
// itself as the file's provider. Its output is the written text.
type WriteTask struct {
	Input   task.Task
	Path    string
	Stamper stamp.FileStamper
}

func (t WriteTask) Key() string { return fmt.Sprintf("write(%s->%s)", t.Input.Key(), t.Path) }

func (t WriteTask) Execute(ctx task.Context) (any, error) {
	text, err := requireString(ctx, t.Input)
	if err != nil {
		return nil, err
	}
	err = ctx.ProvideFileWithStamper(t.Path, t.Stamper, func(w io.Writer) error {
		_, werr := io.WriteString(w, text)
		return werr
	})
	if err != nil {
		return nil, err
	}
	return text, nil
}

// requireString requires a task and asserts its output is a string, which is
// the only value type pipeline stages exchange.
func requireString(ctx task.Context, t task.Task) (string, error) {
	output, err := ctx.RequireTask(t)
	if err != nil {
		return "", err
	}
	text, ok := output.(string)
	if !ok {
		return "", fmt.Errorf("stage %s produced %T, want string", t.Key(), output)
	}
	return text, nil
}
