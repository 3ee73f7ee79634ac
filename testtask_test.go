package rebuild_test

import (
	"fmt"
	"io"
	"strings"

	"github.com/vk/rebuild/stamp"
	"github.com/vk/rebuild/task"
)

// Pseudo-tasks for exercising the engine. Each mirrors a typical host task:
// its key is derived from its inputs, and it declares every file and task it
// consumes through the context.

// readFile returns a file's contents as a string.
type readFile struct {
	path    string
	stamper stamp.FileStamper
}

func (t readFile) Key() string { return fmt.Sprintf("read(%s)", t.path) }

func (t readFile) Execute(ctx task.Context) (any, error) {
	content, err := ctx.RequireFileWithStamper(t.path, t.stamper)
	if err != nil {
		return nil, err
	}
	return string(content), nil
}

// toUpper uppercases another task's string output.
type toUpper struct {
	input task.Task
}

func (t toUpper) Key() string { return fmt.Sprintf("upper(%s)", t.input.Key()) }

func (t toUpper) Execute(ctx task.Context) (any, error) {
	output, err := ctx.RequireTask(t.input)
	if err != nil {
		return nil, err
	}
	return strings.ToUpper(output.(string)), nil
}

// concat joins the outputs of several tasks.
type concat struct {
	inputs    []task.Task
	separator string
}

func (t concat) Key() string {
	keys := make([]string, 0, len(t.inputs))
	for _, input := range t.inputs {
		keys = append(keys, input.Key())
	}
	return fmt.Sprintf("concat(%s)", strings.Join(keys, ","))
}

func (t concat) Execute(ctx task.Context) (any, error) {
	parts := make([]string, 0, len(t.inputs))
	for _, input := range t.inputs {
		output, err := ctx.RequireTask(input)
		if err != nil {
			return nil, err
		}
		parts = append(parts, output.(string))
	}
	return strings.Join(parts, t.separator), nil
}

// writeFile writes another task's string output to a file.
type writeFile struct {
	input   task.Task
	path    string
	stamper stamp.FileStamper
}

func (t writeFile) Key() string { return fmt.Sprintf("write(%s,%s)", t.input.Key(), t.path) }

func (t writeFile) Execute(ctx task.Context) (any, error) {
	output, err := ctx.RequireTask(t.input)
	if err != nil {
		return nil, err
	}
	text := output.(string)
	err = ctx.ProvideFileWithStamper(t.path, t.stamper, func(w io.Writer) error {
		_, werr := io.WriteString(w, text)
		return werr
	})
	if err != nil {
		return nil, err
	}
	return text, nil
}

// funcTask runs an arbitrary body; used to build cycles and failures.
type funcTask struct {
	key  string
	body func(ctx task.Context) (any, error)
}

func (t *funcTask) Key() string                           { return t.key }
func (t *funcTask) Execute(ctx task.Context) (any, error) { return t.body(ctx) }
