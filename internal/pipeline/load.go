package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/rebuild/internal/ctxlog"
	"github.com/vk/rebuild/internal/fsutil"
	"github.com/vk/rebuild/stamp"
	"github.com/vk/rebuild/task"
)

// Loader turns pipeline HCL files into build tasks.
type Loader struct {
	fileStamper    stamp.FileStamper
	provideStamper stamp.FileStamper
}

// NewLoader creates a loader whose read and write stages stamp files with
// the given policies.
func NewLoader(fileStamper, provideStamper stamp.FileStamper) *Loader {
	return &Loader{fileStamper: fileStamper, provideStamper: provideStamper}
}

// Load parses the pipeline file or directory at path and lowers every stage
// into a build task. Overrides replace declared variable defaults.
func (l *Loader) Load(ctx context.Context, path string, overrides map[string]string) (*Pipeline, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading pipeline.", "path", path)

	files, err := fsutil.FindFilesByExtension(path, ".hcl")
	if err != nil {
		return nil, fmt.Errorf("finding pipeline files in %s: %w", path, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl pipeline files found in %s", path)
	}

	parser := hclparse.NewParser()
	var variables []*hclVariable
	var stages []*hclStage
	var settings *hclSettings
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("parsing %s: %w", file, diags)
		}
		var parsed hclPipelineFile
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &parsed); diags.HasErrors() {
			return nil, fmt.Errorf("decoding %s: %w", file, diags)
		}
		for _, stage := range parsed.Stages {
			stage.dir = filepath.Dir(file)
		}
		variables = append(variables, parsed.Variables...)
		stages = append(stages, parsed.Stages...)
		if parsed.Settings != nil {
			if settings != nil {
				return nil, fmt.Errorf("%s: settings block declared more than once", file)
			}
			settings = parsed.Settings
		}
	}

	ectx, err := buildEvalContext(variables, overrides)
	if err != nil {
		return nil, err
	}

	tasks, order, err := l.build(stages, ectx)
	if err != nil {
		return nil, err
	}

	target := order[len(order)-1]
	if settings != nil && settings.Target != "" {
		if _, ok := tasks[settings.Target]; !ok {
			return nil, fmt.Errorf("target stage %q is not defined", settings.Target)
		}
		target = settings.Target
	}

	logger.Info("Pipeline loaded.", "stages", len(order), "target", target)
	return &Pipeline{tasks: tasks, order: order, target: target}, nil
}

// build resolves stage references and lowers each stage into a task,
// rejecting duplicate names, unknown references, and reference cycles.
func (l *Loader) build(stages []*hclStage, ectx *hcl.EvalContext) (map[string]task.Task, []string, error) {
	if len(stages) == 0 {
		return nil, nil, fmt.Errorf("pipeline declares no stages")
	}

	byName := make(map[string]*hclStage, len(stages))
	order := make([]string, 0, len(stages))
	for _, stage := range stages {
		if _, dup := byName[stage.Name]; dup {
			return nil, nil, fmt.Errorf("stage %q declared twice", stage.Name)
		}
		byName[stage.Name] = stage
		order = append(order, stage.Name)
	}

	tasks := make(map[string]task.Task, len(stages))
	building := make(map[string]bool)
	var resolve func(name string) (task.Task, error)
	resolve = func(name string) (task.Task, error) {
		if t, ok := tasks[name]; ok {
			return t, nil
		}
		stage, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("stage %q is not defined", name)
		}
		if building[name] {
			return nil, fmt.Errorf("stage %q is part of a reference cycle", name)
		}
		building[name] = true
		defer delete(building, name)

		t, err := l.lower(stage, ectx, resolve)
		if err != nil {
			return nil, err
		}
		tasks[name] = t
		return t, nil
	}

	for _, name := range order {
		if _, err := resolve(name); err != nil {
			return nil, nil, err
		}
	}
	return tasks, order, nil
}

// lower turns one stage into its build task through the kind registry,
// resolving input stages through resolve.
func (l *Loader) lower(stage *hclStage, ectx *hcl.EvalContext, resolve func(string) (task.Task, error)) (task.Task, error) {
	decode, ok := kinds[stage.Kind]
	if !ok {
		return nil, fmt.Errorf("stage %q has unknown kind %q", stage.Name, stage.Kind)
	}
	return decode(l, stage, ectx, resolve)
}

// resolvePath anchors a stage's relative path at its declaring file.
func (s *hclStage) resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.dir, path)
}
