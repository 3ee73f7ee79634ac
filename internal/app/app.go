package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/rebuild"
	"github.com/vk/rebuild/internal/ctxlog"
	"github.com/vk/rebuild/internal/pipeline"
	"github.com/vk/rebuild/track"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	pipeline *pipeline.Pipeline
	engine   *rebuild.Engine
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger and build engine.
func NewApp(outW io.Writer, logW io.Writer, config *Config) *App {
	logger := newLogger(config.LogLevel, config.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	stamper := config.FileStamper()
	loader := pipeline.NewLoader(stamper, stamper)
	p, err := loader.Load(ctx, config.PipelinePath, config.Vars)
	if err != nil {
		// A failure to load config is a fatal startup error.
		panic(fmt.Errorf("failed to load pipeline: %w", err))
	}

	engine := rebuild.New(
		rebuild.WithTracker(track.NewLogging(logger)),
		rebuild.WithFileStamper(stamper),
		rebuild.WithProvideStamper(stamper),
	)

	return &App{
		outW:     outW,
		logger:   logger,
		config:   config,
		pipeline: p,
		engine:   engine,
	}
}

// Pipeline returns the loaded pipeline. This is primarily for testing.
func (a *App) Pipeline() *pipeline.Pipeline { return a.pipeline }

// Run performs the configured number of build passes over the pipeline's
// target stage, printing the target's output after each pass. Passes after
// the first rebuild only what changed on disk in between.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	targetName := a.config.Target
	if targetName == "" {
		targetName = a.pipeline.Target()
	}
	target, ok := a.pipeline.Task(targetName)
	if !ok {
		return fmt.Errorf("target stage %q is not defined in the pipeline", targetName)
	}

	for pass := 1; pass <= a.config.Passes; pass++ {
		a.logger.Info("Build pass starting.", "pass", pass, "target", targetName)
		output, err := a.engine.Require(ctx, target)
		if err != nil {
			if rebuild.IsFatal(err) {
				return fmt.Errorf("build aborted: %w", err)
			}
			return fmt.Errorf("target %q failed: %w", targetName, err)
		}
		a.logger.Info("Build pass finished.", "pass", pass)
		fmt.Fprintf(a.outW, "%v\n", output)
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}
