package rebuild

import (
	"context"
	"sync"

	"github.com/vk/rebuild/internal/store"
	"github.com/vk/rebuild/stamp"
	"github.com/vk/rebuild/task"
	"github.com/vk/rebuild/track"
)

// Engine owns the persistent dependency store across build sessions. Create
// one Engine per build pipeline and keep it alive for as long as incremental
// rebuilds are wanted; a fresh Engine rebuilds everything once.
type Engine struct {
	// mu serializes sessions: the store has a single, session-scoped,
	// sequential view of what has been read and written so far.
	mu      sync.Mutex
	store   *store.Store
	tracker track.Tracker

	fileStamper    stamp.FileStamper
	provideStamper stamp.FileStamper
	outputStamper  stamp.OutputStamper
}

// Option configures an Engine.
type Option func(*Engine)

// WithTracker installs the observer for build events. Defaults to a no-op.
func WithTracker(tracker track.Tracker) Option {
	return func(e *Engine) { e.tracker = tracker }
}

// WithFileStamper sets the default policy for stamping required files.
// Defaults to stamp.FileModified. Individual requires can override it via
// RequireFileWithStamper.
func WithFileStamper(s stamp.FileStamper) Option {
	return func(e *Engine) { e.fileStamper = s }
}

// WithProvideStamper sets the default policy for stamping provided files.
// Defaults to stamp.FileModified.
func WithProvideStamper(s stamp.FileStamper) Option {
	return func(e *Engine) { e.provideStamper = s }
}

// WithOutputStamper sets the default policy for stamping required task
// outputs. Defaults to stamp.OutputEquals.
func WithOutputStamper(s stamp.OutputStamper) Option {
	return func(e *Engine) { e.outputStamper = s }
}

// New creates an engine with an empty store.
func New(opts ...Option) *Engine {
	e := &Engine{
		store:          store.New(),
		tracker:        track.Noop{},
		fileStamper:    stamp.FileModified,
		provideStamper: stamp.FileModified,
		outputStamper:  stamp.OutputEquals,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewSession starts a build pass. The session borrows the store exclusively:
// NewSession blocks until any previous session is closed. Callers must call
// Close when the pass is done.
func (e *Engine) NewSession() *Session {
	e.mu.Lock()
	return &Session{
		engine:  e,
		store:   e.store,
		tracker: e.tracker,
		visited: make(map[string]struct{}),
	}
}

// RunInSession runs f inside a new session, closing it afterwards.
func (e *Engine) RunInSession(f func(s *Session)) {
	s := e.NewSession()
	defer s.Close()
	f(s)
}

// Require is a convenience wrapper running a single top-level require in its
// own session.
func (e *Engine) Require(ctx context.Context, t task.Task) (any, error) {
	s := e.NewSession()
	defer s.Close()
	return s.Require(ctx, t)
}

// Tracker returns the engine's tracker.
func (e *Engine) Tracker() track.Tracker { return e.tracker }
