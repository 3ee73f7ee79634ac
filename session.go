package rebuild

import (
	"context"
	"errors"

	"github.com/vk/rebuild/internal/ctxlog"
	"github.com/vk/rebuild/internal/store"
	"github.com/vk/rebuild/task"
	"github.com/vk/rebuild/track"
)

// Session is one build pass against the engine's store. Within a session
// each task is checked or executed at most once; external file changes made
// while a session runs are only guaranteed to be observed by a later
// session.
type Session struct {
	engine  *Engine
	store   *store.Store
	tracker track.Tracker
	// visited marks tasks already resolved this pass, either executed or
	// found consistent. The filesystem may change mid-pass, so a task is
	// never re-inspected within one session.
	visited map[string]struct{}
	closed  bool
}

// ErrSessionClosed is returned by Require on a session that has already been
// closed. A closed session no longer holds the engine's store.
var ErrSessionClosed = errors.New("session is closed")

// Require returns the up-to-date output of t, executing it and any
// invalidated transitive dependencies first. The returned error is t's own
// execution error, ErrSessionClosed, or a fatal *CycleError or
// *SoundnessError aborting the pass; IsFatal distinguishes the two.
func (s *Session) Require(ctx context.Context, t task.Task) (any, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Top-level require started.", "task", t.Key())
	s.tracker.RequireStart(t)

	bc := &buildContext{session: s, logger: logger}
	res, err := bc.require(t, s.engine.outputStamper)
	if err != nil {
		s.tracker.RequireEnd(t, nil, err)
		logger.Debug("Top-level require aborted.", "task", t.Key(), "error", err)
		return nil, err
	}

	s.tracker.RequireEnd(t, res.Output, res.Err)
	logger.Debug("Top-level require finished.", "task", t.Key())
	return res.Output, res.Err
}

// Close ends the session and releases the store for the next one. The
// visited set is discarded; the store persists.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.engine.mu.Unlock()
}
