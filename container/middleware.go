package container

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/tally/action"
)

// MiddlewareFunc intercepts an action before invocation. Middleware
// observes and annotates; it cannot veto execution, and its failures never
// propagate past the container.
type MiddlewareFunc func(ctx context.Context, act *action.Action) error

type middlewareEntry struct {
	fn     MiddlewareFunc
	filter FilterFunc
}

type middleware struct {
	mu      sync.RWMutex
	entries []middlewareEntry
	logger  *slog.Logger
}

func newMiddleware(logger *slog.Logger) *middleware {
	return &middleware{logger: logger}
}

// Use registers a pre-invocation middleware, optionally gated by a filter.
// Middleware filters receive a nil state: only the action is known before
// invocation.
func (c *Container) Use(fn MiddlewareFunc, filter ...FilterFunc) {
	e := middlewareEntry{fn: fn}
	if len(filter) > 0 {
		e.filter = filter[0]
	}
	c.mw.add(e)
}

func (m *middleware) add(e middlewareEntry) {
	if e.fn == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
}

// apply runs all matching middleware in registration order with the same
// catch-log-boolean contract as subscriber alerts.
func (m *middleware) apply(ctx context.Context, act *action.Action) bool {
	m.mu.RLock()
	entries := append([]middlewareEntry(nil), m.entries...)
	m.mu.RUnlock()

	ok := true
	for _, e := range entries {
		if e.filter != nil && !e.filter(act, nil) {
			continue
		}
		if err := safeIntercept(ctx, e.fn, act); err != nil {
			m.logger.Warn("middleware failed", "action", act.Name(), "error", err)
			ok = false
		}
	}
	return ok
}

func safeIntercept(ctx context.Context, fn MiddlewareFunc, act *action.Action) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("middleware panicked: %v", r)
		}
	}()
	return fn(ctx, act)
}
