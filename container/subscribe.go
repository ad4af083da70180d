package container

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/roach88/tally"
	"github.com/roach88/tally/action"
)

// SubscriberFunc observes state changes. Errors and panics are logged by
// the container and never propagate to the caller that triggered the
// change.
type SubscriberFunc func(ctx context.Context, act *action.Action, newState tally.State) error

// FilterFunc gates an observer. For middleware filters the state argument
// is nil; only the action is known pre-invocation.
type FilterFunc func(act *action.Action, newState tally.State) bool

type subscriberEntry struct {
	fn     SubscriberFunc
	filter FilterFunc
}

// subscribers is the state-change observer registry. Registration is
// mutex-guarded; alerting iterates a snapshot so observers may register
// further observers without deadlocking.
type subscribers struct {
	mu      sync.RWMutex
	entries []subscriberEntry
	logger  *slog.Logger
}

func newSubscribers(logger *slog.Logger) *subscribers {
	return &subscribers{logger: logger}
}

// Subscribe registers a state-change observer invoked after every notified
// state merge.
func (c *Container) Subscribe(fn SubscriberFunc) {
	c.subs.add(subscriberEntry{fn: fn})
}

// Watch registers a filtered observer: fn runs only when filter returns
// true for the applied action and the new state.
func (c *Container) Watch(filter FilterFunc, fn SubscriberFunc) {
	c.subs.add(subscriberEntry{fn: fn, filter: filter})
}

func (s *subscribers) add(e subscriberEntry) {
	if e.fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
}

// alert invokes all matching observers in registration order, catching and
// logging (not propagating) anything they raise. Returns true when every
// observer succeeded.
func (s *subscribers) alert(ctx context.Context, act *action.Action, newState tally.State) bool {
	s.mu.RLock()
	entries := append([]subscriberEntry(nil), s.entries...)
	s.mu.RUnlock()

	ok := true
	for _, e := range entries {
		if e.filter != nil && !e.filter(act, newState) {
			continue
		}
		if err := safeObserve(ctx, e.fn, act, newState); err != nil {
			s.logger.Warn("subscriber failed", "error", err)
			ok = false
		}
	}
	return ok
}

func safeObserve(ctx context.Context, fn SubscriberFunc, act *action.Action, newState tally.State) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("subscriber panicked: %v", r)
		}
	}()
	return fn(ctx, act, newState)
}

// ExprFilter compiles an expression-language predicate into a FilterFunc.
// The expression sees two variables:
//
//	action: {id, name, correlationId, params}
//	state:  the new state map (nil for middleware filters)
//
// Example:
//
//	filter, err := container.ExprFilter(`action.name == "checkout" && state.total > 100`)
//	c.Watch(filter, auditLog)
//
// Compilation errors surface here; evaluation errors at alert time make the
// filter reject (logged via slog, the observer simply does not run).
func ExprFilter(src string) (FilterFunc, error) {
	program, err := expr.Compile(src, expr.AsBool(), expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("compile filter %q: %w", src, err)
	}
	return exprPredicate(program, src), nil
}

func exprPredicate(program *vm.Program, src string) FilterFunc {
	return func(act *action.Action, newState tally.State) bool {
		env := map[string]any{
			"state": map[string]any(newState),
		}
		if act != nil {
			env["action"] = map[string]any{
				"id":            act.ID(),
				"name":          act.Name(),
				"correlationId": act.CorrelationID(),
				"params":        act.Params(),
			}
		}
		matched, err := expr.Run(program, env)
		if err != nil {
			slog.Warn("filter evaluation failed", "filter", src, "error", err)
			return false
		}
		ok, _ := matched.(bool)
		return ok
	}
}
