// Package hooks provides named lifecycle dispatch for the container and the
// outcome deserializers. Callbacks are invoked in registration order; their
// errors and panics are logged, never propagated, so a misbehaving observer
// cannot break the operation it is watching.
package hooks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Point names a lifecycle moment a dispatcher can fire.
type Point string

// Lifecycle points and the arguments their callbacks receive.
const (
	// BeforeStateChange fires before a successful outcome is merged.
	// Args: (state).
	BeforeStateChange Point = "before-state-change"

	// AfterStateChange fires after the merge. Args: (state).
	AfterStateChange Point = "after-state-change"

	// AfterActionCleanup fires once an action's outcome is settled,
	// success or failure. Args: (*action.Action, outcome.Outcome).
	AfterActionCleanup Point = "after-action-cleanup"

	// BeforeHydrate fires with the serialized digest before parsing.
	// Args: (serialized string).
	BeforeHydrate Point = "before-hydrate"

	// StateValidation fires with the parsed digest state before it is
	// applied. Args: (state).
	StateValidation Point = "state-validation"

	// AfterHydrate fires once hydration has replaced container state.
	// Args: (state).
	AfterHydrate Point = "after-hydrate"

	// HydrateError fires when hydration fails. Args: (error).
	HydrateError Point = "hydrate-error"

	// AfterHydrationCleanup fires last on the hydrate path, found or not.
	// Args: (state).
	AfterHydrationCleanup Point = "after-hydration-cleanup"

	// BeforeDeserializeState fires before a result record's states are
	// restored. Args: (prevState, nextState).
	BeforeDeserializeState Point = "before-deserialize-state"

	// AfterDeserializeState fires after restoration.
	// Args: (prevState, nextState).
	AfterDeserializeState Point = "after-deserialize-state"
)

// Func is a lifecycle callback. Arguments depend on the point; see the Point
// constants. Returning an error gets the error logged, nothing more.
type Func func(ctx context.Context, args ...any) error

// Dispatcher fans lifecycle events out to registered callbacks.
//
// A nil *Dispatcher is valid and fires nothing, so holders need not
// nil-check before every fire.
//
// Thread-safety: registration and firing are guarded; callbacks themselves
// run outside the lock.
type Dispatcher struct {
	mu         sync.RWMutex
	registered map[Point][]Func
	logger     *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger routes swallowed callback failures to logger instead of the
// default slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = logger }
}

// NewDispatcher constructs an empty dispatcher.
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registered: make(map[Point][]Func),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// On registers fn for point. Callbacks fire in registration order.
func (d *Dispatcher) On(point Point, fn Func) {
	if d == nil || fn == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.registered[point] = append(d.registered[point], fn)
}

// Fire invokes every callback registered for point, in order, waiting for
// each to finish before the next starts. Errors and panics are logged and
// swallowed. Returns true when every callback succeeded.
func (d *Dispatcher) Fire(ctx context.Context, point Point, args ...any) bool {
	if d == nil {
		return true
	}
	d.mu.RLock()
	fns := d.registered[point]
	d.mu.RUnlock()

	ok := true
	for _, fn := range fns {
		if err := d.safeCall(ctx, fn, args); err != nil {
			d.logger.Warn("lifecycle hook failed",
				"point", string(point),
				"error", err)
			ok = false
		}
	}
	return ok
}

func (d *Dispatcher) safeCall(ctx context.Context, fn Func, args []any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("hook panicked: %v", r)
		}
	}()
	return fn(ctx, args...)
}
