package container

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/roach88/tally"
	"github.com/roach88/tally/action"
	"github.com/roach88/tally/digest"
	"github.com/roach88/tally/hooks"
)

// History and digest bounds. Out-of-range construction arguments fail
// immediately with a ConfigError.
const (
	DefaultMaxHistorySize = 50
	DefaultMaxHistoryTime = 24 * time.Hour
	DefaultDigestInterval = 10

	MinHistorySize = 1
	MaxHistorySize = 100000

	MinHistoryTime = time.Hour
	MaxHistoryTime = 7 * 24 * time.Hour
)

// Container owns current state, the bounded action history, the digest
// list, and the observer registries. See the package documentation for the
// concurrency and failure model.
type Container struct {
	ledger *action.Ledger
	gen    action.IDGenerator
	logger *slog.Logger

	state   tally.State
	history []*action.Action
	current int // index of the last applied/replayed action, -1 when none

	maxHistorySize int
	maxHistoryTime time.Duration

	digestInterval int
	digests        []digest.Digest
	actionCount    int

	meta      map[string]any
	datastore any

	subs  *subscribers
	mw    *middleware
	hooks *hooks.Dispatcher

	strict bool
}

// Option configures a Container at construction.
type Option func(*Container)

// WithMaxHistorySize caps the number of history entries; the oldest entry
// is evicted first. Valid range [1, 100000].
func WithMaxHistorySize(n int) Option {
	return func(c *Container) { c.maxHistorySize = n }
}

// WithMaxHistoryTime evicts history entries older than d, measured against
// each action's own timestamp at prune time. Valid range [1h, 168h].
func WithMaxHistoryTime(d time.Duration) Option {
	return func(c *Container) { c.maxHistoryTime = d }
}

// WithDigestInterval sets how many successful applies elapse between
// automatic digests. Must be at least 1.
func WithDigestInterval(n int) Option {
	return func(c *Container) { c.digestInterval = n }
}

// WithMetadata merges free-form metadata over the computed defaults
// (timestamp, version, environment).
func WithMetadata(meta map[string]any) Option {
	return func(c *Container) {
		for k, v := range meta {
			c.meta[k] = v
		}
	}
}

// WithDatastore attaches an opaque external datastore handle. The container
// never interprets it; it exists for executables and callbacks that share
// one connection.
func WithDatastore(ds any) Option {
	return func(c *Container) { c.datastore = ds }
}

// WithLedger sets the ledger used to rehydrate history entries. Defaults to
// the process-wide action.Default ledger.
func WithLedger(l *action.Ledger) Option {
	return func(c *Container) { c.ledger = l }
}

// WithIDGenerator overrides the digest id source, for deterministic tests.
func WithIDGenerator(gen action.IDGenerator) Option {
	return func(c *Container) { c.gen = gen }
}

// WithLogger routes the container's diagnostics (swallowed observer
// failures, rehydration warnings) to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Container) { c.logger = logger }
}

// WithStrictMode snapshots state before every invocation and compares after,
// turning in-place mutation by an executable into an Issue. The deep
// snapshot has a real cost on large states; keep it to development builds.
func WithStrictMode() Option {
	return func(c *Container) { c.strict = true }
}

// WithHooks attaches a lifecycle hook dispatcher.
func WithHooks(d *hooks.Dispatcher) Option {
	return func(c *Container) { c.hooks = d }
}

// New constructs a Container over an initial state. Construction fails with
// a ConfigError when a bound is out of range.
func New(initial tally.State, opts ...Option) (*Container, error) {
	c := &Container{
		ledger:         action.Default(),
		gen:            action.UUIDv7Generator{},
		logger:         slog.Default(),
		state:          tally.Clone(initial),
		current:        -1,
		maxHistorySize: DefaultMaxHistorySize,
		maxHistoryTime: DefaultMaxHistoryTime,
		digestInterval: DefaultDigestInterval,
		meta: map[string]any{
			"timestamp":   time.Now(),
			"version":     tally.Version,
			"environment": environment(),
		},
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.maxHistorySize < MinHistorySize || c.maxHistorySize > MaxHistorySize {
		return nil, &ConfigError{
			Field:   "maxHistorySize",
			Message: fmt.Sprintf("%d out of range [%d, %d]", c.maxHistorySize, MinHistorySize, MaxHistorySize),
		}
	}
	if c.maxHistoryTime < MinHistoryTime || c.maxHistoryTime > MaxHistoryTime {
		return nil, &ConfigError{
			Field:   "maxHistoryTime",
			Message: fmt.Sprintf("%s out of range [%s, %s]", c.maxHistoryTime, MinHistoryTime, MaxHistoryTime),
		}
	}
	if c.digestInterval < 1 {
		return nil, &ConfigError{
			Field:   "digestInterval",
			Message: fmt.Sprintf("%d must be at least 1", c.digestInterval),
		}
	}

	c.subs = newSubscribers(c.logger)
	c.mw = newMiddleware(c.logger)
	return c, nil
}

func environment() string {
	if env := os.Getenv("TALLY_ENV"); env != "" {
		return env
	}
	return "development"
}

// State returns a deep copy of current state. The live value never leaves
// the container.
func (c *Container) State() tally.State {
	return tally.Clone(c.state)
}

// History returns a copy of the action log in insertion order.
func (c *Container) History() []*action.Action {
	return append([]*action.Action(nil), c.history...)
}

// CurrentIndex returns the replay pointer: the history index of the last
// applied or replayed action, -1 when none.
func (c *Container) CurrentIndex() int { return c.current }

// Digests returns a copy of the locally held digest list.
func (c *Container) Digests() []digest.Digest {
	return append([]digest.Digest(nil), c.digests...)
}

// Metadata returns a copy of the container metadata.
func (c *Container) Metadata() map[string]any {
	meta := make(map[string]any, len(c.meta))
	for k, v := range c.meta {
		meta[k] = v
	}
	return meta
}

// Datastore returns the opaque handle given at construction, nil when none.
func (c *Container) Datastore() any { return c.datastore }

// Ledger returns the ledger used for rehydration.
func (c *Container) Ledger() *action.Ledger { return c.ledger }
