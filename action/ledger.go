package action

import (
	"fmt"
	"sort"
	"sync"
)

// Ledger maps keys (action ids) to executable logic. It exists because
// executables cannot survive serialization: a Record carries data only, and
// reconstruction looks the logic back up here.
//
// Ledgers are explicit values rather than hidden package state so that tests
// and independent containers can hold isolated registries. Default returns a
// process-wide shared instance for callers that want the convenient global.
//
// Thread-safety: all methods are safe for concurrent use.
type Ledger struct {
	mu    sync.RWMutex
	execs map[string]Executable
}

// NewLedger constructs an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{execs: make(map[string]Executable)}
}

var defaultLedger = NewLedger()

// Default returns the process-wide shared ledger.
func Default() *Ledger {
	return defaultLedger
}

// Set registers exec under key. Registration is first-writer-wins enforced
// loudly: a duplicate key returns ErrDuplicateKey rather than silently
// clobbering another action's logic.
func (l *Ledger) Set(key string, exec Executable) error {
	if key == "" {
		return fmt.Errorf("ledger: key must not be empty")
	}
	if exec == nil {
		return fmt.Errorf("ledger: executable for %q is nil", key)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.execs[key]; exists {
		return fmt.Errorf("ledger: key %q: %w", key, ErrDuplicateKey)
	}
	l.execs[key] = exec
	return nil
}

// Get returns the executable registered under key, or ErrNotRegistered.
func (l *Ledger) Get(key string) (Executable, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	exec, ok := l.execs[key]
	if !ok {
		return nil, fmt.Errorf("ledger: key %q: %w", key, ErrNotRegistered)
	}
	return exec, nil
}

// Has reports whether key is registered. Pure check, never errors.
func (l *Ledger) Has(key string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.execs[key]
	return ok
}

// Rehydrate looks up key and attaches the found executable to act,
// returning act for chaining. Fails with ErrNotRegistered when the key is
// absent; act is left untouched in that case.
func (l *Ledger) Rehydrate(act *Action, key string) (*Action, error) {
	exec, err := l.Get(key)
	if err != nil {
		return act, fmt.Errorf("rehydrate action %q: %w", act.Name(), err)
	}
	return act.Attach(exec), nil
}

// Keys returns all registered keys in sorted order.
func (l *Ledger) Keys() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	keys := make([]string, 0, len(l.execs))
	for k := range l.execs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
