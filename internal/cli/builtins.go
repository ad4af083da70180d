package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/roach88/tally"
	"github.com/roach88/tally/action"
)

// Builtins is the executable library plan steps may reference by name.
//
//	set <key> <value>       state[key] = value
//	increment <key> <delta> numeric add, missing key counts as zero
//	append <key> <value>    push onto the list at key, creating it if absent
//	drop <key>              remove the top-level key
var Builtins = map[string]action.Executable{
	"set":       setExec,
	"increment": incrementExec,
	"append":    appendExec,
	"drop":      dropExec,
}

// BuiltinNames returns the sorted builtin action names, for error messages
// and help text.
func BuiltinNames() []string {
	names := make([]string, 0, len(Builtins))
	for name := range Builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func setExec(_ context.Context, _ tally.State, params []any) (action.Effect, error) {
	key, value, err := keyValueParams("set", params)
	if err != nil {
		return action.Effect{}, err
	}
	return action.Effect{
		Content: value,
		Transform: func(s tally.State) tally.State {
			return tally.Merge(s, tally.State{key: value})
		},
	}, nil
}

func incrementExec(_ context.Context, _ tally.State, params []any) (action.Effect, error) {
	key, value, err := keyValueParams("increment", params)
	if err != nil {
		return action.Effect{}, err
	}
	delta, ok := asNumber(value)
	if !ok {
		return action.Effect{}, fmt.Errorf("increment %q: delta %v is not a number", key, value)
	}
	return action.Effect{
		Content: delta,
		Transform: func(s tally.State) tally.State {
			current, _ := asNumber(s[key])
			return tally.Merge(s, tally.State{key: normalizeNumber(current + delta)})
		},
	}, nil
}

func appendExec(_ context.Context, _ tally.State, params []any) (action.Effect, error) {
	key, value, err := keyValueParams("append", params)
	if err != nil {
		return action.Effect{}, err
	}
	return action.Effect{
		Content: value,
		Transform: func(s tally.State) tally.State {
			list, _ := s[key].([]any)
			next := append(append([]any(nil), list...), value)
			return tally.Merge(s, tally.State{key: next})
		},
	}, nil
}

func dropExec(_ context.Context, _ tally.State, params []any) (action.Effect, error) {
	if len(params) < 1 {
		return action.Effect{}, fmt.Errorf("drop: expected [key], got %d params", len(params))
	}
	key, ok := params[0].(string)
	if !ok {
		return action.Effect{}, fmt.Errorf("drop: key must be a string, got %T", params[0])
	}
	return action.Effect{
		Content: key,
		Transform: func(s tally.State) tally.State {
			next := tally.Merge(s, nil)
			delete(next, key)
			return next
		},
	}, nil
}

func keyValueParams(name string, params []any) (string, any, error) {
	if len(params) < 2 {
		return "", nil, fmt.Errorf("%s: expected [key, value], got %d params", name, len(params))
	}
	key, ok := params[0].(string)
	if !ok {
		return "", nil, fmt.Errorf("%s: key must be a string, got %T", name, params[0])
	}
	return key, params[1], nil
}

// asNumber widens any numeric representation a plan can carry (CUE decode,
// JSON round-trips) to float64.
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// normalizeNumber keeps whole results as ints so state stays readable.
func normalizeNumber(f float64) any {
	if f == float64(int64(f)) {
		return int(f)
	}
	return f
}
