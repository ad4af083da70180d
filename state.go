package tally

import "reflect"

// State is the value a container owns and actions transform. Top-level keys
// are the unit of merging: applying a success overlays the produced state's
// top-level keys onto the current state and leaves every other key alone.
type State map[string]any

// Merge overlays next onto base, top level only. Nested values present in
// next replace their counterparts wholesale; they are never deep-merged.
// Neither input is mutated. A nil next returns a copy of base.
func Merge(base, next State) State {
	merged := make(State, len(base)+len(next))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range next {
		merged[k] = v
	}
	return merged
}

// Clone returns a deep copy of s. Maps and slices are copied recursively;
// shared and cyclic references are preserved in the copy rather than
// re-traversed, so self-referential state does not recurse forever.
//
// Values that are neither map[string]any, State, nor []any are copied by
// assignment. Callers storing pointer-shaped values inside state share those
// values between clones.
func Clone(s State) State {
	if s == nil {
		return nil
	}
	return cloneValue(s, make(map[uintptr]any)).(State)
}

func cloneValue(v any, visited map[uintptr]any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case State:
		return State(cloneMap(map[string]any(val), visited))
	case map[string]any:
		return cloneMap(val, visited)
	case []any:
		ptr := reflect.ValueOf(val).Pointer()
		if seen, ok := visited[ptr]; ok {
			return seen
		}
		out := make([]any, len(val))
		visited[ptr] = out
		for i, elem := range val {
			out[i] = cloneValue(elem, visited)
		}
		return out
	default:
		return v
	}
}

func cloneMap(m map[string]any, visited map[uintptr]any) map[string]any {
	if m == nil {
		return nil
	}
	ptr := reflect.ValueOf(m).Pointer()
	if seen, ok := visited[ptr]; ok {
		return seen.(map[string]any)
	}
	out := make(map[string]any, len(m))
	visited[ptr] = out
	for k, v := range m {
		out[k] = cloneValue(v, visited)
	}
	return out
}

// Mutated reports whether current has drifted from snapshot. It backs the
// container's strict mode: a snapshot is taken before an executable runs and
// compared after, catching transforms that modify their input in place.
// reflect.DeepEqual handles cyclic values, so the comparison terminates on
// self-referential state.
func Mutated(snapshot, current State) bool {
	return !reflect.DeepEqual(snapshot, current)
}
