package container

import (
	"time"

	"github.com/roach88/tally/action"
)

// appendHistory records act and prunes, size bound first, then age. The
// replay pointer shifts left with every evicted entry so it keeps naming
// the same action, bottoming out at -1 when that action itself is evicted.
func (c *Container) appendHistory(act *action.Action, now time.Time) {
	c.history = append(c.history, act)

	if over := len(c.history) - c.maxHistorySize; over > 0 {
		c.history = c.history[over:]
		c.shiftPointer(over)
	}

	// Age pruning filters, it does not stop at the first young entry:
	// insertion order is preserved but timestamps need not be monotonic,
	// deserialized entries keep their original times.
	cutoff := now.Add(-c.maxHistoryTime)
	expired := false
	for _, a := range c.history {
		if a.Timestamp().Before(cutoff) {
			expired = true
			break
		}
	}
	if !expired {
		return
	}

	kept := make([]*action.Action, 0, len(c.history))
	removedBeforeCurrent := 0
	for i, a := range c.history {
		if a.Timestamp().Before(cutoff) {
			if i <= c.current {
				removedBeforeCurrent++
			}
			continue
		}
		kept = append(kept, a)
	}
	c.history = kept
	c.shiftPointer(removedBeforeCurrent)
}

func (c *Container) shiftPointer(removed int) {
	c.current -= removed
	if c.current < -1 {
		c.current = -1
	}
}
