package gesture

import (
	"sort"
	"time"
)

// ManualClock is a Clock advanced explicitly with Advance. It is used by
// tests across packages that depend on long-press timing.
type ManualClock struct {
	now     time.Duration
	pending []*manualTimer
}

type manualTimer struct {
	at      time.Duration
	f       func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	if t.stopped {
		return false
	}
	t.stopped = true
	return true
}

func (c *ManualClock) AfterFunc(d time.Duration, f func()) Timer {
	t := &manualTimer{at: c.now + d, f: f}
	c.pending = append(c.pending, t)
	return t
}

// Advance moves the clock forward by d and runs every timer that came due,
// in deadline order.
func (c *ManualClock) Advance(d time.Duration) {
	c.now += d
	sort.SliceStable(c.pending, func(i, j int) bool { return c.pending[i].at < c.pending[j].at })

	var keep []*manualTimer
	var due []*manualTimer
	for _, t := range c.pending {
		switch {
		case t.stopped:
		case t.at <= c.now:
			due = append(due, t)
		default:
			keep = append(keep, t)
		}
	}
	c.pending = keep
	for _, t := range due {
		if t.stopped {
			continue
		}
		t.stopped = true
		t.f()
	}
}
