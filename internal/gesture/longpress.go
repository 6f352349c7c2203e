// Package gesture implements the long-press heuristic that separates a touch
// drag from a page scroll.
package gesture

import (
	"math"
	"time"
)

const (
	DefaultHold   = 500 * time.Millisecond
	DefaultJitter = 10.0
)

// Timer is a pending callback that can be stopped.
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks. Production code uses RealClock; tests drive a
// fake clock by hand.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// RealClock schedules with time.AfterFunc.
type RealClock struct{}

func (RealClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// PressState is the phase of a LongPress.
type PressState int

const (
	PressIdle PressState = iota
	PressPending
	PressFired
)

func (s PressState) String() string {
	switch s {
	case PressPending:
		return "pending"
	case PressFired:
		return "fired"
	default:
		return "idle"
	}
}

// LongPress fires once a touch has been held for Hold without drifting more
// than Jitter pixels from where it started.
type LongPress struct {
	Hold   time.Duration
	Jitter float64

	clock   Clock
	state   PressState
	timer   Timer
	gen     uint64
	originX float64
	originY float64
}

// NewLongPress returns an idle LongPress. Non-positive hold or jitter fall
// back to the defaults.
func NewLongPress(clock Clock, hold time.Duration, jitter float64) *LongPress {
	if clock == nil {
		clock = RealClock{}
	}
	if hold <= 0 {
		hold = DefaultHold
	}
	if jitter <= 0 {
		jitter = DefaultJitter
	}
	return &LongPress{Hold: hold, Jitter: jitter, clock: clock}
}

func (lp *LongPress) State() PressState {
	return lp.state
}

// Start arms the timer at (x, y). onFire runs on expiry unless the press was
// cancelled or restarted in the meantime. A press already in progress is
// replaced.
func (lp *LongPress) Start(x, y float64, onFire func()) {
	lp.stop()
	lp.gen++
	gen := lp.gen
	lp.state = PressPending
	lp.originX, lp.originY = x, y
	lp.timer = lp.clock.AfterFunc(lp.Hold, func() {
		if lp.gen != gen || lp.state != PressPending {
			return
		}
		lp.state = PressFired
		lp.timer = nil
		if onFire != nil {
			onFire()
		}
	})
}

// Move reports whether the press is still alive after moving to (x, y).
// Drifting past Jitter while pending cancels it. Once fired, movement never
// cancels.
func (lp *LongPress) Move(x, y float64) bool {
	switch lp.state {
	case PressPending:
		if math.Hypot(x-lp.originX, y-lp.originY) > lp.Jitter {
			lp.Cancel()
			return false
		}
		return true
	case PressFired:
		return true
	default:
		return false
	}
}

// Cancel stops a pending timer and returns to idle.
func (lp *LongPress) Cancel() {
	lp.stop()
	lp.gen++
	lp.state = PressIdle
}

func (lp *LongPress) stop() {
	if lp.timer != nil {
		lp.timer.Stop()
		lp.timer = nil
	}
}
