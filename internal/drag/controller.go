// Package drag drives clip boundary handles and playhead scrubbing from
// pointer and touch input on the timeline.
package drag

import (
	"errors"
	"math"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"videothingy/clipdeck/internal/clips"
	"videothingy/clipdeck/internal/gesture"
)

// State is the controller phase.
type State int

const (
	Idle State = iota
	DraggingStart
	DraggingEnd
	ScrubbingPlayhead
)

func (s State) String() string {
	switch s {
	case DraggingStart:
		return "dragging_start"
	case DraggingEnd:
		return "dragging_end"
	case ScrubbingPlayhead:
		return "scrubbing"
	default:
		return "idle"
	}
}

// Handle identifies a clip boundary handle.
type Handle string

const (
	HandleStart Handle = "start"
	HandleEnd   Handle = "end"
)

func (h Handle) state() (State, bool) {
	switch h {
	case HandleStart:
		return DraggingStart, true
	case HandleEnd:
		return DraggingEnd, true
	default:
		return Idle, false
	}
}

// Rect is the horizontal extent of the timeline in pointer coordinates.
type Rect struct {
	Left  float64 `json:"left"`
	Width float64 `json:"width"`
}

// Fraction maps a pointer x to [0, 1] along the timeline.
func (r Rect) Fraction(x float64) float64 {
	if r.Width <= 0 || math.IsNaN(x) {
		return 0
	}
	return clamp((x-r.Left)/r.Width, 0, 1)
}

// Scrubber receives playhead scrubs: it deselects any clip and seeks.
type Scrubber interface {
	Scrub(seconds float64)
}

// Controller is the drag state machine. Only one input session is alive at
// a time; every entry point is guarded by Idle and the ready gate.
type Controller struct {
	model    *clips.Model
	scrubber Scrubber
	press    *gesture.LongPress
	logger   *logrus.Entry

	ready   bool
	state   State
	clipID  uuid.UUID
	rect    Rect
	session *Session

	// touch press waiting for the long-press to fire
	pendingClip   uuid.UUID
	pendingHandle Handle
	pendingRect   Rect

	// touch on the timeline body, not yet a tap or a scrub
	tapPending bool
	tapX       float64
	tapRect    Rect
}

// NewController wires a controller to the clip model. press is shared with
// nothing else; its clock decides when a touch becomes a drag.
func NewController(model *clips.Model, scrubber Scrubber, press *gesture.LongPress, logger *logrus.Entry) *Controller {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Controller{
		model:    model,
		scrubber: scrubber,
		press:    press,
		logger:   logger.WithField("component", "drag"),
	}
}

func (c *Controller) State() State {
	return c.state
}

// ClipID returns the clip being dragged, or uuid.Nil.
func (c *Controller) ClipID() uuid.UUID {
	return c.clipID
}

// Active reports whether any drag or scrub is in progress.
func (c *Controller) Active() bool {
	return c.state != Idle
}

// SetReady opens or closes the media-ready gate. Closing it tears down any
// session and pending touch.
func (c *Controller) SetReady(ready bool) {
	c.ready = ready
	if !ready {
		c.Teardown()
	}
}

// Teardown ends the live session, if any, and cancels a pending long-press.
func (c *Controller) Teardown() {
	c.press.Cancel()
	c.pendingClip = uuid.Nil
	c.tapPending = false
	if c.session != nil {
		c.session.End()
	}
}

// TimeAt converts a pointer x on rect into seconds of media.
func (c *Controller) TimeAt(x float64, rect Rect) float64 {
	return rect.Fraction(x) * c.model.Duration()
}

// PointerDownHandle starts a mouse drag on a clip handle.
func (c *Controller) PointerDownHandle(clipID uuid.UUID, h Handle, rect Rect) *Session {
	if !c.ready || c.state != Idle {
		return nil
	}
	return c.begin(clipID, h, rect)
}

// PointerDownTimeline handles a press on the timeline body: it seeks the
// playhead there and keeps scrubbing while the pointer stays down.
func (c *Controller) PointerDownTimeline(x float64, rect Rect) *Session {
	if !c.ready || c.state != Idle {
		return nil
	}
	c.state = ScrubbingPlayhead
	c.rect = rect
	c.session = &Session{ctrl: c}
	c.scrub(x)
	return c.session
}

// TouchStartHandle begins the long-press wait on a handle. The drag starts
// only if the finger stays put for the hold duration; onArmed runs at that
// moment with the new session.
func (c *Controller) TouchStartHandle(clipID uuid.UUID, h Handle, x, y float64, rect Rect, onArmed func(*Session)) bool {
	if !c.ready || c.state != Idle {
		return false
	}
	if _, ok := h.state(); !ok {
		return false
	}
	if _, ok := c.model.Get(clipID); !ok {
		return false
	}
	c.tapPending = false
	c.pendingClip, c.pendingHandle, c.pendingRect = clipID, h, rect
	c.press.Start(x, y, func() {
		id, handle, r := c.pendingClip, c.pendingHandle, c.pendingRect
		c.pendingClip = uuid.Nil
		if id == uuid.Nil || !c.ready || c.state != Idle {
			return
		}
		s := c.begin(id, handle, r)
		if s != nil && onArmed != nil {
			onArmed(s)
		}
	})
	return true
}

// TouchStartTimeline holds a touch on the timeline body until it turns
// into a tap (seek on TouchEnd) or a held scrub. A touch that drifts past
// the jitter radius first is left to the page.
func (c *Controller) TouchStartTimeline(x, y float64, rect Rect) bool {
	if !c.ready || c.state != Idle {
		return false
	}
	c.pendingClip = uuid.Nil
	c.tapPending, c.tapX, c.tapRect = true, x, rect
	c.press.Start(x, y, func() {
		if !c.tapPending {
			return
		}
		c.tapPending = false
		c.PointerDownTimeline(c.tapX, c.tapRect)
	})
	return true
}

// TouchMove routes a touch move. It returns false when the touch belongs to
// the page (no drag, long-press cancelled by movement), so the host lets it
// scroll.
func (c *Controller) TouchMove(x, y float64) bool {
	if c.session != nil {
		c.session.Move(x)
		return true
	}
	if c.tapPending {
		if !c.press.Move(x, y) {
			c.tapPending = false
			return false
		}
		return true
	}
	if c.pendingClip == uuid.Nil {
		return false
	}
	if !c.press.Move(x, y) {
		c.pendingClip = uuid.Nil
		return false
	}
	return true
}

// TouchCancel abandons a pending tap without seeking, then ends like
// TouchEnd.
func (c *Controller) TouchCancel() {
	if c.tapPending {
		c.press.Cancel()
		c.tapPending = false
	}
	c.TouchEnd()
}

// TouchEnd ends a touch drag or abandons a pending long-press. A pending
// tap on the timeline body seeks to where it landed.
func (c *Controller) TouchEnd() {
	if c.pendingClip != uuid.Nil {
		c.press.Cancel()
		c.pendingClip = uuid.Nil
	}
	if c.tapPending {
		c.press.Cancel()
		c.tapPending = false
		if c.ready && c.state == Idle && c.scrubber != nil {
			c.scrubber.Scrub(c.TimeAt(c.tapX, c.tapRect))
		}
	}
	if c.session != nil {
		c.session.End()
	}
}

// Session returns the live input session, or nil.
func (c *Controller) Session() *Session {
	return c.session
}

func (c *Controller) begin(clipID uuid.UUID, h Handle, rect Rect) *Session {
	st, ok := h.state()
	if !ok {
		return nil
	}
	if _, ok := c.model.Get(clipID); !ok {
		return nil
	}
	c.state = st
	c.clipID = clipID
	c.rect = rect
	c.session = &Session{ctrl: c}
	c.logger.WithFields(logrus.Fields{"clip_id": clipID, "handle": h}).Debug("drag started")
	return c.session
}

// move applies one pointer position to the active drag.
func (c *Controller) move(x float64) {
	switch c.state {
	case ScrubbingPlayhead:
		c.scrub(x)
	case DraggingStart, DraggingEnd:
		c.dragTo(x)
	}
}

func (c *Controller) dragTo(x float64) {
	clip, ok := c.model.Get(c.clipID)
	if !ok {
		c.logger.WithField("clip_id", c.clipID).Debug("dragged clip vanished, ending drag")
		c.end()
		return
	}
	t := c.TimeAt(x, c.rect)
	var patch clips.Patch
	if c.state == DraggingStart {
		start := clamp(t, 0, clips.MaxStartFor(clip.EndTime))
		patch.StartTime = &start
	} else {
		end := clamp(t, clips.MinEndFor(clip.StartTime), c.model.Duration())
		patch.EndTime = &end
	}
	if _, err := c.model.Update(c.clipID, patch); err != nil {
		// Pre-clamped values only fail if the clip itself is degenerate.
		if !errors.Is(err, clips.ErrNotFound) {
			c.logger.WithError(err).WithField("clip_id", c.clipID).Warn("drag update rejected")
		}
	}
}

func (c *Controller) scrub(x float64) {
	if c.scrubber != nil {
		c.scrubber.Scrub(c.TimeAt(x, c.rect))
	}
}

func (c *Controller) end() {
	if c.state != Idle {
		c.logger.WithFields(logrus.Fields{"clip_id": c.clipID, "state": c.state}).Debug("drag ended")
	}
	c.state = Idle
	c.clipID = uuid.Nil
	c.rect = Rect{}
	c.session = nil
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
