package transcript

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"videothingy/clipdeck/internal/clips"
	"videothingy/clipdeck/internal/gesture"
)

// Selector tracks the pending line selection. A selection is the range
// between an anchor and the current line, recomputed on every extend.
type Selector struct {
	transcript *Transcript
	press      *gesture.LongPress
	pad        float64
	logger     *logrus.Entry

	active  bool
	anchor  int
	current int

	// a pointer or armed touch is sweeping across lines
	sweeping     bool
	touchPending int
}

// NewSelector returns an empty selector over t. pad is the end fallback for
// a final line without an end.
func NewSelector(t *Transcript, press *gesture.LongPress, pad float64, logger *logrus.Entry) *Selector {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	if pad <= 0 {
		pad = DefaultFallbackPad
	}
	return &Selector{
		transcript:   t,
		press:        press,
		pad:          pad,
		logger:       logger.WithField("component", "transcript"),
		touchPending: -1,
	}
}

// Range returns the selected lines lo..hi inclusive.
func (s *Selector) Range() (lo, hi int, ok bool) {
	if !s.active {
		return 0, 0, false
	}
	lo, hi = s.anchor, s.current
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo, hi, true
}

// Selected lists the selected line indices in order.
func (s *Selector) Selected() []int {
	lo, hi, ok := s.Range()
	if !ok {
		return nil
	}
	out := make([]int, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		out = append(out, i)
	}
	return out
}

// Begin anchors a new selection at line i.
func (s *Selector) Begin(i int) error {
	if err := s.check(i); err != nil {
		return err
	}
	s.active = true
	s.anchor, s.current = i, i
	return nil
}

// Extend moves the selection end to line i, keeping the anchor.
func (s *Selector) Extend(i int) error {
	if !s.active {
		return s.Begin(i)
	}
	if err := s.check(i); err != nil {
		return err
	}
	s.current = i
	return nil
}

// Truncate is the ctrl-click: a line inside the selection drops everything
// after it, a line outside extends to it.
func (s *Selector) Truncate(i int) error {
	lo, hi, ok := s.Range()
	if !ok {
		return s.Begin(i)
	}
	if err := s.check(i); err != nil {
		return err
	}
	if i < lo || i > hi {
		return s.Extend(i)
	}
	s.anchor, s.current = lo, i
	return nil
}

// Clear drops the pending selection and any touch in flight.
func (s *Selector) Clear() {
	s.active = false
	s.anchor, s.current = 0, 0
	s.sweeping = false
	s.touchPending = -1
	if s.press != nil {
		s.press.Cancel()
	}
}

// Commit derives a clip from the selection and adds it to model. The
// selection is cleared whether or not the clip is accepted.
func (s *Selector) Commit(model *clips.Model) (clips.Clip, error) {
	lo, hi, ok := s.Range()
	s.Clear()
	if !ok {
		return clips.Clip{}, ErrEmptySelection
	}
	start, end, err := s.transcript.Derive(lo, hi, s.pad)
	if err != nil {
		return clips.Clip{}, err
	}
	c, err := model.Add(start, end)
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"lines": fmt.Sprintf("%d..%d", lo, hi),
			"start": start,
			"end":   end,
		}).Warn("discarding derived clip")
		return clips.Clip{}, fmt.Errorf("derive clip from lines %d..%d: %w", lo, hi, err)
	}
	return c, nil
}

// PointerDown starts a sweep at line i.
func (s *Selector) PointerDown(i int) error {
	if err := s.Begin(i); err != nil {
		return err
	}
	s.sweeping = true
	return nil
}

// PointerEnter extends a sweep to line i; ignored when no sweep is running.
func (s *Selector) PointerEnter(i int) error {
	if !s.sweeping {
		return nil
	}
	return s.Extend(i)
}

// PointerUp ends the sweep, keeping the selection for Commit.
func (s *Selector) PointerUp() {
	s.sweeping = false
}

// TouchStart waits for a long-press on line i before selecting, so a quick
// swipe still scrolls the page.
func (s *Selector) TouchStart(i int, x, y float64) error {
	if err := s.check(i); err != nil {
		return err
	}
	if s.press == nil {
		return s.PointerDown(i)
	}
	s.touchPending = i
	s.press.Start(x, y, func() {
		line := s.touchPending
		s.touchPending = -1
		if line < 0 {
			return
		}
		if err := s.PointerDown(line); err != nil {
			s.logger.WithError(err).Debug("long-press on vanished line")
		}
	})
	return nil
}

// TouchMove reports whether the touch is consumed. Over line i an armed
// touch extends; a pending one that drifts too far is released to the page.
func (s *Selector) TouchMove(i int, x, y float64) bool {
	if s.sweeping {
		if i >= 0 {
			_ = s.Extend(i)
		}
		return true
	}
	if s.touchPending < 0 || s.press == nil {
		return false
	}
	if !s.press.Move(x, y) {
		s.touchPending = -1
		return false
	}
	return true
}

// TouchEnd ends the sweep or abandons the pending long-press.
func (s *Selector) TouchEnd() {
	if s.touchPending >= 0 && s.press != nil {
		s.press.Cancel()
	}
	s.touchPending = -1
	s.sweeping = false
}

func (s *Selector) Sweeping() bool {
	return s.sweeping
}

func (s *Selector) check(i int) error {
	if i < 0 || i >= s.transcript.Len() {
		return fmt.Errorf("line %d: %w", i, ErrLineOutOfRange)
	}
	return nil
}
