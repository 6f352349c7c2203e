package editor

import (
	"github.com/google/uuid"

	"videothingy/clipdeck/internal/clips"
	"videothingy/clipdeck/internal/drag"
	"videothingy/clipdeck/internal/transcript"
)

// Pointer is one pointer or touch event on the timeline. A zero ClipID
// means the press landed on the timeline body.
type Pointer struct {
	ClipID uuid.UUID
	Handle drag.Handle
	X      float64
	Y      float64
	Rect   drag.Rect
}

// PointerDown starts a handle drag or a playhead scrub. It reports whether
// the press was taken; presses before media ready or during another drag
// are ignored.
func (s *Session) PointerDown(p Pointer) (bool, error) {
	if err := s.lock(); err != nil {
		return false, err
	}
	defer s.mu.Unlock()
	if p.ClipID == uuid.Nil {
		return s.drag.PointerDownTimeline(p.X, p.Rect) != nil, nil
	}
	return s.drag.PointerDownHandle(p.ClipID, p.Handle, p.Rect) != nil, nil
}

func (s *Session) PointerMove(x float64) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()
	s.drag.Session().Move(x)
	return nil
}

func (s *Session) PointerUp() error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()
	s.drag.Session().End()
	return nil
}

// TouchStart arms the long-press on a handle. A touch on the timeline body
// waits to become a tap, a held scrub or a page scroll.
func (s *Session) TouchStart(p Pointer) (bool, error) {
	if err := s.lock(); err != nil {
		return false, err
	}
	defer s.mu.Unlock()
	if p.ClipID == uuid.Nil {
		return s.drag.TouchStartTimeline(p.X, p.Y, p.Rect), nil
	}
	return s.drag.TouchStartHandle(p.ClipID, p.Handle, p.X, p.Y, p.Rect, nil), nil
}

// TouchMove reports whether the move was consumed. False tells the client
// to let the page scroll.
func (s *Session) TouchMove(x, y float64) (bool, error) {
	if err := s.lock(); err != nil {
		return false, err
	}
	defer s.mu.Unlock()
	return s.drag.TouchMove(x, y), nil
}

func (s *Session) TouchEnd() error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()
	s.drag.TouchEnd()
	return nil
}

// TouchCancel ends the touch like TouchEnd but never counts it as a tap.
func (s *Session) TouchCancel() error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()
	s.drag.TouchCancel()
	return nil
}

// Tick applies a media clock update and reports whether it was taken.
func (s *Session) Tick(played float64) (bool, error) {
	if err := s.lock(); err != nil {
		return false, err
	}
	defer s.mu.Unlock()
	return s.player.Tick(played), nil
}

func (s *Session) Seek(seconds float64) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()
	if !s.player.Ready() {
		return ErrNotReady
	}
	s.player.Seek(seconds)
	return nil
}

func (s *Session) Play() error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()
	s.player.Play()
	return nil
}

func (s *Session) Pause() error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()
	s.player.Pause()
	return nil
}

func (s *Session) SetPlaybackRate(rate float64) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()
	return s.player.SetPlaybackRate(rate)
}

// SelectClip focuses a clip and returns the transcript line to scroll into
// view, or -1.
func (s *Session) SelectClip(id uuid.UUID) (int, error) {
	if err := s.lock(); err != nil {
		return -1, err
	}
	defer s.mu.Unlock()
	if err := s.player.SelectClip(id); err != nil {
		return -1, err
	}
	c, _ := s.model.Get(id)
	return s.lines.LineAt(c.StartTime), nil
}

func (s *Session) Deselect() error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()
	s.player.Deselect()
	return nil
}

// Transcript returns the session's lines.
func (s *Session) Transcript() []transcript.Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lines.Lines()
}

func (s *Session) BeginSelection(line int) error {
	return s.withSelector(func(sel *transcript.Selector) error { return sel.Begin(line) })
}

func (s *Session) ExtendSelection(line int) error {
	return s.withSelector(func(sel *transcript.Selector) error { return sel.Extend(line) })
}

func (s *Session) TruncateSelection(line int) error {
	return s.withSelector(func(sel *transcript.Selector) error { return sel.Truncate(line) })
}

func (s *Session) ClearSelection() error {
	return s.withSelector(func(sel *transcript.Selector) error {
		sel.Clear()
		return nil
	})
}

// SweepStart begins a mouse sweep across transcript lines.
func (s *Session) SweepStart(line int) error {
	return s.withSelector(func(sel *transcript.Selector) error { return sel.PointerDown(line) })
}

// SweepEnter extends a running sweep; without one it does nothing.
func (s *Session) SweepEnter(line int) error {
	return s.withSelector(func(sel *transcript.Selector) error { return sel.PointerEnter(line) })
}

func (s *Session) SweepEnd() error {
	return s.withSelector(func(sel *transcript.Selector) error {
		sel.PointerUp()
		return nil
	})
}

// TranscriptTouchStart waits for a long-press on a line before selecting.
func (s *Session) TranscriptTouchStart(line int, x, y float64) error {
	return s.withSelector(func(sel *transcript.Selector) error { return sel.TouchStart(line, x, y) })
}

// TranscriptTouchMove reports whether the move belongs to the selection.
func (s *Session) TranscriptTouchMove(line int, x, y float64) (bool, error) {
	if err := s.lock(); err != nil {
		return false, err
	}
	defer s.mu.Unlock()
	return s.selector.TouchMove(line, x, y), nil
}

func (s *Session) TranscriptTouchEnd() error {
	return s.withSelector(func(sel *transcript.Selector) error {
		sel.TouchEnd()
		return nil
	})
}

// CommitSelection derives a clip from the selected lines.
func (s *Session) CommitSelection() (clips.Clip, error) {
	if err := s.lock(); err != nil {
		return clips.Clip{}, err
	}
	defer s.mu.Unlock()
	if !s.player.Ready() {
		s.selector.Clear()
		return clips.Clip{}, ErrNotReady
	}
	return s.selector.Commit(s.model)
}

// ClickLine seeks to the start of a transcript line.
func (s *Session) ClickLine(line int) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()
	l, err := s.lines.Line(line)
	if err != nil {
		return err
	}
	if !s.player.Ready() {
		return ErrNotReady
	}
	s.player.Seek(l.Start)
	return nil
}

// SearchView is the state of the transcript search box.
type SearchView struct {
	Query    string `json:"query"`
	Indices  []int  `json:"indices"`
	Current  int    `json:"current"`
	Position int    `json:"position"`
}

func viewOf(m *transcript.Matches) *SearchView {
	if m == nil {
		return nil
	}
	idx := m.Indices
	if idx == nil {
		idx = []int{}
	}
	return &SearchView{Query: m.Query, Indices: idx, Current: m.Current(), Position: m.Position()}
}

// Search runs a case-insensitive search and focuses the first match.
func (s *Session) Search(q string) (*SearchView, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	s.matches = s.lines.Search(q)
	return viewOf(s.matches), nil
}

// StepSearch moves to the next (forward) or previous match, wrapping.
func (s *Session) StepSearch(forward bool) (*SearchView, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	if s.matches == nil {
		return nil, ErrNoSearch
	}
	if forward {
		s.matches.Next()
	} else {
		s.matches.Prev()
	}
	return viewOf(s.matches), nil
}

func (s *Session) withSelector(fn func(*transcript.Selector) error) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()
	return fn(s.selector)
}
