// Package playback reconciles the media clock with user seeks and clip
// selection, and pauses playback at the end of the focused clip.
package playback

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"videothingy/clipdeck/internal/clips"
)

var ErrInvalidRate = errors.New("playback rate must be a positive number")

// Media is the host media element. Commands are fire-and-forget.
type Media interface {
	Seek(seconds float64)
	SetPlaying(playing bool)
	SetPlaybackRate(rate float64)
}

// State is the playback snapshot exposed to the host.
type State struct {
	CurrentTime    float64   `json:"current_time"`
	IsPlaying      bool      `json:"is_playing"`
	ActiveClipID   uuid.UUID `json:"active_clip_id"`
	SelectedClipID uuid.UUID `json:"selected_clip_id"`
	PlaybackRate   float64   `json:"playback_rate"`
	Ready          bool      `json:"ready"`
}

// Synchronizer owns PlaybackState. It is driven from one goroutine at a
// time; editor.Session holds the lock around every call.
type Synchronizer struct {
	model  *clips.Model
	media  Media
	logger *logrus.Entry

	busy func() bool

	ready        bool
	state        State
	lastSelected uuid.UUID

	// OnTimeClick runs whenever CurrentTime changes.
	OnTimeClick func(seconds float64)
	// OnPlaybackChange runs whenever IsPlaying flips.
	OnPlaybackChange func(playing bool)
}

func NewSynchronizer(model *clips.Model, media Media, logger *logrus.Entry) *Synchronizer {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	s := &Synchronizer{
		model:  model,
		media:  media,
		logger: logger.WithField("component", "playback"),
		state:  State{PlaybackRate: 1},
	}
	model.OnChange(s.clipsChanged)
	return s
}

// SetBusyProbe installs the check that suppresses ticks, normally whether a
// drag or scrub is in progress.
func (s *Synchronizer) SetBusyProbe(busy func() bool) {
	s.busy = busy
}

func (s *Synchronizer) State() State {
	st := s.state
	st.Ready = s.ready
	return st
}

func (s *Synchronizer) Ready() bool {
	return s.ready
}

func (s *Synchronizer) CurrentTime() float64 {
	return s.state.CurrentTime
}

func (s *Synchronizer) SetReady(ready bool) {
	s.ready = ready
}

// Tick applies a media clock update. It reports whether the tick was
// applied; ticks before ready or during a drag are dropped.
func (s *Synchronizer) Tick(played float64) bool {
	if !s.ready || (s.busy != nil && s.busy()) {
		return false
	}
	if !finite(played) {
		s.logger.WithField("played", played).Warn("dropping non-finite tick")
		return false
	}
	s.setTime(played)
	s.checkBoundary()
	return true
}

// Seek is a user-initiated jump (timeline click, transcript line or word).
// Playback resumes from the target.
func (s *Synchronizer) Seek(seconds float64) {
	if !s.ready {
		return
	}
	s.seekAndPlay(seconds)
}

// Scrub seeks from the timeline body and drops the clip selection.
func (s *Synchronizer) Scrub(seconds float64) {
	if !s.ready {
		return
	}
	s.state.SelectedClipID = uuid.Nil
	s.state.ActiveClipID = uuid.Nil
	s.seekAndPlay(seconds)
}

// SelectClip focuses a clip for bounded playback. Selecting the clip that
// was selected last leaves the playhead and play state where they are so
// playback resumes instead of restarting.
func (s *Synchronizer) SelectClip(id uuid.UUID) error {
	c, ok := s.model.Get(id)
	if !ok {
		return fmt.Errorf("select clip %s: %w", id, clips.ErrNotFound)
	}
	s.state.SelectedClipID = id
	s.state.ActiveClipID = id
	if id == s.lastSelected {
		return nil
	}
	s.lastSelected = id
	if !s.ready {
		return nil
	}
	s.seekAndPlay(c.StartTime)
	return nil
}

// Deselect clears the selection and the bounded-playback focus.
func (s *Synchronizer) Deselect() {
	s.state.SelectedClipID = uuid.Nil
	s.state.ActiveClipID = uuid.Nil
}

func (s *Synchronizer) Play() {
	if s.ready {
		s.setPlaying(true)
	}
}

func (s *Synchronizer) Pause() {
	if s.ready {
		s.setPlaying(false)
	}
}

func (s *Synchronizer) SetPlaybackRate(rate float64) error {
	if !finite(rate) || rate <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidRate, rate)
	}
	s.state.PlaybackRate = rate
	if s.media != nil {
		s.media.SetPlaybackRate(rate)
	}
	return nil
}

// ClampToDuration pulls a playhead left past the end of the media back to
// the end, after a reload with a shorter duration.
func (s *Synchronizer) ClampToDuration() {
	if d := s.model.Duration(); s.state.CurrentTime > d {
		s.setTime(d)
	}
}

// Reset returns to the state of a freshly loaded source.
func (s *Synchronizer) Reset() {
	s.ready = false
	s.lastSelected = uuid.Nil
	s.state = State{PlaybackRate: 1}
}

func (s *Synchronizer) seekAndPlay(seconds float64) {
	if !finite(seconds) {
		return
	}
	seconds = math.Max(0, math.Min(seconds, s.model.Duration()))
	if s.media != nil {
		s.media.Seek(seconds)
	}
	s.setTime(seconds)
	s.setPlaying(true)
}

func (s *Synchronizer) setTime(seconds float64) {
	if s.state.CurrentTime == seconds {
		return
	}
	s.state.CurrentTime = seconds
	if s.OnTimeClick != nil {
		s.OnTimeClick(seconds)
	}
}

func (s *Synchronizer) setPlaying(playing bool) {
	if s.media != nil {
		s.media.SetPlaying(playing)
	}
	if s.state.IsPlaying == playing {
		return
	}
	s.state.IsPlaying = playing
	if s.OnPlaybackChange != nil {
		s.OnPlaybackChange(playing)
	}
}

// checkBoundary pauses once the playhead is at or past the end of the
// active clip. Level-triggered, so a late tick still pauses.
func (s *Synchronizer) checkBoundary() {
	id := s.state.ActiveClipID
	if id == uuid.Nil {
		return
	}
	c, ok := s.model.Get(id)
	if !ok {
		s.state.ActiveClipID = uuid.Nil
		return
	}
	if s.state.CurrentTime >= c.EndTime {
		s.logger.WithFields(logrus.Fields{"clip_id": id, "at": s.state.CurrentTime}).Debug("auto-pause at clip end")
		s.state.ActiveClipID = uuid.Nil
		s.setPlaying(false)
	}
}

func (s *Synchronizer) clipsChanged(list []clips.Clip) {
	live := func(id uuid.UUID) bool {
		for _, c := range list {
			if c.ID == id {
				return true
			}
		}
		return false
	}
	if s.state.SelectedClipID != uuid.Nil && !live(s.state.SelectedClipID) {
		s.state.SelectedClipID = uuid.Nil
	}
	if s.state.ActiveClipID != uuid.Nil && !live(s.state.ActiveClipID) {
		s.state.ActiveClipID = uuid.Nil
	}
	if s.lastSelected != uuid.Nil && !live(s.lastSelected) {
		s.lastSelected = uuid.Nil
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
