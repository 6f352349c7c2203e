// Package editor composes the clip model, text inputs, drag controller,
// playback synchronizer and transcript selection into one editing session
// per open source video.
package editor

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"videothingy/clipdeck/internal/clips"
	"videothingy/clipdeck/internal/drag"
	"videothingy/clipdeck/internal/export"
	"videothingy/clipdeck/internal/gesture"
	"videothingy/clipdeck/internal/playback"
	"videothingy/clipdeck/internal/timeinput"
	"videothingy/clipdeck/internal/transcript"
)

var (
	ErrNotReady        = errors.New("media is not ready")
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionClosed   = errors.New("session closed")
	ErrNoSearch        = errors.New("no transcript search")
)

const DefaultClipSeconds = 60.0

// Options tune a session. Zero values take the defaults.
type Options struct {
	DefaultClipSeconds float64
	FallbackPad        float64
	LongPressHold      time.Duration
	TouchJitter        float64
	Clock              gesture.Clock
	Logger             *logrus.Entry

	// OnClipsChange runs after every successful clip mutation, under the
	// session lock. It must not call back into the session.
	OnClipsChange func(videoID uuid.UUID, list []clips.Clip)
	// OnRemoveVideo runs outside the session lock when the user asks to
	// drop the video.
	OnRemoveVideo func(sessionID, videoID uuid.UUID)
}

func (o *Options) defaults() {
	if o.DefaultClipSeconds <= 0 {
		o.DefaultClipSeconds = DefaultClipSeconds
	}
	if o.FallbackPad <= 0 {
		o.FallbackPad = transcript.DefaultFallbackPad
	}
	if o.Clock == nil {
		o.Clock = gesture.RealClock{}
	}
	if o.Logger == nil {
		o.Logger = logrus.NewEntry(logrus.StandardLogger())
	}
}

// Session is one editing session. Every exported method takes the session
// lock, so input from HTTP requests and timer callbacks is applied one event
// at a time.
type Session struct {
	ID      uuid.UUID
	VideoID uuid.UUID

	mu     sync.Mutex
	opts   Options
	logger *logrus.Entry

	source  string
	closed  bool
	restore []clips.Clip
	quiet   bool

	model    *clips.Model
	inputs   *timeinput.Validator
	drag     *drag.Controller
	player   *playback.Synchronizer
	media    *CommandLog
	lines    *transcript.Transcript
	selector *transcript.Selector
	matches  *transcript.Matches

	events []Event
}

// NewSession builds a session that is not ready until MediaReady. restore
// holds clips loaded from storage; they are re-validated once the duration
// is known.
func NewSession(videoID uuid.UUID, source string, lines []transcript.Line, restore []clips.Clip, opts Options) *Session {
	opts.defaults()
	s := &Session{
		ID:      uuid.New(),
		VideoID: videoID,
		opts:    opts,
		source:  source,
		restore: restore,
		media:   &CommandLog{},
	}
	s.logger = opts.Logger.WithFields(logrus.Fields{"session_id": s.ID, "video_id": videoID})

	clock := lockedClock{s: s, inner: opts.Clock}
	s.model = clips.NewModel(0)
	s.inputs = timeinput.New(s.model)
	s.player = playback.NewSynchronizer(s.model, s.media, s.logger)
	s.drag = drag.NewController(s.model, s.player, gesture.NewLongPress(clock, opts.LongPressHold, opts.TouchJitter), s.logger)
	s.player.SetBusyProbe(s.drag.Active)
	s.player.OnTimeClick = func(t float64) {
		s.events = append(s.events, Event{Kind: EventTimeClick, Time: t})
	}
	s.player.OnPlaybackChange = func(playing bool) {
		s.events = append(s.events, Event{Kind: EventPlaybackChange, Playing: playing})
	}
	s.model.OnChange(s.clipsChanged)
	s.setTranscript(lines, clock)
	return s
}

func (s *Session) clipsChanged(list []clips.Clip) {
	if s.quiet {
		return
	}
	s.events = append(s.events, Event{Kind: EventClipsChange, Clips: len(list)})
	if s.opts.OnClipsChange != nil {
		s.opts.OnClipsChange(s.VideoID, list)
	}
}

func (s *Session) setTranscript(lines []transcript.Line, clock gesture.Clock) {
	s.lines = transcript.New(lines)
	s.selector = transcript.NewSelector(s.lines, gesture.NewLongPress(clock, s.opts.LongPressHold, s.opts.TouchJitter), s.opts.FallbackPad, s.logger)
	s.matches = nil
}

// lock takes the session lock and fails once the session is closed.
func (s *Session) lock() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	return nil
}

// MediaReady sets the duration reported by the player and opens the ready
// gate. Clips waiting to be restored are inserted; invalid ones are dropped
// with a warning.
func (s *Session) MediaReady(duration float64) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()
	if math.IsNaN(duration) || math.IsInf(duration, 0) || duration <= 0 {
		return fmt.Errorf("media ready: %w: duration %v", clips.ErrOutOfBounds, duration)
	}

	if s.player.Ready() {
		if duration == s.model.Duration() {
			return nil
		}
		// metadata reloaded with a new duration: keep what still fits
		s.restore = s.model.List()
	}

	s.teardown()
	s.quiet = true
	s.model.Reset(duration)
	for _, c := range s.restore {
		if err := s.model.Insert(c); err != nil {
			s.logger.WithError(err).WithField("clip_id", c.ID).Warn("dropping stored clip")
		}
	}
	s.quiet = false
	s.restore = nil

	s.player.ClampToDuration()
	s.player.SetReady(true)
	s.drag.SetReady(true)
	s.logger.WithFields(logrus.Fields{"duration": duration, "clips": s.model.Len()}).Info("media ready")
	return nil
}

// ChangeSource swaps the media source. Everything tied to the old media is
// torn down in the same step: drags, playback state, clips and shadows.
func (s *Session) ChangeSource(source string, lines []transcript.Line) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	s.teardown()
	s.player.Reset()
	s.media.Reset()
	s.quiet = true
	s.model.Reset(0)
	s.quiet = false
	s.source = source
	s.restore = nil
	s.setTranscript(lines, lockedClock{s: s, inner: s.opts.Clock})
	s.logger.WithField("source", source).Info("media source changed")
	return nil
}

func (s *Session) teardown() {
	s.drag.SetReady(false)
	s.selector.Clear()
}

// Close tears the session down; later calls fail with ErrSessionClosed.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.teardown()
	s.player.Reset()
	s.closed = true
}

// RemoveVideo forwards the user's request to drop the video to the host.
func (s *Session) RemoveVideo() error {
	if err := s.lock(); err != nil {
		return err
	}
	s.events = append(s.events, Event{Kind: EventRemoveVideo})
	hook := s.opts.OnRemoveVideo
	s.mu.Unlock()

	if hook != nil {
		hook(s.ID, s.VideoID)
	}
	return nil
}

func (s *Session) Source() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// Clips returns the clip list in insertion order.
func (s *Session) Clips() []clips.Clip {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model.List()
}

func (s *Session) Clip(id uuid.UUID) (clips.Clip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.model.Get(id)
	if !ok {
		return clips.Clip{}, fmt.Errorf("clip %s: %w", id, clips.ErrNotFound)
	}
	return c, nil
}

// AddClip adds a clip with explicit bounds.
func (s *Session) AddClip(start, end float64) (clips.Clip, error) {
	if err := s.lock(); err != nil {
		return clips.Clip{}, err
	}
	defer s.mu.Unlock()
	if !s.player.Ready() {
		return clips.Clip{}, ErrNotReady
	}
	return s.model.Add(start, end)
}

// AddClipAtCurrentTime adds a clip starting at the playhead and running for
// the default length, cut at the media end. Near the end the start moves
// back so the clip keeps the minimum length.
func (s *Session) AddClipAtCurrentTime() (clips.Clip, error) {
	if err := s.lock(); err != nil {
		return clips.Clip{}, err
	}
	defer s.mu.Unlock()
	if !s.player.Ready() {
		s.logger.Debug("add at current time before media ready")
		return clips.Clip{}, ErrNotReady
	}
	duration := s.model.Duration()
	start := s.player.CurrentTime()
	end := math.Min(start+s.opts.DefaultClipSeconds, duration)
	if end-start < clips.MinLength {
		start = math.Max(0, clips.MaxStartFor(end))
	}
	return s.model.Add(start, end)
}

func (s *Session) UpdateClip(id uuid.UUID, p clips.Patch) (clips.Clip, error) {
	if err := s.lock(); err != nil {
		return clips.Clip{}, err
	}
	defer s.mu.Unlock()
	return s.model.Update(id, p)
}

// RemoveClip is idempotent.
func (s *Session) RemoveClip(id uuid.UUID) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()
	s.model.Remove(id)
	return nil
}

// EditField runs one keystroke through the text input validator.
func (s *Session) EditField(id uuid.UUID, b timeinput.Boundary, f timeinput.Field, raw string) (timeinput.Result, error) {
	if err := s.lock(); err != nil {
		return timeinput.Result{}, err
	}
	defer s.mu.Unlock()
	return s.inputs.Edit(id, b, f, raw)
}

func (s *Session) BlurField(id uuid.UUID) (timeinput.Shadow, error) {
	if err := s.lock(); err != nil {
		return timeinput.Shadow{}, err
	}
	defer s.mu.Unlock()
	return s.inputs.Blur(id)
}

// ExportEDL renders the clip list as an edit decision list.
func (s *Session) ExportEDL(title string, frameRate float64) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return export.GenerateEDL(s.model.List(), export.EDLOptions{
		Title:     title,
		MediaPath: s.source,
		FrameRate: frameRate,
	})
}

// lockedClock runs timer callbacks under the session lock so they are
// ordered with every other session event.
type lockedClock struct {
	s     *Session
	inner gesture.Clock
}

func (c lockedClock) AfterFunc(d time.Duration, f func()) gesture.Timer {
	return c.inner.AfterFunc(d, func() {
		c.s.mu.Lock()
		defer c.s.mu.Unlock()
		if c.s.closed {
			return
		}
		f()
	})
}
