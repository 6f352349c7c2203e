package editor

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"videothingy/clipdeck/internal/clips"
	"videothingy/clipdeck/internal/drag"
	"videothingy/clipdeck/internal/gesture"
	"videothingy/clipdeck/internal/timeinput"
	"videothingy/clipdeck/internal/transcript"
)

var bar = drag.Rect{Left: 0, Width: 1200}

func f(v float64) *float64 { return &v }

type persisted struct {
	calls int
	last  []clips.Clip
}

func newSession(t *testing.T, lines []transcript.Line, restore []clips.Clip) (*Session, *gesture.ManualClock, *persisted) {
	t.Helper()
	clock := &gesture.ManualClock{}
	p := &persisted{}
	s := NewSession(uuid.New(), "/media/source.mp4", lines, restore, Options{
		Clock: clock,
		OnClipsChange: func(_ uuid.UUID, list []clips.Clip) {
			p.calls++
			p.last = list
		},
	})
	return s, clock, p
}

func TestSession_NotReadyIsNoOp(t *testing.T) {
	s, _, p := newSession(t, nil, nil)

	if _, err := s.AddClipAtCurrentTime(); !errors.Is(err, ErrNotReady) {
		t.Fatalf("AddClipAtCurrentTime() error = %v, want ErrNotReady", err)
	}
	if ok, _ := s.PointerDown(Pointer{X: 100, Rect: bar}); ok {
		t.Fatal("scrub accepted before media ready")
	}
	if ok, _ := s.Tick(5); ok {
		t.Fatal("tick applied before media ready")
	}
	if p.calls != 0 {
		t.Fatalf("clips persisted %d times before any edit", p.calls)
	}
}

func TestSession_MediaReadyRestoresValidClips(t *testing.T) {
	keep := clips.Clip{ID: uuid.New(), StartTime: 5, EndTime: 20}
	tooLong := clips.Clip{ID: uuid.New(), StartTime: 50, EndTime: 500}
	s, _, p := newSession(t, nil, []clips.Clip{keep, tooLong})

	if err := s.MediaReady(120); err != nil {
		t.Fatalf("MediaReady() error = %v", err)
	}
	got := s.Clips()
	if len(got) != 1 || got[0] != keep {
		t.Fatalf("Clips() = %+v, want only %+v", got, keep)
	}
	if p.calls != 0 {
		t.Fatal("restoring stored clips triggered a persist")
	}

	if err := s.MediaReady(-1); !errors.Is(err, clips.ErrOutOfBounds) {
		t.Fatalf("MediaReady(-1) error = %v, want ErrOutOfBounds", err)
	}
}

func TestSession_MediaReadyTwiceKeepsClips(t *testing.T) {
	s, _, _ := newSession(t, nil, nil)
	s.MediaReady(120)
	c, _ := s.AddClip(10, 70)

	s.MediaReady(120)
	if _, err := s.Clip(c.ID); err != nil {
		t.Fatalf("clip lost on repeated media ready: %v", err)
	}
	s.MediaReady(30)
	if _, err := s.Clip(c.ID); !errors.Is(err, clips.ErrNotFound) {
		t.Fatal("clip past the new duration survived")
	}
}

func TestSession_AddClipAtCurrentTime(t *testing.T) {
	s, _, p := newSession(t, nil, nil)
	s.MediaReady(100)

	c, err := s.AddClipAtCurrentTime()
	if err != nil {
		t.Fatalf("AddClipAtCurrentTime() error = %v", err)
	}
	if c.StartTime != 0 || c.EndTime != 60 {
		t.Fatalf("clip = (%v, %v), want (0, 60)", c.StartTime, c.EndTime)
	}

	s.Tick(90)
	c, _ = s.AddClipAtCurrentTime()
	if c.StartTime != 90 || c.EndTime != 100 {
		t.Fatalf("clip = (%v, %v), want (90, 100)", c.StartTime, c.EndTime)
	}

	// at the very end the start moves back to keep one second
	s.Tick(100)
	c, err = s.AddClipAtCurrentTime()
	if err != nil {
		t.Fatalf("AddClipAtCurrentTime() at end error = %v", err)
	}
	if c.StartTime != 99 || c.EndTime != 100 {
		t.Fatalf("clip = (%v, %v), want (99, 100)", c.StartTime, c.EndTime)
	}
	if p.calls != 3 || len(p.last) != 3 {
		t.Fatalf("persist calls = %d with %d clips, want 3 and 3", p.calls, len(p.last))
	}
}

func TestSession_AddAtCurrentTimeShortMedia(t *testing.T) {
	s, _, _ := newSession(t, nil, nil)
	s.MediaReady(0.5)
	if _, err := s.AddClipAtCurrentTime(); !errors.Is(err, clips.ErrTooShort) {
		t.Fatalf("AddClipAtCurrentTime() error = %v, want ErrTooShort", err)
	}
}

func TestSession_TicksIgnoredDuringDrag(t *testing.T) {
	s, _, _ := newSession(t, nil, nil)
	s.MediaReady(120)
	c, _ := s.AddClip(10, 70)

	ok, _ := s.PointerDown(Pointer{ClipID: c.ID, Handle: drag.HandleEnd, Rect: bar})
	if !ok {
		t.Fatal("PointerDown() refused a handle")
	}
	s.PointerMove(900) // 90s
	if applied, _ := s.Tick(33); applied {
		t.Fatal("tick applied during drag")
	}
	s.PointerUp()

	got, _ := s.Clip(c.ID)
	if got.EndTime != 90 {
		t.Fatalf("EndTime = %v, want 90", got.EndTime)
	}
	if applied, _ := s.Tick(33); !applied {
		t.Fatal("tick dropped after drag ended")
	}
}

func TestSession_TouchLongPressThroughClock(t *testing.T) {
	s, clock, _ := newSession(t, nil, nil)
	s.MediaReady(120)
	c, _ := s.AddClip(10, 70)

	if ok, _ := s.TouchStart(Pointer{ClipID: c.ID, Handle: drag.HandleStart, X: 100, Y: 10, Rect: bar}); !ok {
		t.Fatal("TouchStart() refused")
	}
	clock.Advance(gesture.DefaultHold)
	if v := s.View(false); v.Drag.State != "dragging_start" {
		t.Fatalf("drag state = %s, want dragging_start", v.Drag.State)
	}
	s.TouchMove(200, 10)
	s.TouchEnd()

	got, _ := s.Clip(c.ID)
	if got.StartTime != 20 {
		t.Fatalf("StartTime = %v, want 20", got.StartTime)
	}
}

func TestSession_TimelineSwipeLeavesPlayback(t *testing.T) {
	s, _, _ := newSession(t, nil, nil)
	s.MediaReady(120)

	ok, _ := s.TouchStart(Pointer{X: 100, Y: 50, Rect: bar})
	if !ok {
		t.Fatal("TouchStart() refused a touch on the timeline")
	}
	if consumed, _ := s.TouchMove(600, 300); consumed {
		t.Fatal("swipe across the timeline was consumed")
	}
	s.TouchEnd()

	v := s.View(true)
	if v.Playback.CurrentTime != 0 || v.Playback.IsPlaying || len(v.Commands) != 0 {
		t.Fatalf("swipe moved playback: %+v, commands %v", v.Playback, v.Commands)
	}
}

func TestSession_MediaReloadClampsPlayhead(t *testing.T) {
	s, _, _ := newSession(t, nil, nil)
	s.MediaReady(120)
	s.Tick(100)

	if err := s.MediaReady(50); err != nil {
		t.Fatalf("MediaReady(50) error = %v", err)
	}
	if v := s.View(false); v.Playback.CurrentTime != 50 {
		t.Fatalf("CurrentTime = %v after reload to 50s, want 50", v.Playback.CurrentTime)
	}
	c, err := s.AddClipAtCurrentTime()
	if err != nil {
		t.Fatalf("AddClipAtCurrentTime() error = %v", err)
	}
	if c.StartTime != 49 || c.EndTime != 50 {
		t.Fatalf("clip = (%v, %v), want (49, 50)", c.StartTime, c.EndTime)
	}
}

func TestSession_ChangeSourceResetsEverything(t *testing.T) {
	lines := []transcript.Line{{Text: "a", Start: 0}, {Text: "b", Start: 4}}
	s, clock, _ := newSession(t, lines, nil)
	s.MediaReady(120)
	c, _ := s.AddClip(10, 70)
	s.SelectClip(c.ID)
	s.BeginSelection(0)
	s.TouchStart(Pointer{ClipID: c.ID, Handle: drag.HandleEnd, X: 10, Rect: bar})

	if err := s.ChangeSource("/media/other.mp4", nil); err != nil {
		t.Fatalf("ChangeSource() error = %v", err)
	}
	clock.Advance(time.Second)

	v := s.View(true)
	if len(v.Clips) != 0 || v.Playback.Ready || v.Playback.ActiveClipID != uuid.Nil {
		t.Fatalf("state survived source change: %+v", v)
	}
	if v.Drag.State != "idle" {
		t.Fatalf("stale touch started a drag: %s", v.Drag.State)
	}
	if len(v.Selection) != 0 || len(v.Commands) != 0 {
		t.Fatalf("selection %v or commands %v survived", v.Selection, v.Commands)
	}
	if v.Source != "/media/other.mp4" {
		t.Fatalf("Source = %q", v.Source)
	}
}

func TestSession_ViewDrainsCommands(t *testing.T) {
	s, _, _ := newSession(t, nil, nil)
	s.MediaReady(120)
	c, _ := s.AddClip(10, 70)
	s.SelectClip(c.ID)

	v := s.View(true)
	want := []Command{{Kind: CommandSeek, Value: 10}, {Kind: CommandPlay}}
	if len(v.Commands) != len(want) {
		t.Fatalf("Commands = %+v, want %+v", v.Commands, want)
	}
	for i := range want {
		if v.Commands[i] != want[i] {
			t.Fatalf("Commands = %+v, want %+v", v.Commands, want)
		}
	}
	if len(v.Events) == 0 {
		t.Fatal("no events recorded")
	}
	if !v.Clips[0].Selected {
		t.Fatal("selected clip not flagged")
	}
	if again := s.View(true); len(again.Commands) != 0 || len(again.Events) != 0 {
		t.Fatal("View(true) did not drain")
	}
}

func TestSession_EditFieldAndBlur(t *testing.T) {
	s, _, _ := newSession(t, nil, nil)
	s.MediaReady(7200)
	c, _ := s.AddClip(0, 61)

	res, err := s.EditField(c.ID, timeinput.Start, timeinput.Minutes, "6")
	if err != nil {
		t.Fatalf("EditField() error = %v", err)
	}
	if res.Applied || res.Message != timeinput.MsgStartAfterEnd {
		t.Fatalf("EditField() = %+v", res)
	}
	sh, err := s.BlurField(c.ID)
	if err != nil {
		t.Fatalf("BlurField() error = %v", err)
	}
	if sh.Start.Minutes != "0" {
		t.Fatalf("shadow after blur = %+v", sh.Start)
	}
}

func TestSession_TranscriptCommitAndClick(t *testing.T) {
	lines := []transcript.Line{
		{Text: "one", Start: 0, End: f(2)},
		{Text: "two", Start: 2},
		{Text: "three", Start: 5, End: f(7)},
	}
	s, _, _ := newSession(t, lines, nil)
	s.MediaReady(120)

	s.BeginSelection(0)
	s.ExtendSelection(1)
	c, err := s.CommitSelection()
	if err != nil {
		t.Fatalf("CommitSelection() error = %v", err)
	}
	if c.StartTime != 0 || c.EndTime != 5 {
		t.Fatalf("clip = (%v, %v), want (0, 5)", c.StartTime, c.EndTime)
	}

	if err := s.ClickLine(2); err != nil {
		t.Fatalf("ClickLine() error = %v", err)
	}
	if v := s.View(false); v.Playback.CurrentTime != 5 || !v.Playback.IsPlaying {
		t.Fatalf("playback after line click = %+v", v.Playback)
	}
	if err := s.ClickLine(9); !errors.Is(err, transcript.ErrLineOutOfRange) {
		t.Fatalf("ClickLine(9) error = %v", err)
	}

	line, err := s.SelectClip(c.ID)
	if err != nil || line != 0 {
		t.Fatalf("SelectClip() = %d, %v; want line 0", line, err)
	}
}

func TestSession_Search(t *testing.T) {
	lines := []transcript.Line{{Text: "Alpha"}, {Text: "beta"}, {Text: "ALPHAbet"}}
	s, _, _ := newSession(t, lines, nil)

	if _, err := s.StepSearch(true); !errors.Is(err, ErrNoSearch) {
		t.Fatalf("StepSearch() before search error = %v", err)
	}
	v, _ := s.Search("alpha")
	if v.Current != 0 || len(v.Indices) != 2 {
		t.Fatalf("Search() = %+v", v)
	}
	v, _ = s.StepSearch(true)
	if v.Current != 2 {
		t.Fatalf("next = %d, want 2", v.Current)
	}
	v, _ = s.StepSearch(true)
	if v.Current != 0 {
		t.Fatalf("next wrapped to %d, want 0", v.Current)
	}
}

func TestSession_RemoveVideoClosesThroughRegistry(t *testing.T) {
	reg := NewRegistry()
	var removed uuid.UUID
	s := NewSession(uuid.New(), "src", nil, nil, Options{
		Clock: &gesture.ManualClock{},
		OnRemoveVideo: func(sessionID, videoID uuid.UUID) {
			removed = videoID
			reg.Close(sessionID)
		},
	})
	reg.Add(s)

	if err := s.RemoveVideo(); err != nil {
		t.Fatalf("RemoveVideo() error = %v", err)
	}
	if removed != s.VideoID {
		t.Fatal("remove hook not called")
	}
	if _, err := reg.Get(s.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Get() error = %v, want ErrSessionNotFound", err)
	}
	if _, err := s.AddClip(1, 5); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("AddClip() on closed session error = %v", err)
	}
}

func TestCommandLog_CollapsesPlayState(t *testing.T) {
	var l CommandLog
	l.Seek(3)
	l.SetPlaying(true)
	l.SetPlaying(false)
	l.SetPlaybackRate(2)

	got := l.Drain()
	want := []Command{{Kind: CommandSeek, Value: 3}, {Kind: CommandPause}, {Kind: CommandRate, Value: 2}}
	if len(got) != len(want) {
		t.Fatalf("Drain() = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Drain() = %+v, want %+v", got, want)
		}
	}
	if l.Drain() != nil {
		t.Fatal("Drain() did not clear")
	}
}
