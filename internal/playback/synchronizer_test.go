package playback

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"videothingy/clipdeck/internal/clips"
)

type fakeMedia struct {
	seeks   []float64
	playing []bool
	rates   []float64
}

func (f *fakeMedia) Seek(s float64)            { f.seeks = append(f.seeks, s) }
func (f *fakeMedia) SetPlaying(p bool)         { f.playing = append(f.playing, p) }
func (f *fakeMedia) SetPlaybackRate(r float64) { f.rates = append(f.rates, r) }

func newSync(t *testing.T, duration float64) (*Synchronizer, *clips.Model, *fakeMedia) {
	t.Helper()
	m := clips.NewModel(duration)
	media := &fakeMedia{}
	s := NewSynchronizer(m, media, nil)
	s.SetReady(true)
	return s, m, media
}

func TestTick_AutoPauseAtClipEnd(t *testing.T) {
	s, m, media := newSync(t, 120)
	c, _ := m.Add(10, 70)

	var changes []bool
	s.OnPlaybackChange = func(p bool) { changes = append(changes, p) }

	if err := s.SelectClip(c.ID); err != nil {
		t.Fatalf("SelectClip() error = %v", err)
	}
	seeks := len(media.seeks)

	s.Tick(69.9)
	if !s.State().IsPlaying {
		t.Fatal("paused before the clip end")
	}
	s.Tick(70)
	st := s.State()
	if st.IsPlaying {
		t.Fatal("still playing at clip end")
	}
	if st.ActiveClipID != uuid.Nil {
		t.Fatalf("ActiveClipID = %v, want nil", st.ActiveClipID)
	}
	if len(media.seeks) != seeks {
		t.Fatalf("auto-pause seeked: %v", media.seeks)
	}
	if len(changes) != 2 || changes[0] != true || changes[1] != false {
		t.Fatalf("playback changes = %v, want [true false]", changes)
	}
}

func TestTick_LateTickStillPauses(t *testing.T) {
	s, m, _ := newSync(t, 120)
	c, _ := m.Add(10, 70)
	s.SelectClip(c.ID)

	s.Tick(72.4)
	if s.State().IsPlaying {
		t.Fatal("tick past the boundary did not pause")
	}
}

func TestTick_IgnoredWhileBusyOrNotReady(t *testing.T) {
	s, _, _ := newSync(t, 120)
	dragging := true
	s.SetBusyProbe(func() bool { return dragging })

	if s.Tick(5) {
		t.Fatal("tick applied during drag")
	}
	dragging = false
	if !s.Tick(5) || s.CurrentTime() != 5 {
		t.Fatalf("tick not applied after drag, CurrentTime = %v", s.CurrentTime())
	}

	s.SetReady(false)
	if s.Tick(9) || s.CurrentTime() != 5 {
		t.Fatal("tick applied before ready")
	}
}

func TestSelectClip_SeeksAndPlays(t *testing.T) {
	s, m, media := newSync(t, 120)
	c, _ := m.Add(10, 70)

	var clicks []float64
	s.OnTimeClick = func(t float64) { clicks = append(clicks, t) }

	s.SelectClip(c.ID)
	st := s.State()
	if st.CurrentTime != 10 || !st.IsPlaying || st.ActiveClipID != c.ID {
		t.Fatalf("state = %+v", st)
	}
	if len(media.seeks) != 1 || media.seeks[0] != 10 {
		t.Fatalf("seeks = %v, want [10]", media.seeks)
	}
	if len(clicks) != 1 || clicks[0] != 10 {
		t.Fatalf("time clicks = %v, want [10]", clicks)
	}
}

func TestSelectClip_ReselectKeepsPosition(t *testing.T) {
	s, m, media := newSync(t, 120)
	c, _ := m.Add(10, 70)

	s.SelectClip(c.ID)
	s.Tick(30)
	s.Pause()

	s.SelectClip(c.ID)
	st := s.State()
	if st.CurrentTime != 30 {
		t.Fatalf("CurrentTime = %v, want 30", st.CurrentTime)
	}
	if st.IsPlaying {
		t.Fatal("re-select changed play state")
	}
	if len(media.seeks) != 1 {
		t.Fatalf("re-select seeked: %v", media.seeks)
	}
}

func TestSelectClip_SecondClipReplacesFirst(t *testing.T) {
	s, m, media := newSync(t, 120)
	a, _ := m.Add(10, 70)
	b, _ := m.Add(20, 40)

	s.SelectClip(a.ID)
	s.SelectClip(b.ID)
	if st := s.State(); st.ActiveClipID != b.ID || st.SelectedClipID != b.ID {
		t.Fatalf("state = %+v, want b active", st)
	}

	// going back to a is not a consecutive re-select
	s.SelectClip(a.ID)
	if got := media.seeks[len(media.seeks)-1]; got != 10 {
		t.Fatalf("last seek = %v, want 10", got)
	}
}

func TestScrub_DeselectsAndSeeks(t *testing.T) {
	s, m, media := newSync(t, 120)
	c, _ := m.Add(10, 70)
	s.SelectClip(c.ID)

	s.Scrub(200)
	st := s.State()
	if st.SelectedClipID != uuid.Nil || st.ActiveClipID != uuid.Nil {
		t.Fatalf("scrub kept selection: %+v", st)
	}
	if st.CurrentTime != 120 {
		t.Fatalf("CurrentTime = %v, want clamped 120", st.CurrentTime)
	}
	if media.seeks[len(media.seeks)-1] != 120 {
		t.Fatalf("seeks = %v", media.seeks)
	}
}

func TestSelectClip_Unknown(t *testing.T) {
	s, _, _ := newSync(t, 120)
	if err := s.SelectClip(uuid.New()); !errors.Is(err, clips.ErrNotFound) {
		t.Fatalf("SelectClip() error = %v, want ErrNotFound", err)
	}
}

func TestRemovedClipDropsFocus(t *testing.T) {
	s, m, _ := newSync(t, 120)
	c, _ := m.Add(10, 70)
	s.SelectClip(c.ID)

	m.Remove(c.ID)
	st := s.State()
	if st.ActiveClipID != uuid.Nil || st.SelectedClipID != uuid.Nil {
		t.Fatalf("removed clip still focused: %+v", st)
	}
}

func TestSetPlaybackRate(t *testing.T) {
	s, _, media := newSync(t, 120)
	if err := s.SetPlaybackRate(1.5); err != nil {
		t.Fatalf("SetPlaybackRate() error = %v", err)
	}
	if len(media.rates) != 1 || media.rates[0] != 1.5 {
		t.Fatalf("rates = %v", media.rates)
	}
	if err := s.SetPlaybackRate(0); !errors.Is(err, ErrInvalidRate) {
		t.Fatalf("SetPlaybackRate(0) error = %v, want ErrInvalidRate", err)
	}
}

func TestReset(t *testing.T) {
	s, m, _ := newSync(t, 120)
	c, _ := m.Add(10, 70)
	s.SelectClip(c.ID)

	s.Reset()
	st := s.State()
	if st.Ready || st.IsPlaying || st.CurrentTime != 0 || st.ActiveClipID != uuid.Nil || st.PlaybackRate != 1 {
		t.Fatalf("state after Reset = %+v", st)
	}
}

func TestClampToDuration(t *testing.T) {
	s, m, _ := newSync(t, 120)
	s.Tick(100)

	m.Reset(50)
	s.ClampToDuration()
	if got := s.CurrentTime(); got != 50 {
		t.Fatalf("CurrentTime() = %v after shrinking to 50, want 50", got)
	}

	m.Reset(200)
	s.ClampToDuration()
	if got := s.CurrentTime(); got != 50 {
		t.Fatalf("CurrentTime() = %v, a longer duration should not move it", got)
	}
}
