package transcript

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"videothingy/clipdeck/internal/clips"
	"videothingy/clipdeck/internal/gesture"
)

func ptr(f float64) *float64 { return &f }

func sample() *Transcript {
	return New([]Line{
		{Text: "Hello there", Start: 0, End: ptr(2)},
		{Text: "general KENOBI", Start: 2},
		{Text: "you are a bold one", Start: 5, End: ptr(7)},
		{Text: "kill him", Start: 8},
	})
}

func TestDerive(t *testing.T) {
	tr := sample()
	tests := []struct {
		name      string
		lo, hi    int
		wantStart float64
		wantEnd   float64
		wantErr   error
	}{
		{"end inferred from next line", 0, 1, 0, 5, nil},
		{"explicit end", 1, 2, 2, 7, nil},
		{"last line uses pad", 3, 3, 8, 11, nil},
		{"out of range", 2, 9, 0, 0, ErrLineOutOfRange},
		{"inverted range", 2, 1, 0, 0, ErrEmptySelection},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := tr.Derive(tt.lo, tt.hi, 0)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Derive() error = %v, want %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if start != tt.wantStart || end != tt.wantEnd {
				t.Fatalf("Derive() = (%v, %v), want (%v, %v)", start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestDeriveIndices(t *testing.T) {
	tr := New([]Line{
		{Start: 0, End: ptr(2)},
		{Start: 2},
		{Start: 5, End: ptr(7)},
	})
	start, end, err := tr.DeriveIndices([]int{0, 1}, DefaultFallbackPad)
	if err != nil {
		t.Fatalf("DeriveIndices() error = %v", err)
	}
	if start != 0 || end != 5 {
		t.Fatalf("DeriveIndices() = (%v, %v), want (0, 5)", start, end)
	}

	if _, _, err := tr.DeriveIndices([]int{0, 2}, 0); !errors.Is(err, ErrNotContiguous) {
		t.Fatalf("DeriveIndices() error = %v, want ErrNotContiguous", err)
	}
	if _, _, err := tr.DeriveIndices(nil, 0); !errors.Is(err, ErrEmptySelection) {
		t.Fatalf("DeriveIndices() error = %v, want ErrEmptySelection", err)
	}
}

func TestLineAt(t *testing.T) {
	tr := sample()
	tests := []struct {
		at   float64
		want int
	}{
		{-1, -1},
		{0, 0},
		{1.9, 0},
		{2, 1},
		{7.5, 2},
		{500, 3},
	}
	for _, tt := range tests {
		if got := tr.LineAt(tt.at); got != tt.want {
			t.Errorf("LineAt(%v) = %d, want %d", tt.at, got, tt.want)
		}
	}
}

func TestSearch_WrapAround(t *testing.T) {
	tr := sample()
	m := tr.Search("  KEN ")
	if !reflect.DeepEqual(m.Indices, []int{1}) {
		t.Fatalf("Indices = %v, want [1]", m.Indices)
	}

	m = tr.Search("NE")
	want := []int{1, 2}
	if !reflect.DeepEqual(m.Indices, want) {
		t.Fatalf("Indices = %v, want %v", m.Indices, want)
	}
	if m.Current() != 1 {
		t.Fatalf("Current() = %d, want 1", m.Current())
	}
	if m.Next() != 2 || m.Next() != 1 {
		t.Fatal("Next() did not wrap around")
	}
	if m.Prev() != 2 {
		t.Fatal("Prev() did not wrap around")
	}

	empty := tr.Search("")
	if empty.Current() != -1 || empty.Next() != -1 || empty.Prev() != -1 {
		t.Fatal("empty query should have no matches")
	}
}

func TestSelector_CommitScenario(t *testing.T) {
	tr := New([]Line{
		{Start: 0, End: ptr(2)},
		{Start: 2},
		{Start: 5, End: ptr(7)},
	})
	sel := NewSelector(tr, nil, 0, nil)
	m := clips.NewModel(120)

	sel.Begin(0)
	sel.Extend(1)
	c, err := sel.Commit(m)
	if err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if c.StartTime != 0 || c.EndTime != 5 {
		t.Fatalf("clip = (%v, %v), want (0, 5)", c.StartTime, c.EndTime)
	}
	if _, _, ok := sel.Range(); ok {
		t.Fatal("selection survived commit")
	}
	if m.Len() != 1 {
		t.Fatalf("model has %d clips, want 1", m.Len())
	}
}

func TestSelector_ExtendIsNotCumulative(t *testing.T) {
	sel := NewSelector(sample(), nil, 0, nil)
	sel.Begin(2)
	sel.Extend(3)
	sel.Extend(0)
	if got := sel.Selected(); !reflect.DeepEqual(got, []int{0, 1, 2}) {
		t.Fatalf("Selected() = %v, want [0 1 2]", got)
	}
}

func TestSelector_Truncate(t *testing.T) {
	sel := NewSelector(sample(), nil, 0, nil)
	sel.Begin(0)
	sel.Extend(3)

	sel.Truncate(1)
	if got := sel.Selected(); !reflect.DeepEqual(got, []int{0, 1}) {
		t.Fatalf("after truncate Selected() = %v, want [0 1]", got)
	}
	sel.Truncate(2)
	if got := sel.Selected(); !reflect.DeepEqual(got, []int{0, 1, 2}) {
		t.Fatalf("after click outside Selected() = %v, want [0 1 2]", got)
	}

	sel.Clear()
	sel.Truncate(3)
	if got := sel.Selected(); !reflect.DeepEqual(got, []int{3}) {
		t.Fatalf("truncate with no selection Selected() = %v, want [3]", got)
	}
}

func TestSelector_RejectedDerivationAddsNothing(t *testing.T) {
	tr := New([]Line{{Text: "broken", Start: math.NaN(), End: ptr(4)}})
	sel := NewSelector(tr, nil, 0, nil)
	m := clips.NewModel(120)

	sel.Begin(0)
	if _, err := sel.Commit(m); !errors.Is(err, clips.ErrOutOfBounds) {
		t.Fatalf("Commit() error = %v, want ErrOutOfBounds", err)
	}
	if m.Len() != 0 {
		t.Fatal("rejected derivation added a clip")
	}
	if _, _, ok := sel.Range(); ok {
		t.Fatal("selection survived a rejected commit")
	}
	if _, err := sel.Commit(m); !errors.Is(err, ErrEmptySelection) {
		t.Fatalf("Commit() on empty error = %v, want ErrEmptySelection", err)
	}
}

func TestSelector_PaddedEndPastMediaIsRejected(t *testing.T) {
	tr := New([]Line{
		{Start: 110, End: ptr(118)},
		{Start: 118},
	})
	sel := NewSelector(tr, nil, 0, nil)
	m := clips.NewModel(120)

	sel.Begin(1)
	if _, err := sel.Commit(m); !errors.Is(err, clips.ErrOutOfBounds) {
		t.Fatalf("Commit() error = %v, want ErrOutOfBounds", err)
	}
	if m.Len() != 0 {
		t.Fatal("padded end was cut to the media instead of rejected")
	}
}

func TestSelector_PointerSweep(t *testing.T) {
	sel := NewSelector(sample(), nil, 0, nil)
	sel.PointerEnter(2)
	if _, _, ok := sel.Range(); ok {
		t.Fatal("hover without press selected lines")
	}
	sel.PointerDown(1)
	sel.PointerEnter(2)
	sel.PointerEnter(3)
	sel.PointerUp()
	sel.PointerEnter(0)
	if got := sel.Selected(); !reflect.DeepEqual(got, []int{1, 2, 3}) {
		t.Fatalf("Selected() = %v, want [1 2 3]", got)
	}
}

func TestSelector_TouchLongPress(t *testing.T) {
	clock := &gesture.ManualClock{}
	sel := NewSelector(sample(), gesture.NewLongPress(clock, 0, 0), 0, nil)

	if err := sel.TouchStart(1, 20, 40); err != nil {
		t.Fatalf("TouchStart() error = %v", err)
	}
	if _, _, ok := sel.Range(); ok {
		t.Fatal("selected before the hold")
	}
	clock.Advance(500 * time.Millisecond)
	if !sel.Sweeping() {
		t.Fatal("long-press did not arm the sweep")
	}
	if !sel.TouchMove(3, 20, 200) {
		t.Fatal("armed touch move not consumed")
	}
	sel.TouchEnd()
	if got := sel.Selected(); !reflect.DeepEqual(got, []int{1, 2, 3}) {
		t.Fatalf("Selected() = %v, want [1 2 3]", got)
	}
}

func TestSelector_TouchSwipeScrolls(t *testing.T) {
	clock := &gesture.ManualClock{}
	sel := NewSelector(sample(), gesture.NewLongPress(clock, 0, 0), 0, nil)

	sel.TouchStart(1, 20, 40)
	if sel.TouchMove(1, 20, 90) {
		t.Fatal("swipe past jitter was consumed")
	}
	clock.Advance(time.Second)
	if _, _, ok := sel.Range(); ok {
		t.Fatal("swipe selected lines")
	}
}
