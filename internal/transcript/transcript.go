// Package transcript turns contiguous transcript-line selections into clips
// and answers simple queries over the read-only line list.
package transcript

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultFallbackPad is added to the last line's start when neither its end
// nor a following line is known.
const DefaultFallbackPad = 3.0

var (
	ErrEmptySelection = errors.New("no transcript lines selected")
	ErrNotContiguous  = errors.New("transcript selection is not contiguous")
	ErrLineOutOfRange = errors.New("transcript line out of range")
)

// Line is one timed transcript line. End is nil when upstream data omits it.
type Line struct {
	Text  string   `json:"text"`
	Start float64  `json:"start"`
	End   *float64 `json:"end,omitempty"`
}

// Transcript is an immutable ordered list of lines for one editing session.
type Transcript struct {
	lines []Line
}

func New(lines []Line) *Transcript {
	cp := make([]Line, len(lines))
	copy(cp, lines)
	return &Transcript{lines: cp}
}

func (t *Transcript) Len() int {
	if t == nil {
		return 0
	}
	return len(t.lines)
}

// Lines returns a copy of the lines.
func (t *Transcript) Lines() []Line {
	out := make([]Line, t.Len())
	if t != nil {
		copy(out, t.lines)
	}
	return out
}

func (t *Transcript) Line(i int) (Line, error) {
	if i < 0 || i >= t.Len() {
		return Line{}, fmt.Errorf("line %d: %w", i, ErrLineOutOfRange)
	}
	return t.lines[i], nil
}

// Derive computes the clip bounds for lines lo..hi inclusive. The end comes
// from the last line's end, else the next line's start, else the last
// line's start plus pad. The result is not validated; clips.TryMakeClip
// rejects a padded end past the media.
func (t *Transcript) Derive(lo, hi int, pad float64) (start, end float64, err error) {
	if lo > hi {
		return 0, 0, ErrEmptySelection
	}
	if lo < 0 || hi >= t.Len() {
		return 0, 0, fmt.Errorf("derive %d..%d: %w", lo, hi, ErrLineOutOfRange)
	}
	if pad <= 0 {
		pad = DefaultFallbackPad
	}
	first, last := t.lines[lo], t.lines[hi]
	start = first.Start
	switch {
	case last.End != nil:
		end = *last.End
	case hi+1 < len(t.lines):
		end = t.lines[hi+1].Start
	default:
		end = last.Start + pad
	}
	return start, end, nil
}

// DeriveIndices is Derive over an explicit index set, which must be sorted
// and contiguous.
func (t *Transcript) DeriveIndices(indices []int, pad float64) (float64, float64, error) {
	if len(indices) == 0 {
		return 0, 0, ErrEmptySelection
	}
	for i := 1; i < len(indices); i++ {
		if indices[i] != indices[i-1]+1 {
			return 0, 0, fmt.Errorf("indices %v: %w", indices, ErrNotContiguous)
		}
	}
	return t.Derive(indices[0], indices[len(indices)-1], pad)
}

// LineAt returns the index of the last line starting at or before seconds,
// or -1 when seconds precedes every line.
func (t *Transcript) LineAt(seconds float64) int {
	idx := -1
	for i := 0; i < t.Len(); i++ {
		if t.lines[i].Start > seconds {
			break
		}
		idx = i
	}
	return idx
}

// Search returns the indices of lines containing q, ignoring case.
func (t *Transcript) Search(q string) *Matches {
	q = strings.ToLower(strings.TrimSpace(q))
	m := &Matches{Query: q}
	if q == "" {
		return m
	}
	for i := 0; i < t.Len(); i++ {
		if strings.Contains(strings.ToLower(t.lines[i].Text), q) {
			m.Indices = append(m.Indices, i)
		}
	}
	return m
}

// Matches is a wrap-around cursor over search results.
type Matches struct {
	Query   string `json:"query"`
	Indices []int  `json:"indices"`
	pos     int
}

// Current returns the focused match, or -1 when there are none.
func (m *Matches) Current() int {
	if m == nil || len(m.Indices) == 0 {
		return -1
	}
	return m.Indices[m.pos]
}

// Position is the zero-based index of the focused match.
func (m *Matches) Position() int {
	if m == nil {
		return 0
	}
	return m.pos
}

func (m *Matches) Next() int {
	if m == nil || len(m.Indices) == 0 {
		return -1
	}
	m.pos = (m.pos + 1) % len(m.Indices)
	return m.Indices[m.pos]
}

func (m *Matches) Prev() int {
	if m == nil || len(m.Indices) == 0 {
		return -1
	}
	m.pos = (m.pos - 1 + len(m.Indices)) % len(m.Indices)
	return m.Indices[m.pos]
}
