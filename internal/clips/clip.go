// Package clips holds the canonical, duration-bounded set of time ranges a
// user has marked on a media timeline.
package clips

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
)

// MinLength is the shortest clip, in seconds, the model accepts.
const MinLength = 1.0

var (
	ErrOutOfBounds = errors.New("clip out of bounds")
	ErrTooShort    = errors.New("clip too short")
	ErrInverted    = errors.New("clip start must be before end")
	ErrNotFound    = errors.New("clip not found")
	ErrDuplicateID = errors.New("duplicate clip id")
)

// Reason names the invariant a rejected clip violated.
type Reason string

const (
	ReasonNone        Reason = ""
	ReasonOutOfBounds Reason = "OutOfBounds"
	ReasonTooShort    Reason = "TooShort"
	ReasonInverted    Reason = "Inverted"
)

// RejectionReason maps an error returned by the model to its Reason.
func RejectionReason(err error) Reason {
	switch {
	case errors.Is(err, ErrOutOfBounds):
		return ReasonOutOfBounds
	case errors.Is(err, ErrTooShort):
		return ReasonTooShort
	case errors.Is(err, ErrInverted):
		return ReasonInverted
	default:
		return ReasonNone
	}
}

// Clip is a [StartTime, EndTime] sub-range of the source media in seconds.
type Clip struct {
	ID        uuid.UUID `json:"id"`
	StartTime float64   `json:"start_time"`
	EndTime   float64   `json:"end_time"`
}

// Length returns EndTime - StartTime.
func (c Clip) Length() float64 {
	return c.EndTime - c.StartTime
}

// Contains reports whether t lies inside the clip, end exclusive.
func (c Clip) Contains(t float64) bool {
	return t >= c.StartTime && t < c.EndTime
}

// Patch is a partial update; nil fields are left as they are.
type Patch struct {
	StartTime *float64 `json:"start_time,omitempty"`
	EndTime   *float64 `json:"end_time,omitempty"`
}

// apply returns c with the patch fields overlaid.
func (p Patch) apply(c Clip) Clip {
	if p.StartTime != nil {
		c.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		c.EndTime = *p.EndTime
	}
	return c
}

// Validate checks 0 <= start < end <= duration and end-start >= MinLength.
func Validate(start, end, duration float64) error {
	if !finite(start) || !finite(end) {
		return fmt.Errorf("%w: non-numeric boundary (start=%v, end=%v)", ErrOutOfBounds, start, end)
	}
	if start < 0 || end > duration {
		return fmt.Errorf("%w: [%.3f, %.3f] outside [0, %.3f]", ErrOutOfBounds, start, end, duration)
	}
	if start >= end {
		return fmt.Errorf("%w: start %.3f >= end %.3f", ErrInverted, start, end)
	}
	if end-start < MinLength {
		return fmt.Errorf("%w: %.3fs is under the %.0fs minimum", ErrTooShort, end-start, MinLength)
	}
	return nil
}

// MinEndFor returns the smallest end that keeps a clip starting at start at
// least MinLength long. start+MinLength alone can round to a length just
// under the floor.
func MinEndFor(start float64) float64 {
	end := start + MinLength
	for end-start < MinLength {
		end = math.Nextafter(end, math.Inf(1))
	}
	return end
}

// MaxStartFor is the mirror of MinEndFor for a fixed end.
func MaxStartFor(end float64) float64 {
	start := end - MinLength
	for end-start < MinLength {
		start = math.Nextafter(start, math.Inf(-1))
	}
	return start
}

// TryMakeClip is the only constructor for a fresh clip: it assigns a new id
// once the range passes Validate.
func TryMakeClip(start, end, duration float64) (Clip, error) {
	if err := Validate(start, end, duration); err != nil {
		return Clip{}, err
	}
	return Clip{ID: uuid.New(), StartTime: start, EndTime: end}, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
