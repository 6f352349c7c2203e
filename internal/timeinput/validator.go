// Package timeinput runs the per-keystroke pipeline behind the numeric
// hours/minutes/seconds fields of each clip boundary.
package timeinput

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"videothingy/clipdeck/internal/clips"
	"videothingy/clipdeck/internal/timecode"
)

var (
	ErrNonDigit     = errors.New("input must contain only digits")
	ErrUnknownField = errors.New("unknown time field")
)

const (
	MsgStartAfterEnd   = "Start time must be less than end time"
	MsgExceedsDuration = "Time cannot exceed video duration (%s)"
	MsgTooShort        = "Clip must be at least 1 second long"
	MsgOutOfBounds     = "Time is outside the video"
)

// Boundary selects a clip's start or end.
type Boundary string

const (
	Start Boundary = "start"
	End   Boundary = "end"
)

// Field selects one text field of a boundary.
type Field string

const (
	Hours   Field = "hours"
	Minutes Field = "minutes"
	Seconds Field = "seconds"
)

// Shadow holds the displayed fields for both boundaries of one clip.
type Shadow struct {
	Start timecode.TimeInput `json:"start"`
	End   timecode.TimeInput `json:"end"`
}

func shadowOf(c clips.Clip) Shadow {
	return Shadow{Start: timecode.FromSeconds(c.StartTime), End: timecode.FromSeconds(c.EndTime)}
}

// Result describes what a keystroke did.
type Result struct {
	Applied bool       `json:"applied"`
	Message string     `json:"message,omitempty"`
	Clip    clips.Clip `json:"clip"`
	Shadow  Shadow     `json:"shadow"`
}

// Validator keeps one Shadow per clip and feeds valid edits to the model.
// Shadows follow the model whenever a clip changes through any other path.
type Validator struct {
	model   *clips.Model
	shadows map[uuid.UUID]Shadow
	seen    map[uuid.UUID]clips.Clip
	errs    map[uuid.UUID]string
	editing uuid.UUID
}

// New returns a Validator subscribed to model.
func New(model *clips.Model) *Validator {
	v := &Validator{
		model:   model,
		shadows: make(map[uuid.UUID]Shadow),
		seen:    make(map[uuid.UUID]clips.Clip),
		errs:    make(map[uuid.UUID]string),
	}
	v.sync(model.List())
	model.OnChange(v.sync)
	return v
}

// Edit applies one field edit. Non-digit input is rejected without touching
// anything. Otherwise the shadow takes the raw value and, when both
// boundaries resolve to a valid range, the clip is updated.
func (v *Validator) Edit(id uuid.UUID, b Boundary, f Field, raw string) (Result, error) {
	c, ok := v.model.Get(id)
	if !ok {
		return Result{}, fmt.Errorf("edit %s %s: %w", b, f, clips.ErrNotFound)
	}
	if !timecode.IsDigits(raw) {
		return v.result(c, false), fmt.Errorf("%s %s: %w", b, f, ErrNonDigit)
	}

	sh := v.shadows[id]
	var target *timecode.TimeInput
	switch b {
	case Start:
		target = &sh.Start
	case End:
		target = &sh.End
	default:
		return v.result(c, false), fmt.Errorf("%w: boundary %q", ErrUnknownField, b)
	}
	switch f {
	case Hours:
		target.Hours = raw
	case Minutes:
		target.Minutes = raw
	case Seconds:
		target.Seconds = raw
	default:
		return v.result(c, false), fmt.Errorf("%w: field %q", ErrUnknownField, f)
	}
	v.shadows[id] = sh

	start, err := timecode.ToSeconds(sh.Start)
	if err != nil {
		return v.result(c, false), nil
	}
	end, err := timecode.ToSeconds(sh.End)
	if err != nil {
		return v.result(c, false), nil
	}

	duration := v.model.Duration()
	switch {
	case start >= end:
		v.errs[id] = MsgStartAfterEnd
		return v.result(c, false), nil
	case end > duration:
		v.errs[id] = fmt.Sprintf(MsgExceedsDuration, timecode.FormatClock(duration))
		return v.result(c, false), nil
	}

	v.editing = id
	updated, err := v.model.Update(id, clips.Patch{StartTime: &start, EndTime: &end})
	v.editing = uuid.Nil
	if err != nil {
		v.errs[id] = message(err, duration)
		return v.result(c, false), nil
	}
	delete(v.errs, id)
	return v.result(updated, true), nil
}

// Blur re-renders a clip's shadow from the model in canonical form, e.g.
// once focus leaves a field left empty.
func (v *Validator) Blur(id uuid.UUID) (Shadow, error) {
	c, ok := v.model.Get(id)
	if !ok {
		return Shadow{}, fmt.Errorf("blur: %w", clips.ErrNotFound)
	}
	v.shadows[id] = shadowOf(c)
	delete(v.errs, id)
	return v.shadows[id], nil
}

// Shadow returns the displayed fields for a clip.
func (v *Validator) Shadow(id uuid.UUID) (Shadow, bool) {
	sh, ok := v.shadows[id]
	return sh, ok
}

// Error returns the message shown under a clip's fields, if any.
func (v *Validator) Error(id uuid.UUID) string {
	return v.errs[id]
}

func (v *Validator) result(c clips.Clip, applied bool) Result {
	return Result{Applied: applied, Message: v.errs[c.ID], Clip: c, Shadow: v.shadows[c.ID]}
}

// sync refreshes shadows of clips that changed since last seen and drops
// state for removed clips. The clip being edited keeps its raw shadow.
func (v *Validator) sync(list []clips.Clip) {
	live := make(map[uuid.UUID]struct{}, len(list))
	for _, c := range list {
		live[c.ID] = struct{}{}
		prev, known := v.seen[c.ID]
		v.seen[c.ID] = c
		if c.ID == v.editing {
			continue
		}
		if !known || prev != c {
			v.shadows[c.ID] = shadowOf(c)
			delete(v.errs, c.ID)
		}
	}
	for id := range v.seen {
		if _, ok := live[id]; !ok {
			delete(v.seen, id)
			delete(v.shadows, id)
			delete(v.errs, id)
		}
	}
}

func message(err error, duration float64) string {
	switch clips.RejectionReason(err) {
	case clips.ReasonInverted:
		return MsgStartAfterEnd
	case clips.ReasonTooShort:
		return MsgTooShort
	case clips.ReasonOutOfBounds:
		return fmt.Sprintf(MsgExceedsDuration, timecode.FormatClock(duration))
	default:
		return MsgOutOfBounds
	}
}
