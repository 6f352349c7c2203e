// Package timecode converts between seconds and the hours/minutes/seconds
// text fields a user edits.
package timecode

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

var ErrInvalid = errors.New("invalid time input")

const maxHours = math.MaxInt64 / 7200

// TimeInput is the display-layer shadow of one clip boundary. Fields hold
// raw digit strings and may be empty while the user is typing.
type TimeInput struct {
	Hours   string `json:"hours"`
	Minutes string `json:"minutes"`
	Seconds string `json:"seconds"`
}

// FromSeconds floors s to whole seconds and splits it into canonical,
// non-padded fields. Negative and non-finite values map to zero.
func FromSeconds(s float64) TimeInput {
	total := wholeSeconds(s)
	return TimeInput{
		Hours:   strconv.FormatInt(total/3600, 10),
		Minutes: strconv.FormatInt(total%3600/60, 10),
		Seconds: strconv.FormatInt(total%60, 10),
	}
}

// ToSeconds parses t. Empty fields count as zero. Any non-digit character,
// or minutes/seconds of 60 or more, yields ErrInvalid.
func ToSeconds(t TimeInput) (float64, error) {
	h, err := parseField("hours", t.Hours)
	if err != nil {
		return 0, err
	}
	m, err := parseField("minutes", t.Minutes)
	if err != nil {
		return 0, err
	}
	s, err := parseField("seconds", t.Seconds)
	if err != nil {
		return 0, err
	}
	if m >= 60 {
		return 0, fmt.Errorf("%w: minutes %d out of range", ErrInvalid, m)
	}
	if s >= 60 {
		return 0, fmt.Errorf("%w: seconds %d out of range", ErrInvalid, s)
	}
	if h > maxHours {
		return 0, fmt.Errorf("%w: hours %d out of range", ErrInvalid, h)
	}
	return float64(h*3600 + m*60 + s), nil
}

// Canonical rewrites t without padding and with empty fields as "0". It
// returns ErrInvalid when t does not parse.
func Canonical(t TimeInput) (TimeInput, error) {
	s, err := ToSeconds(t)
	if err != nil {
		return t, err
	}
	return FromSeconds(s), nil
}

// IsDigits reports whether raw holds only ASCII digits. The empty string
// counts as digits.
func IsDigits(raw string) bool {
	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return false
		}
	}
	return true
}

// FormatClock renders seconds as H:MM:SS, or M:SS under an hour.
func FormatClock(s float64) string {
	total := wholeSeconds(s)
	h, m, sec := total/3600, total%3600/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%d:%02d", m, sec)
}

func parseField(name, raw string) (int64, error) {
	if raw == "" {
		return 0, nil
	}
	if !IsDigits(raw) {
		return 0, fmt.Errorf("%w: %s %q is not numeric", ErrInvalid, name, raw)
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q: %v", ErrInvalid, name, raw, err)
	}
	return v, nil
}

func wholeSeconds(s float64) int64 {
	if math.IsNaN(s) || s <= 0 {
		return 0
	}
	if math.IsInf(s, 1) || s > math.MaxInt64/2 {
		return math.MaxInt64 / 2
	}
	return int64(math.Floor(s))
}
