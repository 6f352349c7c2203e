package models

import (
	"encoding/json"
	"fmt"

	"videothingy/clipdeck/internal/transcript"
)

// TranscriptionData is the transcript stored with a source video.
type TranscriptionData struct {
	Text     string              `json:"text"`
	Segments []TranscriptSegment `json:"segments"`
}

// TranscriptSegment is one timed line. EndTime is missing for some
// segments, usually the last.
type TranscriptSegment struct {
	Text      string   `json:"text"`
	StartTime float64  `json:"start_time"`
	EndTime   *float64 `json:"end_time,omitempty"`
}

// ParseTranscription decodes the stored JSON; empty input is no transcript.
func ParseTranscription(raw json.RawMessage) (*TranscriptionData, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return &TranscriptionData{}, nil
	}
	var td TranscriptionData
	if err := json.Unmarshal(raw, &td); err != nil {
		return nil, fmt.Errorf("decode transcription: %w", err)
	}
	return &td, nil
}

// Lines converts the segments into editor transcript lines.
func (td *TranscriptionData) Lines() []transcript.Line {
	if td == nil {
		return nil
	}
	lines := make([]transcript.Line, 0, len(td.Segments))
	for _, s := range td.Segments {
		lines = append(lines, transcript.Line{Text: s.Text, Start: s.StartTime, End: s.EndTime})
	}
	return lines
}
