package editor

import (
	"github.com/google/uuid"

	"videothingy/clipdeck/internal/clips"
	"videothingy/clipdeck/internal/playback"
	"videothingy/clipdeck/internal/timeinput"
)

// ClipView is a clip with its text-field state.
type ClipView struct {
	clips.Clip
	Shadow   timeinput.Shadow `json:"inputs"`
	Error    string           `json:"error,omitempty"`
	Selected bool             `json:"selected"`
}

// DragView describes the drag controller.
type DragView struct {
	State  string    `json:"state"`
	ClipID uuid.UUID `json:"clip_id"`
}

// View is the full session snapshot returned to the client.
type View struct {
	ID        uuid.UUID      `json:"id"`
	VideoID   uuid.UUID      `json:"video_id"`
	Source    string         `json:"source"`
	Duration  float64        `json:"duration"`
	Clips     []ClipView     `json:"clips"`
	Playback  playback.State `json:"playback"`
	Drag      DragView       `json:"drag"`
	Selection []int          `json:"selection"`
	Search    *SearchView    `json:"search,omitempty"`
	Commands  []Command      `json:"commands"`
	Events    []Event        `json:"events"`
}

// View snapshots the session. With drain set, queued player commands and
// events are handed over and cleared.
func (s *Session) View(drain bool) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.player.State()
	list := s.model.List()
	cv := make([]ClipView, 0, len(list))
	for _, c := range list {
		sh, _ := s.inputs.Shadow(c.ID)
		cv = append(cv, ClipView{
			Clip:     c,
			Shadow:   sh,
			Error:    s.inputs.Error(c.ID),
			Selected: c.ID == st.SelectedClipID,
		})
	}

	v := View{
		ID:        s.ID,
		VideoID:   s.VideoID,
		Source:    s.source,
		Duration:  s.model.Duration(),
		Clips:     cv,
		Playback:  st,
		Drag:      DragView{State: s.drag.State().String(), ClipID: s.drag.ClipID()},
		Selection: s.selector.Selected(),
		Search:    viewOf(s.matches),
		Commands:  []Command{},
		Events:    []Event{},
	}
	if v.Selection == nil {
		v.Selection = []int{}
	}
	if drain {
		if cmds := s.media.Drain(); cmds != nil {
			v.Commands = cmds
		}
		if s.events != nil {
			v.Events = s.events
			s.events = nil
		}
	}
	return v
}
