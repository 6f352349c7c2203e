package editor

// Command is one imperative instruction for the client-side player.
type Command struct {
	Kind  string  `json:"kind"`
	Value float64 `json:"value,omitempty"`
}

const (
	CommandSeek  = "seek"
	CommandPlay  = "play"
	CommandPause = "pause"
	CommandRate  = "rate"
)

// CommandLog implements playback.Media by queueing commands until the client
// collects them with the next response.
type CommandLog struct {
	pending []Command
}

func (l *CommandLog) Seek(seconds float64) {
	l.pending = append(l.pending, Command{Kind: CommandSeek, Value: seconds})
}

func (l *CommandLog) SetPlaying(playing bool) {
	kind := CommandPause
	if playing {
		kind = CommandPlay
	}
	// collapse repeats; the player only cares about the latest state
	if n := len(l.pending); n > 0 && (l.pending[n-1].Kind == CommandPlay || l.pending[n-1].Kind == CommandPause) {
		l.pending[n-1].Kind = kind
		return
	}
	l.pending = append(l.pending, Command{Kind: kind})
}

func (l *CommandLog) SetPlaybackRate(rate float64) {
	l.pending = append(l.pending, Command{Kind: CommandRate, Value: rate})
}

// Drain returns and clears the queued commands.
func (l *CommandLog) Drain() []Command {
	out := l.pending
	l.pending = nil
	return out
}

func (l *CommandLog) Reset() {
	l.pending = nil
}

// Event is a notification raised by the core for the host to mirror.
type Event struct {
	Kind    string  `json:"kind"`
	Time    float64 `json:"time,omitempty"`
	Playing bool    `json:"playing,omitempty"`
	Clips   int     `json:"clips,omitempty"`
}

const (
	EventTimeClick      = "time_click"
	EventPlaybackChange = "playback_change"
	EventClipsChange    = "clips_change"
	EventRemoveVideo    = "remove_video"
)
