package clips

import (
	"fmt"

	"github.com/google/uuid"
)

// Listener receives the full clip list after every successful mutation.
type Listener func(clips []Clip)

// Model is the authoritative clip set for one media source. It is not safe
// for concurrent use; callers serialize access (see editor.Session).
type Model struct {
	duration  float64
	clips     []Clip
	listeners []Listener
}

// NewModel returns an empty model bounded by duration seconds.
func NewModel(duration float64) *Model {
	if !finite(duration) || duration < 0 {
		duration = 0
	}
	return &Model{duration: duration}
}

func (m *Model) Duration() float64 {
	return m.duration
}

// OnChange registers a listener. Listeners run synchronously in
// registration order.
func (m *Model) OnChange(l Listener) {
	m.listeners = append(m.listeners, l)
}

// Add validates and appends a new clip.
func (m *Model) Add(start, end float64) (Clip, error) {
	c, err := TryMakeClip(start, end, m.duration)
	if err != nil {
		return Clip{}, err
	}
	m.clips = append(m.clips, c)
	m.notify()
	return c, nil
}

// Insert appends a clip that already carries an id, e.g. one restored from
// storage.
func (m *Model) Insert(c Clip) error {
	if c.ID == uuid.Nil {
		return fmt.Errorf("insert clip: %w: nil id", ErrDuplicateID)
	}
	if m.index(c.ID) >= 0 {
		return fmt.Errorf("insert clip %s: %w", c.ID, ErrDuplicateID)
	}
	if err := Validate(c.StartTime, c.EndTime, m.duration); err != nil {
		return fmt.Errorf("insert clip %s: %w", c.ID, err)
	}
	m.clips = append(m.clips, c)
	m.notify()
	return nil
}

// Update applies p to the clip and re-validates the whole clip. A rejected
// update leaves the model untouched.
func (m *Model) Update(id uuid.UUID, p Patch) (Clip, error) {
	i := m.index(id)
	if i < 0 {
		return Clip{}, fmt.Errorf("update clip %s: %w", id, ErrNotFound)
	}
	next := p.apply(m.clips[i])
	if err := Validate(next.StartTime, next.EndTime, m.duration); err != nil {
		return m.clips[i], err
	}
	m.clips[i] = next
	m.notify()
	return next, nil
}

// Remove deletes the clip with id. Unknown ids are ignored.
func (m *Model) Remove(id uuid.UUID) {
	i := m.index(id)
	if i < 0 {
		return
	}
	m.clips = append(m.clips[:i], m.clips[i+1:]...)
	m.notify()
}

// Get returns the clip with id.
func (m *Model) Get(id uuid.UUID) (Clip, bool) {
	i := m.index(id)
	if i < 0 {
		return Clip{}, false
	}
	return m.clips[i], true
}

// List returns a copy of the clips in insertion order.
func (m *Model) List() []Clip {
	out := make([]Clip, len(m.clips))
	copy(out, m.clips)
	return out
}

func (m *Model) Len() int {
	return len(m.clips)
}

// Reset drops every clip and rebinds the model to a new duration. Listeners
// are kept and notified with the empty list.
func (m *Model) Reset(duration float64) {
	if !finite(duration) || duration < 0 {
		duration = 0
	}
	m.duration = duration
	m.clips = nil
	m.notify()
}

func (m *Model) index(id uuid.UUID) int {
	for i := range m.clips {
		if m.clips[i].ID == id {
			return i
		}
	}
	return -1
}

func (m *Model) notify() {
	if len(m.listeners) == 0 {
		return
	}
	snapshot := m.List()
	for _, l := range m.listeners {
		l(snapshot)
	}
}
