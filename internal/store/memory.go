package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"videothingy/clipdeck/models"
)

// Memory keeps everything in process. Used in tests and when no database is
// configured.
type Memory struct {
	mu     sync.RWMutex
	videos map[uuid.UUID]models.SourceVideo
	clips  map[uuid.UUID][]models.Clip
	jobs   map[uuid.UUID]models.ProcessingJob
}

func NewMemory() *Memory {
	return &Memory{
		videos: make(map[uuid.UUID]models.SourceVideo),
		clips:  make(map[uuid.UUID][]models.Clip),
		jobs:   make(map[uuid.UUID]models.ProcessingJob),
	}
}

func (m *Memory) CreateSourceVideo(_ context.Context, v *models.SourceVideo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	now := time.Now().UTC()
	v.CreatedAt, v.UpdatedAt = now, now
	m.videos[v.ID] = *v
	return nil
}

func (m *Memory) GetSourceVideo(_ context.Context, id uuid.UUID) (*models.SourceVideo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.videos[id]
	if !ok {
		return nil, fmt.Errorf("source video %s: %w", id, ErrRecordNotFound)
	}
	return &v, nil
}

func (m *Memory) SetSourceDuration(_ context.Context, id uuid.UUID, duration float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.videos[id]
	if !ok {
		return fmt.Errorf("source video %s: %w", id, ErrRecordNotFound)
	}
	v.Duration = &duration
	v.Status = models.SourceStatusReady
	v.UpdatedAt = time.Now().UTC()
	m.videos[id] = v
	return nil
}

func (m *Memory) ListClips(_ context.Context, videoID uuid.UUID) ([]models.Clip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows := append([]models.Clip(nil), m.clips[videoID]...)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Position < rows[j].Position })
	if rows == nil {
		rows = []models.Clip{}
	}
	return rows, nil
}

func (m *Memory) ReplaceClips(_ context.Context, videoID uuid.UUID, rows []models.Clip) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clips[videoID] = append([]models.Clip(nil), rows...)
	return nil
}

func (m *Memory) CreateJob(_ context.Context, job *models.ProcessingJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.Status == "" {
		job.Status = models.JobStatusPending
	}
	now := time.Now().UTC()
	job.CreatedAt, job.UpdatedAt = now, now
	m.jobs[job.ID] = *job
	return nil
}

func (m *Memory) UpdateJob(_ context.Context, id uuid.UUID, status string, output interface{}, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return fmt.Errorf("job %s: %w", id, ErrRecordNotFound)
	}
	if output != nil {
		b, err := json.Marshal(output)
		if err != nil {
			return fmt.Errorf("failed to marshal output details: %w", err)
		}
		job.Metadata = b
	}
	if errMsg != "" {
		job.ErrorMessage = &errMsg
	}
	now := time.Now().UTC()
	job.Status = status
	job.UpdatedAt = now
	if status == models.JobStatusCompleted || status == models.JobStatusFailed {
		job.CompletedAt = &now
	}
	m.jobs[id] = job
	return nil
}

func (m *Memory) GetJob(_ context.Context, id uuid.UUID) (*models.ProcessingJob, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, fmt.Errorf("job %s: %w", id, ErrRecordNotFound)
	}
	return &job, nil
}

func (m *Memory) Close() error { return nil }
