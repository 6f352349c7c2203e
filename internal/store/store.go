// Package store persists source videos, clip rows and processing jobs.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"videothingy/clipdeck/internal/clips"
	"videothingy/clipdeck/models"
)

// ErrRecordNotFound is returned when a record does not exist.
var ErrRecordNotFound = errors.New("record not found")

// Store is the persistence collaborator of the editor.
type Store interface {
	CreateSourceVideo(ctx context.Context, v *models.SourceVideo) error
	GetSourceVideo(ctx context.Context, id uuid.UUID) (*models.SourceVideo, error)
	SetSourceDuration(ctx context.Context, id uuid.UUID, duration float64) error

	ListClips(ctx context.Context, videoID uuid.UUID) ([]models.Clip, error)
	// ReplaceClips swaps the stored clip set of a video for rows.
	ReplaceClips(ctx context.Context, videoID uuid.UUID, rows []models.Clip) error

	CreateJob(ctx context.Context, job *models.ProcessingJob) error
	UpdateJob(ctx context.Context, id uuid.UUID, status string, output interface{}, errMsg string) error
	GetJob(ctx context.Context, id uuid.UUID) (*models.ProcessingJob, error)

	Close() error
}

// ClipRows turns the editor's clip list into rows, keeping list order.
func ClipRows(videoID uuid.UUID, list []clips.Clip, now time.Time) []models.Clip {
	rows := make([]models.Clip, 0, len(list))
	for i, c := range list {
		rows = append(rows, models.Clip{
			ID:            c.ID,
			SourceVideoID: videoID,
			Position:      i,
			StartTime:     c.StartTime,
			EndTime:       c.EndTime,
			Status:        models.ClipStatusDraft,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}
	return rows
}

// EditorClips converts stored rows back into editor clips. Rows are
// re-validated by the editor once the media duration is known.
func EditorClips(rows []models.Clip) []clips.Clip {
	out := make([]clips.Clip, 0, len(rows))
	for _, r := range rows {
		out = append(out, clips.Clip{ID: r.ID, StartTime: r.StartTime, EndTime: r.EndTime})
	}
	return out
}
