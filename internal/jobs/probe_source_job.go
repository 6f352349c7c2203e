package jobs

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"videothingy/clipdeck/internal/store"
)

// Prober reads a media duration. *ffmpeg.Tool implements it.
type Prober interface {
	ProbeDuration(ctx context.Context, path string) (float64, error)
}

// ProbeSourceJob fills in the duration of a newly registered source video.
type ProbeSourceJob struct {
	VideoID uuid.UUID
	Path    string

	Store  store.Store
	Prober Prober
}

func (j *ProbeSourceJob) ID() string {
	return "probe-" + j.VideoID.String()
}

func (j *ProbeSourceJob) Execute(ctx context.Context) error {
	d, err := j.Prober.ProbeDuration(ctx, j.Path)
	if err != nil {
		return fmt.Errorf("probe %s: %w", j.Path, err)
	}
	return j.Store.SetSourceDuration(ctx, j.VideoID, d)
}
