package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"videothingy/clipdeck/internal/clips"
	"videothingy/clipdeck/internal/store"
	"videothingy/clipdeck/models"
)

const JobTypeExtractClip = "EXTRACT_CLIP"

// Extractor cuts a clip out of a media file. *ffmpeg.Tool implements it.
type Extractor interface {
	ExtractClip(ctx context.Context, input, output string, start, end float64) error
}

// ExtractClipPayload is stored as the job's metadata when it is created.
type ExtractClipPayload struct {
	VideoID    uuid.UUID `json:"video_id"`
	InputFile  string    `json:"input_file"`
	OutputFile string    `json:"output_file"`
	StartTime  float64   `json:"start_time"`
	EndTime    float64   `json:"end_time"`
}

// ExtractClipJob renders one clip with the local extractor and records the
// outcome on its processing job row.
type ExtractClipJob struct {
	JobID   uuid.UUID
	ClipID  uuid.UUID
	Payload ExtractClipPayload

	store     store.Store
	extractor Extractor
	logger    *logrus.Entry
}

// NewExtractClipJob creates the processing job row and returns the job ready
// to submit. The output lands in outDir as <clip id>.mp4.
func NewExtractClipJob(ctx context.Context, st store.Store, ex Extractor, logger *logrus.Entry, videoID uuid.UUID, input, outDir string, c clips.Clip) (*ExtractClipJob, error) {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	payload := ExtractClipPayload{
		VideoID:    videoID,
		InputFile:  input,
		OutputFile: filepath.Join(outDir, c.ID.String()+".mp4"),
		StartTime:  c.StartTime,
		EndTime:    c.EndTime,
	}
	meta, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal input payload: %w", err)
	}
	row := &models.ProcessingJob{
		JobType:    JobTypeExtractClip,
		EntityID:   c.ID,
		EntityType: "clip",
		Metadata:   meta,
	}
	if err := st.CreateJob(ctx, row); err != nil {
		return nil, err
	}
	return &ExtractClipJob{
		JobID:     row.ID,
		ClipID:    c.ID,
		Payload:   payload,
		store:     st,
		extractor: ex,
		logger:    logger.WithFields(logrus.Fields{"job_id": row.ID, "clip_id": c.ID}),
	}, nil
}

func (j *ExtractClipJob) ID() string {
	return j.JobID.String()
}

func (j *ExtractClipJob) Execute(ctx context.Context) error {
	if err := j.store.UpdateJob(ctx, j.JobID, models.JobStatusProcessing, nil, ""); err != nil {
		j.logger.WithError(err).Warn("could not mark job processing")
	}

	p := j.Payload
	if err := j.extractor.ExtractClip(ctx, p.InputFile, p.OutputFile, p.StartTime, p.EndTime); err != nil {
		if uerr := j.store.UpdateJob(context.WithoutCancel(ctx), j.JobID, models.JobStatusFailed, nil, err.Error()); uerr != nil {
			j.logger.WithError(uerr).Error("could not mark job failed")
		}
		return fmt.Errorf("failed to extract clip %s: %w", j.ClipID, err)
	}

	out := map[string]string{"output_file": p.OutputFile}
	if err := j.store.UpdateJob(ctx, j.JobID, models.JobStatusCompleted, out, ""); err != nil {
		return fmt.Errorf("failed to record job %s: %w", j.JobID, err)
	}
	return nil
}
