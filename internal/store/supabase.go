package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	postgrest "github.com/supabase-community/postgrest-go"

	"videothingy/clipdeck/models"
)

const (
	sourceVideosTable   = "source_videos"
	clipsTable          = "clips"
	processingJobsTable = "processing_jobs"
)

// Querier is satisfied by both *supabase.Client and *postgrest.Client.
type Querier interface {
	From(table string) *postgrest.QueryBuilder
}

// Supabase stores rows through PostgREST. The PostgREST client does not take
// a context, so ctx is only checked before each request.
type Supabase struct {
	db     Querier
	logger *logrus.Entry
}

func NewSupabase(db Querier, logger *logrus.Entry) *Supabase {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Supabase{db: db, logger: logger.WithField("store", "supabase")}
}

func (s *Supabase) Close() error { return nil }

func (s *Supabase) CreateSourceVideo(ctx context.Context, v *models.SourceVideo) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.Status == "" {
		v.Status = models.SourceStatusPending
	}
	now := time.Now().UTC()
	v.CreatedAt, v.UpdatedAt = now, now

	var results []models.SourceVideo
	_, err := s.db.From(sourceVideosTable).Insert(v, false, "", "representation", "").ExecuteTo(&results)
	if err != nil {
		return fmt.Errorf("failed to insert source video: %w", err)
	}
	return nil
}

func (s *Supabase) GetSourceVideo(ctx context.Context, id uuid.UUID) (*models.SourceVideo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var videos []models.SourceVideo
	_, err := s.db.From(sourceVideosTable).
		Select("*", "", false).
		Eq("id", id.String()).
		ExecuteTo(&videos)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch source video: %w", err)
	}
	if len(videos) == 0 {
		return nil, fmt.Errorf("source video %s: %w", id, ErrRecordNotFound)
	}
	return &videos[0], nil
}

func (s *Supabase) SetSourceDuration(ctx context.Context, id uuid.UUID, duration float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	update := map[string]interface{}{
		"duration":   duration,
		"status":     models.SourceStatusReady,
		"updated_at": time.Now().UTC(),
	}
	_, count, err := s.db.From(sourceVideosTable).
		Update(update, "minimal", "exact").
		Eq("id", id.String()).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to update source video %s: %w", id, err)
	}
	if count == 0 {
		return fmt.Errorf("source video %s: %w", id, ErrRecordNotFound)
	}
	return nil
}

func (s *Supabase) ListClips(ctx context.Context, videoID uuid.UUID) ([]models.Clip, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	body, _, err := s.db.From(clipsTable).
		Select("*", "", false).
		Eq("source_video_id", videoID.String()).
		Order("position", &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch clips: %w", err)
	}
	out := []models.Clip{}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to parse clips: %w", err)
	}
	return out, nil
}

// ReplaceClips deletes then inserts. PostgREST has no multi-statement
// transaction, so a failed insert leaves the video without clips until the
// next persist.
func (s *Supabase) ReplaceClips(ctx context.Context, videoID uuid.UUID, rows []models.Clip) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, _, err := s.db.From(clipsTable).
		Delete("minimal", "").
		Eq("source_video_id", videoID.String()).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to clear clips: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	_, _, err = s.db.From(clipsTable).Insert(rows, false, "", "minimal", "").Execute()
	if err != nil {
		return fmt.Errorf("failed to insert clips: %w", err)
	}
	s.logger.WithFields(logrus.Fields{"video_id": videoID, "clips": len(rows)}).Debug("clips replaced")
	return nil
}

func (s *Supabase) CreateJob(ctx context.Context, job *models.ProcessingJob) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.Status == "" {
		job.Status = models.JobStatusPending
	}
	now := time.Now().UTC()
	job.CreatedAt, job.UpdatedAt = now, now

	var results []models.ProcessingJob
	_, err := s.db.From(processingJobsTable).Insert(job, false, "", "representation", "").ExecuteTo(&results)
	if err != nil {
		return fmt.Errorf("failed to insert job record: %w", err)
	}
	if len(results) == 0 {
		return fmt.Errorf("no record returned after insert, job_id: %s", job.ID)
	}
	return nil
}

func (s *Supabase) UpdateJob(ctx context.Context, id uuid.UUID, status string, output interface{}, errMsg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	now := time.Now().UTC()
	update := map[string]interface{}{
		"status":     status,
		"updated_at": now,
	}
	if output != nil {
		b, err := json.Marshal(output)
		if err != nil {
			return fmt.Errorf("failed to marshal output details: %w", err)
		}
		update["metadata"] = json.RawMessage(b)
	}
	if errMsg != "" {
		update["error_message"] = errMsg
	}
	if status == models.JobStatusCompleted || status == models.JobStatusFailed {
		update["completed_at"] = now
	}

	_, count, err := s.db.From(processingJobsTable).
		Update(update, "minimal", "exact").
		Eq("id", id.String()).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to update job record %s: %w", id, err)
	}
	if count == 0 {
		return fmt.Errorf("job %s: %w", id, ErrRecordNotFound)
	}
	return nil
}

func (s *Supabase) GetJob(ctx context.Context, id uuid.UUID) (*models.ProcessingJob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var jobs []models.ProcessingJob
	_, err := s.db.From(processingJobsTable).
		Select("*", "", false).
		Eq("id", id.String()).
		ExecuteTo(&jobs)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch job: %w", err)
	}
	if len(jobs) == 0 {
		return nil, fmt.Errorf("job %s: %w", id, ErrRecordNotFound)
	}
	return &jobs[0], nil
}
