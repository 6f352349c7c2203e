package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"videothingy/clipdeck/models"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const timeLayout = time.RFC3339Nano

// SQLite is the local store backed by modernc.org/sqlite.
type SQLite struct {
	conn   *sql.DB
	logger *logrus.Entry
}

// OpenSQLite opens (or creates) the database at path and applies pending
// migrations. ":memory:" works for tests.
func OpenSQLite(path string, logger *logrus.Entry) (*SQLite, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}

	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	s := &SQLite{conn: conn, logger: logger.WithField("store", "sqlite")}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return s, nil
}

func (s *SQLite) Close() error {
	return s.conn.Close()
}

func (s *SQLite) migrate() error {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}
	for _, m := range entries {
		if m.IsDir() {
			continue
		}
		name := m.Name()
		if s.migrationApplied(name) {
			continue
		}
		content, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}
		if _, err := s.conn.Exec(string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", name, err)
		}
		if _, err := s.conn.Exec("INSERT INTO _migrations (name) VALUES (?)", name); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", name, err)
		}
		s.logger.WithField("name", name).Info("applied migration")
	}
	return nil
}

func (s *SQLite) migrationApplied(name string) bool {
	var exists int
	if err := s.conn.QueryRow("SELECT 1 FROM sqlite_master WHERE type='table' AND name='_migrations'").Scan(&exists); err != nil {
		return false
	}
	var applied int
	err := s.conn.QueryRow("SELECT 1 FROM _migrations WHERE name = ?", name).Scan(&applied)
	return err == nil && applied == 1
}

func (s *SQLite) CreateSourceVideo(ctx context.Context, v *models.SourceVideo) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.Status == "" {
		v.Status = models.SourceStatusPending
	}
	now := time.Now().UTC()
	v.CreatedAt, v.UpdatedAt = now, now

	var transcription sql.NullString
	if len(v.Transcription) > 0 {
		transcription = sql.NullString{String: string(v.Transcription), Valid: true}
	}
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO source_videos (id, title, storage_path, duration, status, transcription, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID.String(), v.Title, v.StoragePath, v.Duration, v.Status, transcription,
		now.Format(timeLayout), now.Format(timeLayout))
	if err != nil {
		return fmt.Errorf("failed to insert source video: %w", err)
	}
	return nil
}

func (s *SQLite) GetSourceVideo(ctx context.Context, id uuid.UUID) (*models.SourceVideo, error) {
	var (
		v                models.SourceVideo
		rawID            string
		duration         sql.NullFloat64
		transcription    sql.NullString
		created, updated string
	)
	err := s.conn.QueryRowContext(ctx,
		`SELECT id, title, storage_path, duration, status, transcription, created_at, updated_at
		 FROM source_videos WHERE id = ?`, id.String()).
		Scan(&rawID, &v.Title, &v.StoragePath, &duration, &v.Status, &transcription, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("source video %s: %w", id, ErrRecordNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query source video: %w", err)
	}
	v.ID = id
	if duration.Valid {
		d := duration.Float64
		v.Duration = &d
	}
	if transcription.Valid {
		v.Transcription = json.RawMessage(transcription.String)
	}
	v.CreatedAt, _ = time.Parse(timeLayout, created)
	v.UpdatedAt, _ = time.Parse(timeLayout, updated)
	return &v, nil
}

func (s *SQLite) SetSourceDuration(ctx context.Context, id uuid.UUID, duration float64) error {
	res, err := s.conn.ExecContext(ctx,
		`UPDATE source_videos SET duration = ?, status = ?, updated_at = ? WHERE id = ?`,
		duration, models.SourceStatusReady, time.Now().UTC().Format(timeLayout), id.String())
	if err != nil {
		return fmt.Errorf("failed to update source video: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("source video %s: %w", id, ErrRecordNotFound)
	}
	return nil
}

func (s *SQLite) ListClips(ctx context.Context, videoID uuid.UUID) ([]models.Clip, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, position, start_time, end_time, status, storage_path, created_at, updated_at
		 FROM clips WHERE source_video_id = ? ORDER BY position`, videoID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query clips: %w", err)
	}
	defer rows.Close()

	out := []models.Clip{}
	for rows.Next() {
		var (
			c                models.Clip
			rawID            string
			path             sql.NullString
			created, updated string
		)
		if err := rows.Scan(&rawID, &c.Position, &c.StartTime, &c.EndTime, &c.Status, &path, &created, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan clip: %w", err)
		}
		id, err := uuid.Parse(rawID)
		if err != nil {
			return nil, fmt.Errorf("clip id %q: %w", rawID, err)
		}
		c.ID = id
		c.SourceVideoID = videoID
		if path.Valid {
			p := path.String
			c.StoragePath = &p
		}
		c.CreatedAt, _ = time.Parse(timeLayout, created)
		c.UpdatedAt, _ = time.Parse(timeLayout, updated)
		out = append(out, c)
	}
	return out, rows.Err()
}

// ReplaceClips rewrites the clip set of a video in one transaction.
func (s *SQLite) ReplaceClips(ctx context.Context, videoID uuid.UUID, list []models.Clip) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM clips WHERE source_video_id = ?`, videoID.String()); err != nil {
		return fmt.Errorf("failed to clear clips: %w", err)
	}
	for _, c := range list {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO clips (id, source_video_id, position, start_time, end_time, status, storage_path, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID.String(), videoID.String(), c.Position, c.StartTime, c.EndTime, c.Status, c.StoragePath,
			c.CreatedAt.UTC().Format(timeLayout), c.UpdatedAt.UTC().Format(timeLayout))
		if err != nil {
			return fmt.Errorf("failed to insert clip %s: %w", c.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit clips: %w", err)
	}
	s.logger.WithFields(logrus.Fields{"video_id": videoID, "clips": len(list)}).Debug("clips replaced")
	return nil
}

func (s *SQLite) CreateJob(ctx context.Context, job *models.ProcessingJob) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.Status == "" {
		job.Status = models.JobStatusPending
	}
	now := time.Now().UTC()
	job.CreatedAt, job.UpdatedAt = now, now

	var meta sql.NullString
	if len(job.Metadata) > 0 {
		meta = sql.NullString{String: string(job.Metadata), Valid: true}
	}
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO processing_jobs (id, job_type, entity_id, entity_type, status, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID.String(), job.JobType, job.EntityID.String(), job.EntityType, job.Status, meta,
		now.Format(timeLayout), now.Format(timeLayout))
	if err != nil {
		return fmt.Errorf("failed to insert job record: %w", err)
	}
	return nil
}

func (s *SQLite) UpdateJob(ctx context.Context, id uuid.UUID, status string, output interface{}, errMsg string) error {
	now := time.Now().UTC().Format(timeLayout)

	var meta sql.NullString
	if output != nil {
		b, err := json.Marshal(output)
		if err != nil {
			return fmt.Errorf("failed to marshal output details: %w", err)
		}
		meta = sql.NullString{String: string(b), Valid: true}
	}
	var errText sql.NullString
	if errMsg != "" {
		errText = sql.NullString{String: errMsg, Valid: true}
	}
	var completed sql.NullString
	if status == models.JobStatusCompleted || status == models.JobStatusFailed {
		completed = sql.NullString{String: now, Valid: true}
	}

	res, err := s.conn.ExecContext(ctx,
		`UPDATE processing_jobs SET
		   status = ?,
		   metadata = COALESCE(?, metadata),
		   error_message = COALESCE(?, error_message),
		   completed_at = COALESCE(?, completed_at),
		   updated_at = ?
		 WHERE id = ?`,
		status, meta, errText, completed, now, id.String())
	if err != nil {
		return fmt.Errorf("failed to update job record %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("job %s: %w", id, ErrRecordNotFound)
	}
	return nil
}

func (s *SQLite) GetJob(ctx context.Context, id uuid.UUID) (*models.ProcessingJob, error) {
	var (
		job                      models.ProcessingJob
		rawID, rawEntity         string
		errText, meta, completed sql.NullString
		created, updated         string
	)
	err := s.conn.QueryRowContext(ctx,
		`SELECT id, job_type, entity_id, entity_type, status, error_message, metadata, created_at, updated_at, completed_at
		 FROM processing_jobs WHERE id = ?`, id.String()).
		Scan(&rawID, &job.JobType, &rawEntity, &job.EntityType, &job.Status, &errText, &meta, &created, &updated, &completed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("job %s: %w", id, ErrRecordNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query job: %w", err)
	}
	job.ID = id
	job.EntityID, _ = uuid.Parse(rawEntity)
	if errText.Valid {
		e := errText.String
		job.ErrorMessage = &e
	}
	if meta.Valid {
		job.Metadata = json.RawMessage(meta.String)
	}
	job.CreatedAt, _ = time.Parse(timeLayout, created)
	job.UpdatedAt, _ = time.Parse(timeLayout, updated)
	if completed.Valid {
		t, err := time.Parse(timeLayout, completed.String)
		if err == nil {
			job.CompletedAt = &t
		}
	}
	return &job, nil
}
