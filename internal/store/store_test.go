package store

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	postgrest "github.com/supabase-community/postgrest-go"

	"videothingy/clipdeck/internal/clips"
	"videothingy/clipdeck/models"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	sq, err := OpenSQLite(filepath.Join(t.TempDir(), "clipdeck.db"), nil)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { sq.Close() })
	return map[string]Store{
		"memory": NewMemory(),
		"sqlite": sq,
	}
}

func TestSourceVideoRoundTrip(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			v := &models.SourceVideo{Title: "talk", StoragePath: "/media/talk.mp4"}
			if err := s.CreateSourceVideo(ctx, v); err != nil {
				t.Fatalf("create: %v", err)
			}
			if v.ID == uuid.Nil {
				t.Fatal("expected an id to be assigned")
			}

			got, err := s.GetSourceVideo(ctx, v.ID)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if got.Title != "talk" || got.Duration != nil {
				t.Fatalf("unexpected video %+v", got)
			}

			if err := s.SetSourceDuration(ctx, v.ID, 120); err != nil {
				t.Fatalf("set duration: %v", err)
			}
			got, _ = s.GetSourceVideo(ctx, v.ID)
			if got.Duration == nil || *got.Duration != 120 || got.Status != models.SourceStatusReady {
				t.Fatalf("duration not stored: %+v", got)
			}

			if _, err := s.GetSourceVideo(ctx, uuid.New()); !errors.Is(err, ErrRecordNotFound) {
				t.Fatalf("expected ErrRecordNotFound, got %v", err)
			}
			if err := s.SetSourceDuration(ctx, uuid.New(), 1); !errors.Is(err, ErrRecordNotFound) {
				t.Fatalf("expected ErrRecordNotFound, got %v", err)
			}
		})
	}
}

func TestReplaceClipsKeepsOrder(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			v := &models.SourceVideo{Title: "talk", StoragePath: "/media/talk.mp4"}
			if err := s.CreateSourceVideo(ctx, v); err != nil {
				t.Fatalf("create: %v", err)
			}

			list := []clips.Clip{
				{ID: uuid.New(), StartTime: 50, EndTime: 70},
				{ID: uuid.New(), StartTime: 0, EndTime: 10},
			}
			if err := s.ReplaceClips(ctx, v.ID, ClipRows(v.ID, list, time.Now())); err != nil {
				t.Fatalf("replace: %v", err)
			}
			rows, err := s.ListClips(ctx, v.ID)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			got := EditorClips(rows)
			if len(got) != 2 || got[0] != list[0] || got[1] != list[1] {
				t.Fatalf("got %+v, want %+v", got, list)
			}

			if err := s.ReplaceClips(ctx, v.ID, ClipRows(v.ID, list[1:], time.Now())); err != nil {
				t.Fatalf("replace: %v", err)
			}
			rows, _ = s.ListClips(ctx, v.ID)
			if len(rows) != 1 || rows[0].ID != list[1].ID || rows[0].Position != 0 {
				t.Fatalf("unexpected rows after second replace: %+v", rows)
			}

			rows, err = s.ListClips(ctx, uuid.New())
			if err != nil || len(rows) != 0 {
				t.Fatalf("expected no clips for unknown video, got %v %v", rows, err)
			}
		})
	}
}

func TestJobLifecycle(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			job := &models.ProcessingJob{JobType: "extract_clip", EntityID: uuid.New(), EntityType: "clip"}
			if err := s.CreateJob(ctx, job); err != nil {
				t.Fatalf("create: %v", err)
			}
			got, err := s.GetJob(ctx, job.ID)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if got.Status != models.JobStatusPending || got.CompletedAt != nil {
				t.Fatalf("unexpected new job %+v", got)
			}

			if err := s.UpdateJob(ctx, job.ID, models.JobStatusProcessing, nil, ""); err != nil {
				t.Fatalf("update: %v", err)
			}
			out := map[string]string{"path": "/out/clip.mp4"}
			if err := s.UpdateJob(ctx, job.ID, models.JobStatusCompleted, out, ""); err != nil {
				t.Fatalf("update: %v", err)
			}
			got, _ = s.GetJob(ctx, job.ID)
			if got.Status != models.JobStatusCompleted || got.CompletedAt == nil {
				t.Fatalf("job not completed: %+v", got)
			}
			var meta map[string]string
			if err := json.Unmarshal(got.Metadata, &meta); err != nil || meta["path"] != "/out/clip.mp4" {
				t.Fatalf("metadata = %s (%v)", got.Metadata, err)
			}

			if err := s.UpdateJob(ctx, uuid.New(), models.JobStatusFailed, nil, "boom"); !errors.Is(err, ErrRecordNotFound) {
				t.Fatalf("expected ErrRecordNotFound, got %v", err)
			}
		})
	}
}

func TestSQLiteMigrationsRunOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clipdeck.db")
	first, err := OpenSQLite(path, nil)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	first.Close()

	second, err := OpenSQLite(path, nil)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer second.Close()

	var n int
	if err := second.conn.QueryRow("SELECT COUNT(*) FROM _migrations").Scan(&n); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if n != 1 {
		t.Fatalf("migrations recorded %d times", n)
	}
}

func TestSupabaseListClips(t *testing.T) {
	videoID := uuid.New()
	clipID := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/clips") {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("apikey") != "service-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]models.Clip{{
			ID: clipID, SourceVideoID: videoID, StartTime: 5, EndTime: 25, Status: models.ClipStatusDraft,
		}})
	}))
	defer srv.Close()

	client := postgrest.NewClient(srv.URL, "", map[string]string{
		"apikey":        "service-key",
		"Authorization": "Bearer service-key",
	})
	s := NewSupabase(client, nil)

	rows, err := s.ListClips(context.Background(), videoID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != clipID || rows[0].EndTime != 25 {
		t.Fatalf("unexpected rows %+v", rows)
	}
}

func TestSupabaseRespectsCancelledContext(t *testing.T) {
	s := NewSupabase(postgrest.NewClient("http://127.0.0.1:1", "", nil), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.GetJob(ctx, uuid.New()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
