package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"videothingy/clipdeck/internal/clips"
	"videothingy/clipdeck/internal/store"
	"videothingy/clipdeck/internal/worker"
	"videothingy/clipdeck/models"
)

// Submitter queues jobs. *worker.Dispatcher implements it.
type Submitter interface {
	SubmitJob(job worker.Job) error
}

// ClipPersister writes clip snapshots to the store in the background. Each
// snapshot carries a version; a snapshot older than the last one written for
// the same video is skipped, so out-of-order workers never roll a video back.
type ClipPersister struct {
	store  store.Store
	queue  Submitter
	logger *logrus.Entry

	mu      sync.Mutex
	next    map[uuid.UUID]uint64
	written map[uuid.UUID]uint64
}

func NewClipPersister(st store.Store, queue Submitter, logger *logrus.Entry) *ClipPersister {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &ClipPersister{
		store:   st,
		queue:   queue,
		logger:  logger.WithField("component", "clip_persister"),
		next:    make(map[uuid.UUID]uint64),
		written: make(map[uuid.UUID]uint64),
	}
}

// Persist snapshots list and queues a write. When the queue is full the
// write happens inline.
func (p *ClipPersister) Persist(videoID uuid.UUID, list []clips.Clip) {
	p.mu.Lock()
	p.next[videoID]++
	version := p.next[videoID]
	p.mu.Unlock()

	job := &PersistClipsJob{
		VideoID:   videoID,
		Version:   version,
		Rows:      store.ClipRows(videoID, list, time.Now().UTC()),
		persister: p,
	}
	err := p.queue.SubmitJob(job)
	if err == nil {
		return
	}
	log := p.logger.WithField("video_id", videoID).WithError(err)
	if !errors.Is(err, worker.ErrQueueFull) {
		log.Error("could not queue clip persist")
		return
	}
	log.Warn("persisting clips inline")
	if err := job.Execute(context.Background()); err != nil {
		log.WithError(err).Error("inline clip persist failed")
	}
}

func (p *ClipPersister) write(ctx context.Context, j *PersistClipsJob) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if j.Version <= p.written[j.VideoID] {
		p.logger.WithFields(logrus.Fields{"video_id": j.VideoID, "version": j.Version}).Debug("skipping stale clip snapshot")
		return nil
	}
	if err := p.store.ReplaceClips(ctx, j.VideoID, j.Rows); err != nil {
		return fmt.Errorf("persist clips for %s: %w", j.VideoID, err)
	}
	p.written[j.VideoID] = j.Version
	return nil
}

// PersistClipsJob writes one clip snapshot of a video.
type PersistClipsJob struct {
	VideoID uuid.UUID
	Version uint64
	Rows    []models.Clip

	persister *ClipPersister
}

func (j *PersistClipsJob) ID() string {
	return fmt.Sprintf("persist-clips-%s-%d", j.VideoID, j.Version)
}

func (j *PersistClipsJob) Execute(ctx context.Context) error {
	return j.persister.write(ctx, j)
}
