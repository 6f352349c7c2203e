package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
)

// ErrQueueFull is returned by SubmitJob when the job queue has no room.
var ErrQueueFull = errors.New("job queue full")

// ErrStopped is returned by SubmitJob after Stop.
var ErrStopped = errors.New("dispatcher stopped")

// Job represents a unit of work to be executed.
type Job interface {
	Execute(ctx context.Context) error
	ID() string
}

// Worker pulls jobs from its own channel after registering it in the pool.
type Worker struct {
	ID         int
	WorkerPool chan chan Job // shared pool of idle worker channels
	JobChannel chan Job
	Quit       chan struct{}
	Wg         *sync.WaitGroup
	finished   func()
	logger     *logrus.Entry
}

// NewWorker creates a new Worker.
// finished, if set, runs after every job.
func NewWorker(id int, workerPool chan chan Job, wg *sync.WaitGroup, finished func(), logger *logrus.Entry) Worker {
	return Worker{
		ID:         id,
		WorkerPool: workerPool,
		JobChannel: make(chan Job),
		Quit:       make(chan struct{}),
		Wg:         wg,
		finished:   finished,
		logger:     logger.WithField("worker", id),
	}
}

// Start makes the Worker listen for jobs on its JobChannel.
func (w Worker) Start(ctx context.Context) {
	w.Wg.Add(1)
	go func() {
		defer w.Wg.Done()
		for {
			select {
			case w.WorkerPool <- w.JobChannel:
			case <-w.Quit:
				w.logger.Debug("stopping")
				return
			}

			select {
			case job := <-w.JobChannel:
				log := w.logger.WithField("job_id", job.ID())
				log.Debug("started job")
				if err := job.Execute(ctx); err != nil {
					log.WithError(err).Error("job failed")
				} else {
					log.Debug("finished job")
				}
				if w.finished != nil {
					w.finished()
				}
			case <-w.Quit:
				w.logger.Debug("stopping")
				return
			}
		}
	}()
}

// Stop signals the worker to stop after its current job.
func (w Worker) Stop() {
	close(w.Quit)
}

// Dispatcher manages a pool of workers and dispatches jobs to them.
type Dispatcher struct {
	MaxWorkers int
	WorkerPool chan chan Job
	JobQueue   chan Job
	Workers    []Worker
	Wg         sync.WaitGroup

	logger  *logrus.Entry
	ctx     context.Context
	cancel  context.CancelFunc
	mu      sync.RWMutex
	stopped bool
	done    chan struct{}
	pending sync.WaitGroup
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(maxWorkers int, jobQueueSize int, logger *logrus.Entry) *Dispatcher {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	if jobQueueSize < 0 {
		jobQueueSize = 0
	}
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Dispatcher{
		MaxWorkers: maxWorkers,
		WorkerPool: make(chan chan Job, maxWorkers),
		JobQueue:   make(chan Job, jobQueueSize),
		Workers:    make([]Worker, 0, maxWorkers),
		logger:     logger.WithField("component", "dispatcher"),
		done:       make(chan struct{}),
	}
}

// Run starts the dispatcher and its workers. Jobs run with a context
// derived from ctx that is cancelled by Stop.
func (d *Dispatcher) Run(ctx context.Context) {
	d.ctx, d.cancel = context.WithCancel(ctx)
	d.logger.WithField("workers", d.MaxWorkers).Info("dispatcher starting")
	for i := 1; i <= d.MaxWorkers; i++ {
		worker := NewWorker(i, d.WorkerPool, &d.Wg, d.pending.Done, d.logger)
		d.Workers = append(d.Workers, worker)
		worker.Start(d.ctx)
	}
	go d.dispatch()
}

// dispatch hands queued jobs to idle workers until the queue is closed.
func (d *Dispatcher) dispatch() {
	defer close(d.done)
	for job := range d.JobQueue {
		select {
		case jobChannel := <-d.WorkerPool:
			jobChannel <- job
		case <-d.ctx.Done():
			d.logger.WithField("job_id", job.ID()).Warn("dropping job on shutdown")
			d.pending.Done()
		}
	}
}

// SubmitJob queues a job without blocking.
func (d *Dispatcher) SubmitJob(job Job) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return ErrStopped
	}
	d.pending.Add(1)
	select {
	case d.JobQueue <- job:
		d.logger.WithField("job_id", job.ID()).Debug("job submitted")
		return nil
	default:
		d.pending.Done()
		d.logger.WithField("job_id", job.ID()).Warn("job queue full")
		return ErrQueueFull
	}
}

// Wait blocks until every submitted job has finished.
func (d *Dispatcher) Wait() {
	d.pending.Wait()
}

// Stop hands off the jobs already queued, then stops the workers once
// their current jobs return. It must follow Run.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	close(d.JobQueue)
	d.mu.Unlock()

	d.logger.Info("dispatcher shutting down")
	<-d.done
	for _, worker := range d.Workers {
		worker.Stop()
	}
	d.Wg.Wait()
	d.cancel()
	d.logger.Info("dispatcher stopped")
}
