// Package async runs catalog extraction jobs on a bounded worker pool.
// The daemon enqueues discovered files here so slow extractions never
// stall the filesystem watch loop.
package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Kurai777/Alda-oficial/internal/async"
)

// ProcessorQueue fans jobs out to a fixed set of workers over a bounded
// channel. Each job runs under its own timeout so one stuck extraction
// cannot pin a worker forever.
type ProcessorQueue struct {
	handler async.Handler
	logger  *slog.Logger
	workers int
	perJob  time.Duration

	jobs chan async.Job
	wg   sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// Option configures a ProcessorQueue at construction time.
type Option func(*ProcessorQueue)

// WithWorkers sets the worker count. Values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

// WithQueueSize sets the job channel capacity. Values below 1 are ignored.
func WithQueueSize(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.jobs = make(chan async.Job, n)
		}
	}
}

// WithProcessTimeout bounds how long a single job may run.
func WithProcessTimeout(d time.Duration) Option {
	return func(q *ProcessorQueue) {
		if d > 0 {
			q.perJob = d
		}
	}
}

// NewProcessorQueue builds the queue and starts its workers immediately.
func NewProcessorQueue(handler async.Handler, logger *slog.Logger, opts ...Option) *ProcessorQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ProcessorQueue{
		handler: handler,
		logger:  logger,
		workers: 2,
		perJob:  10 * time.Minute,
		jobs:    make(chan async.Job, 64),
	}
	for _, o := range opts {
		o(q)
	}
	for i := 1; i <= q.workers; i++ {
		q.wg.Add(1)
		go q.run(i)
	}
	return q
}

// run is one worker: it drains the job channel until Shutdown closes it.
func (q *ProcessorQueue) run(id int) {
	defer q.wg.Done()
	q.logger.Debug("queue.worker.start", "worker_id", id)

	for job := range q.jobs {
		started := time.Now()
		ctx, cancel := context.WithTimeout(context.Background(), q.perJob)
		err := q.handler.Handle(ctx, job)
		cancel()

		if err != nil {
			q.logger.Error("queue.job.failed",
				"worker_id", id,
				"file_id", job.FileID,
				"path", job.Path,
				"duration_ms", time.Since(started).Milliseconds(),
				"error", err,
			)
			continue
		}
		q.logger.Info("queue.job.done",
			"worker_id", id,
			"file_id", job.FileID,
			"path", job.Path,
			"duration_ms", time.Since(started).Milliseconds(),
		)
	}

	q.logger.Debug("queue.worker.stop", "worker_id", id)
}

// Enqueue hands a job to the pool. When the channel is full the send
// blocks, which backpressures the ingest loop instead of dropping work.
// After Shutdown the job is discarded with a warning; the rescan pass
// picks the file up again on the next start.
func (q *ProcessorQueue) Enqueue(_ context.Context, job async.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("queue.closed", "file_id", job.FileID, "path", job.Path)
		return nil
	}

	select {
	case q.jobs <- job:
	default:
		q.logger.Warn("queue.full", "file_id", job.FileID, "capacity", cap(q.jobs))
		// Holding the lock here keeps Shutdown from closing the channel
		// under an in-flight send.
		q.jobs <- job
	}
	q.logger.Info("queue.job.accepted", "file_id", job.FileID, "path", job.Path, "force", job.Force)
	return nil
}

// Shutdown stops intake and waits for the workers to drain the channel,
// or for ctx to expire, whichever comes first.
func (q *ProcessorQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		q.logger.Info("queue.drained")
	case <-ctx.Done():
		q.logger.Warn("queue.shutdown.abandoned", "pending", len(q.jobs))
	}
}
