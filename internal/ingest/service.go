package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Kurai777/Alda-oficial/internal/async"
	"github.com/Kurai777/Alda-oficial/internal/entity"
	"github.com/Kurai777/Alda-oficial/internal/repository"
)

type ServiceConfig struct {
	WatchDir     string
	RescanPeriod time.Duration
	Debounce     time.Duration
}

// Service owns discovery: the fsnotify watch plus the periodic rescan.
// Fresh and retriable files go to the queue; the rescan re-enqueues every
// PENDING row, so delivery is at-least-once and the worker must tolerate
// the occasional repeat.
type Service struct {
	cfg      ServiceConfig
	ingestor Ingestor
	files    repository.CatalogFileRepository
	queue    async.Queue
	logger   *slog.Logger
}

func NewService(cfg ServiceConfig, ingestor Ingestor, files repository.CatalogFileRepository, queue async.Queue, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.RescanPeriod <= 0 {
		cfg.RescanPeriod = 5 * time.Minute
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 500 * time.Millisecond
	}
	return &Service{cfg: cfg, ingestor: ingestor, files: files, queue: queue, logger: logger}
}

// Run blocks until ctx is done. Work interrupted by an earlier crash is
// requeued before anything else happens.
func (s *Service) Run(ctx context.Context) error {
	if n, err := s.files.ResetProcessing(ctx); err != nil {
		return fmt.Errorf("requeue interrupted files: %w", err)
	} else if n > 0 {
		s.logger.Info("ingest.recovered", "requeued", n)
	}
	s.scanOnce(ctx)

	evCh, errCh, err := StartWatcher(ctx, WatchConfig{
		Roots:    []string{s.cfg.WatchDir},
		Debounce: s.cfg.Debounce,
	})
	if err != nil {
		return err
	}

	ticker := time.NewTicker(s.cfg.RescanPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case path, ok := <-evCh:
			if !ok {
				return nil
			}
			s.handlePath(ctx, path)
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			s.logger.Error("ingest.watch.error", "error", err)
		case <-ticker.C:
			s.scanOnce(ctx)
		}
	}
}

// scanOnce registers everything under the watch dir and enqueues the rows
// owed work.
func (s *Service) scanOnce(ctx context.Context) {
	_, stats, err := s.ingestor.IngestDirectory(ctx, s.cfg.WatchDir, true)
	if err != nil {
		s.logger.Error("ingest.scan.failed", "dir", s.cfg.WatchDir, "error", err)
		return
	}
	queued := s.enqueuePending(ctx)
	s.logger.Info("ingest.scan.done",
		"dir", s.cfg.WatchDir,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"new", stats.Succeeded-stats.Deduplicated,
		"failed", stats.Failed,
		"queued", queued,
	)
}

// enqueuePending pushes every PENDING ledger row into the queue. Pending
// rows come from fresh registrations, crash recovery, and earlier enqueue
// failures, so the rescan owns them all. FAILED rows are deliberately left
// alone here; they retry only when the file itself changes.
func (s *Service) enqueuePending(ctx context.Context) int {
	pending, err := s.files.ListByStatus(ctx, entity.StatusPending, 0)
	if err != nil {
		s.logger.Error("ingest.pending.list_failed", "error", err)
		return 0
	}
	n := 0
	for _, f := range pending {
		job := async.Job{FileID: f.ID, Path: f.SourcePath, SubmittedAt: time.Now()}
		if err := s.queue.Enqueue(ctx, job); err != nil {
			s.logger.Error("ingest.enqueue.failed", "file_id", f.ID, "error", err)
			continue
		}
		n++
	}
	return n
}

func (s *Service) handlePath(ctx context.Context, path string) {
	r, err := s.ingestor.IngestPath(ctx, path)
	if err != nil {
		s.logger.Warn("ingest.path.failed", "path", path, "error", err)
		return
	}
	if r.Status != entity.StatusPending && r.Status != entity.StatusFailed {
		s.logger.Debug("ingest.path.skipped", "path", path, "status", string(r.Status))
		return
	}
	job := async.Job{
		FileID:      r.FileID,
		Path:        r.SourcePath,
		Force:       r.Status == entity.StatusFailed,
		SubmittedAt: time.Now(),
	}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		s.logger.Error("ingest.enqueue.failed", "file_id", r.FileID, "error", err)
	}
}
