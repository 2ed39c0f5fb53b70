package ingest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Kurai777/Alda-oficial/internal/async"
	"github.com/Kurai777/Alda-oficial/internal/common"
	"github.com/Kurai777/Alda-oficial/internal/entity"
)

type fakeFiles struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*entity.CatalogFile
}

func newFakeFiles() *fakeFiles {
	return &fakeFiles{byID: map[uuid.UUID]*entity.CatalogFile{}}
}

func (f *fakeFiles) GetByID(_ context.Context, id uuid.UUID) (*entity.CatalogFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *row
	return &cp, nil
}

func (f *fakeFiles) GetByHash(_ context.Context, hash string) (*entity.CatalogFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.byID {
		if row.ContentHash == hash {
			cp := *row
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeFiles) UpsertByHash(ctx context.Context, sourcePath, filename, ext string, size int64, hash string, at time.Time) (*entity.CatalogFile, bool, error) {
	if row, err := f.GetByHash(ctx, hash); err == nil {
		return row, true, nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	row := &entity.CatalogFile{
		ID:           uuid.New(),
		SourcePath:   sourcePath,
		Filename:     filename,
		FileExt:      ext,
		FileSize:     size,
		ContentHash:  hash,
		Status:       entity.StatusPending,
		DiscoveredAt: at,
		UpdatedAt:    at,
	}
	f.byID[row.ID] = row
	cp := *row
	return &cp, false, nil
}

func (f *fakeFiles) MarkProcessing(_ context.Context, id uuid.UUID) error {
	return f.mutate(id, func(row *entity.CatalogFile) {
		row.Status = entity.StatusProcessing
	})
}

func (f *fakeFiles) MarkDone(_ context.Context, id uuid.UUID, outputPath string, recordCount int) error {
	return f.mutate(id, func(row *entity.CatalogFile) {
		row.Status = entity.StatusDone
		row.OutputPath = outputPath
		row.RecordCount = recordCount
		row.ErrorMessage = ""
	})
}

func (f *fakeFiles) MarkFailed(_ context.Context, id uuid.UUID, message string) error {
	return f.mutate(id, func(row *entity.CatalogFile) {
		row.Status = entity.StatusFailed
		row.ErrorMessage = message
	})
}

func (f *fakeFiles) ListByStatus(_ context.Context, status entity.FileStatus, limit int) ([]*entity.CatalogFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.CatalogFile
	for _, row := range f.byID {
		if row.Status == status {
			cp := *row
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DiscoveredAt.Equal(out[j].DiscoveredAt) {
			return out[i].DiscoveredAt.Before(out[j].DiscoveredAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeFiles) ResetProcessing(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, row := range f.byID {
		if row.Status == entity.StatusProcessing {
			row.Status = entity.StatusPending
			n++
		}
	}
	return n, nil
}

func (f *fakeFiles) mutate(id uuid.UUID, fn func(*entity.CatalogFile)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.byID[id]
	if !ok {
		return common.ErrNotFound
	}
	fn(row)
	return nil
}

type fakeRuns struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*entity.ExtractionRun
}

func newFakeRuns() *fakeRuns {
	return &fakeRuns{rows: map[uuid.UUID]*entity.ExtractionRun{}}
}

func (r *fakeRuns) Start(_ context.Context, fileID uuid.UUID) (*entity.ExtractionRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	run := &entity.ExtractionRun{
		ID:        uuid.New(),
		FileID:    fileID,
		Status:    entity.RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	r.rows[run.ID] = run
	cp := *run
	return &cp, nil
}

func (r *fakeRuns) FinishSuccess(_ context.Context, runID uuid.UUID, mode string, pages, recordCount, errorCount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.rows[runID]
	if !ok {
		return common.ErrNotFound
	}
	run.Status = entity.RunStatusDone
	run.Mode = mode
	run.Pages = pages
	run.RecordCount = recordCount
	run.ErrorCount = errorCount
	return nil
}

func (r *fakeRuns) FinishFailure(_ context.Context, runID uuid.UUID, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.rows[runID]
	if !ok {
		return common.ErrNotFound
	}
	run.Status = entity.RunStatusFailed
	run.ErrorMessage = message
	return nil
}

func (r *fakeRuns) ListByFile(_ context.Context, fileID uuid.UUID) ([]*entity.ExtractionRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.ExtractionRun
	for _, run := range r.rows {
		if run.FileID == fileID {
			cp := *run
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeQueue struct {
	mu   sync.Mutex
	jobs []async.Job
}

func (q *fakeQueue) Enqueue(_ context.Context, job async.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *fakeQueue) Shutdown(context.Context) {}

func (q *fakeQueue) queued() []async.Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]async.Job(nil), q.jobs...)
}
