package ingest

import (
	"context"
	"testing"
	"time"
)

func newTestService(t *testing.T, dir string) (*Service, *fakeFiles, *fakeQueue) {
	t.Helper()
	files := newFakeFiles()
	queue := &fakeQueue{}
	svc := NewService(ServiceConfig{WatchDir: dir}, NewFSIngestor(files, nil), files, queue, nil)
	return svc, files, queue
}

func TestScanOnceEnqueuesPending(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.pdf", "conteudo a")
	writeFile(t, dir, "b.xlsx", "conteudo b")
	svc, files, queue := newTestService(t, dir)
	ctx := context.Background()

	svc.scanOnce(ctx)
	jobs := queue.queued()
	if len(jobs) != 2 {
		t.Fatalf("queued %d jobs, want 2", len(jobs))
	}

	// Finished rows stay out of later scans.
	for _, job := range jobs {
		if err := files.MarkDone(ctx, job.FileID, "out.json", 1); err != nil {
			t.Fatalf("MarkDone: %v", err)
		}
	}
	svc.scanOnce(ctx)
	if got := len(queue.queued()); got != 2 {
		t.Errorf("after second scan: %d jobs, want still 2", got)
	}
}

func TestHandlePathSkipsDone(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "feito.pdf", "ja processado")
	svc, files, queue := newTestService(t, dir)
	ctx := context.Background()

	r, err := svc.ingestor.IngestPath(ctx, path)
	if err != nil {
		t.Fatalf("IngestPath: %v", err)
	}
	if err := files.MarkDone(ctx, r.FileID, "out.json", 3); err != nil {
		t.Fatalf("MarkDone: %v", err)
	}

	svc.handlePath(ctx, path)
	if got := len(queue.queued()); got != 0 {
		t.Errorf("queued %d jobs for a DONE file, want 0", got)
	}
}

func TestHandlePathRetriesFailed(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "tentar.pdf", "vai falhar")
	svc, files, queue := newTestService(t, dir)
	ctx := context.Background()

	r, err := svc.ingestor.IngestPath(ctx, path)
	if err != nil {
		t.Fatalf("IngestPath: %v", err)
	}
	if err := files.MarkFailed(ctx, r.FileID, "ocr: exit status 1"); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}

	svc.handlePath(ctx, path)
	jobs := queue.queued()
	if len(jobs) != 1 {
		t.Fatalf("queued %d jobs, want 1", len(jobs))
	}
	if jobs[0].FileID != r.FileID {
		t.Errorf("job file id = %s, want %s", jobs[0].FileID, r.FileID)
	}
	if !jobs[0].Force {
		t.Error("retry job not marked as forced")
	}
}

func TestHandlePathEnqueuesFresh(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "novo.pdf", "novidade")
	svc, _, queue := newTestService(t, dir)

	svc.handlePath(context.Background(), path)
	jobs := queue.queued()
	if len(jobs) != 1 {
		t.Fatalf("queued %d jobs, want 1", len(jobs))
	}
	if jobs[0].Path == "" || jobs[0].SubmittedAt.IsZero() {
		t.Errorf("job not fully populated: %+v", jobs[0])
	}
	if time.Since(jobs[0].SubmittedAt) > time.Minute {
		t.Errorf("SubmittedAt stale: %v", jobs[0].SubmittedAt)
	}
}
