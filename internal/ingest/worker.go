package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/Kurai777/Alda-oficial/internal/async"
	"github.com/Kurai777/Alda-oficial/internal/entity"
	"github.com/Kurai777/Alda-oficial/internal/repository"
)

// FileProcessor runs extraction on one catalog file.
type FileProcessor interface {
	ProcessFile(ctx context.Context, path string) (entity.RunResult, error)
}

// Exporter renders the output document for a finished run.
type Exporter interface {
	JSON(res *entity.RunResult) ([]byte, error)
}

// Worker handles one queued job end to end: extraction, the JSON document
// on disk, and the ledger bookkeeping around both.
type Worker struct {
	proc     FileProcessor
	exporter Exporter
	files    repository.CatalogFileRepository
	runs     repository.RunRepository
	outDir   string
	logger   *slog.Logger
}

func NewWorker(proc FileProcessor, exporter Exporter, files repository.CatalogFileRepository, runs repository.RunRepository, outDir string, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{proc: proc, exporter: exporter, files: files, runs: runs, outDir: outDir, logger: logger}
}

func (w *Worker) Handle(ctx context.Context, job async.Job) error {
	_, err := w.Process(ctx, job)
	return err
}

// Process runs one job to completion and returns the extraction result, so
// batch callers can fold the records into their own outputs.
func (w *Worker) Process(ctx context.Context, job async.Job) (entity.RunResult, error) {
	// Ledger writes must land even when the job context has expired,
	// otherwise a timed-out file stays PROCESSING until the next restart.
	ledgerCtx := context.WithoutCancel(ctx)

	if err := w.files.MarkProcessing(ledgerCtx, job.FileID); err != nil {
		return entity.RunResult{}, fmt.Errorf("mark processing: %w", err)
	}
	run, err := w.runs.Start(ledgerCtx, job.FileID)
	if err != nil {
		return entity.RunResult{}, fmt.Errorf("start run: %w", err)
	}

	res, err := w.proc.ProcessFile(ctx, job.Path)
	if err != nil {
		w.fail(ledgerCtx, job, run.ID, err)
		return res, err
	}

	data, err := w.exporter.JSON(&res)
	if err != nil {
		w.fail(ledgerCtx, job, run.ID, err)
		return res, err
	}

	outPath := filepath.Join(w.outDir, outputName(job.Path))
	if err := os.MkdirAll(w.outDir, 0o755); err != nil {
		w.fail(ledgerCtx, job, run.ID, err)
		return res, err
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		w.fail(ledgerCtx, job, run.ID, err)
		return res, err
	}

	products := len(res.ValidRecords())
	if err := w.runs.FinishSuccess(ledgerCtx, run.ID, res.Mode, res.Pages, products, len(res.Errors)); err != nil {
		w.logger.Error("record run result", "run_id", run.ID, "error", err)
	}
	if err := w.files.MarkDone(ledgerCtx, job.FileID, outPath, products); err != nil {
		return res, fmt.Errorf("mark done: %w", err)
	}
	return res, nil
}

// fail records the failure in the ledger; the original error is what the
// caller reports.
func (w *Worker) fail(ctx context.Context, job async.Job, runID uuid.UUID, cause error) {
	if err := w.runs.FinishFailure(ctx, runID, cause.Error()); err != nil {
		w.logger.Error("record run failure", "run_id", runID, "error", err)
	}
	if err := w.files.MarkFailed(ctx, job.FileID, cause.Error()); err != nil {
		w.logger.Error("mark file failed", "file_id", job.FileID, "error", err)
	}
}

// outputName maps "/catalogs/verao-2025.pdf" to "verao-2025.json".
func outputName(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		stem = base
	}
	return stem + ".json"
}
