package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Kurai777/Alda-oficial/internal/common"
	"github.com/Kurai777/Alda-oficial/internal/entity"
)

// RunRepository records extraction attempts against the ledger. A run row
// is opened before the file is processed and closed with either the result
// stats or the failure message, so interrupted runs stay visible.
type RunRepository interface {
	Start(ctx context.Context, fileID uuid.UUID) (*entity.ExtractionRun, error)
	FinishSuccess(ctx context.Context, runID uuid.UUID, mode string, pages, recordCount, errorCount int) error
	FinishFailure(ctx context.Context, runID uuid.UUID, message string) error
	ListByFile(ctx context.Context, fileID uuid.UUID) ([]*entity.ExtractionRun, error)
}

type runRepo struct {
	db     *sql.DB
	driver string
	logger *slog.Logger
}

func NewRunRepository(db *sql.DB, driver string, logger *slog.Logger) RunRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &runRepo{db: db, driver: driver, logger: logger}
}

func (r *runRepo) Start(ctx context.Context, fileID uuid.UUID) (*entity.ExtractionRun, error) {
	run := &entity.ExtractionRun{
		ID:        uuid.New(),
		FileID:    fileID,
		Status:    entity.RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	_, err := r.db.ExecContext(ctx,
		rebind(r.driver, "INSERT INTO extraction_runs (id, file_id, status, started_at) VALUES (?, ?, ?, ?)"),
		run.ID.String(), run.FileID.String(), run.Status, run.StartedAt.Unix())
	if err != nil {
		r.logger.Error("run start failed", "file_id", fileID, "error", err)
		return nil, err
	}
	r.logger.Info("run started", "run_id", run.ID, "file_id", fileID)
	return run, nil
}

func (r *runRepo) FinishSuccess(ctx context.Context, runID uuid.UUID, mode string, pages, recordCount, errorCount int) error {
	err := r.update(ctx, runID,
		"UPDATE extraction_runs SET mode = ?, status = ?, pages = ?, record_count = ?, error_count = ?, finished_at = ? WHERE id = ?",
		mode, entity.RunStatusDone, pages, recordCount, errorCount, time.Now().Unix(), runID.String())
	if err != nil {
		return err
	}
	r.logger.Info("run finished", "run_id", runID, "mode", mode, "records", recordCount, "errors", errorCount)
	return nil
}

func (r *runRepo) FinishFailure(ctx context.Context, runID uuid.UUID, message string) error {
	err := r.update(ctx, runID,
		"UPDATE extraction_runs SET status = ?, error_message = ?, finished_at = ? WHERE id = ?",
		entity.RunStatusFailed, message, time.Now().Unix(), runID.String())
	if err != nil {
		return err
	}
	r.logger.Warn("run failed", "run_id", runID, "error", message)
	return nil
}

func (r *runRepo) ListByFile(ctx context.Context, fileID uuid.UUID) ([]*entity.ExtractionRun, error) {
	rows, err := r.db.QueryContext(ctx,
		rebind(r.driver, "SELECT id, file_id, mode, status, pages, record_count, error_count, error_message, started_at, finished_at FROM extraction_runs WHERE file_id = ? ORDER BY started_at, id"),
		fileID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.ExtractionRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

func (r *runRepo) update(ctx context.Context, id uuid.UUID, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, rebind(r.driver, query), args...)
	if err != nil {
		r.logger.Error("run update failed", "run_id", id, "error", err)
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("extraction run %s: %w", id, common.ErrNotFound)
	}
	return nil
}

func scanRun(row rowScanner) (*entity.ExtractionRun, error) {
	var (
		run      entity.ExtractionRun
		id       string
		fileID   string
		started  int64
		finished int64
	)
	err := row.Scan(&id, &fileID, &run.Mode, &run.Status, &run.Pages,
		&run.RecordCount, &run.ErrorCount, &run.ErrorMessage, &started, &finished)
	if err != nil {
		return nil, err
	}
	if run.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("run row id %q: %w", id, err)
	}
	if run.FileID, err = uuid.Parse(fileID); err != nil {
		return nil, fmt.Errorf("run row file_id %q: %w", fileID, err)
	}
	run.StartedAt = time.Unix(started, 0).UTC()
	if finished > 0 {
		t := time.Unix(finished, 0).UTC()
		run.FinishedAt = &t
	}
	return &run, nil
}
