package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Kurai777/Alda-oficial/internal/common"
	"github.com/Kurai777/Alda-oficial/internal/entity"
)

// CatalogFileRepository is the ledger of discovered catalog files. The
// content hash is the dedupe key: a file seen again under a new path or on
// a rescan is returned as existing instead of creating a second row.
type CatalogFileRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.CatalogFile, error)
	GetByHash(ctx context.Context, hash string) (*entity.CatalogFile, error)
	UpsertByHash(ctx context.Context, sourcePath, filename, ext string, size int64, hash string, discoveredAt time.Time) (*entity.CatalogFile, bool, error)
	MarkProcessing(ctx context.Context, id uuid.UUID) error
	MarkDone(ctx context.Context, id uuid.UUID, outputPath string, recordCount int) error
	MarkFailed(ctx context.Context, id uuid.UUID, message string) error
	ListByStatus(ctx context.Context, status entity.FileStatus, limit int) ([]*entity.CatalogFile, error)
	ResetProcessing(ctx context.Context) (int64, error)
}

type catalogFileRepo struct {
	db     *sql.DB
	driver string
	logger *slog.Logger
}

func NewCatalogFileRepository(db *sql.DB, driver string, logger *slog.Logger) CatalogFileRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &catalogFileRepo{db: db, driver: driver, logger: logger}
}

const fileColumns = "id, source_path, filename, file_ext, file_size, content_hash, status, output_path, error_message, record_count, discovered_at, started_at, finished_at, updated_at"

func (r *catalogFileRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.CatalogFile, error) {
	row := r.db.QueryRowContext(ctx,
		rebind(r.driver, "SELECT "+fileColumns+" FROM catalog_files WHERE id = ?"),
		id.String())
	return scanCatalogFile(row)
}

func (r *catalogFileRepo) GetByHash(ctx context.Context, hash string) (*entity.CatalogFile, error) {
	row := r.db.QueryRowContext(ctx,
		rebind(r.driver, "SELECT "+fileColumns+" FROM catalog_files WHERE content_hash = ?"),
		hash)
	return scanCatalogFile(row)
}

func (r *catalogFileRepo) UpsertByHash(ctx context.Context, sourcePath, filename, ext string, size int64, hash string, discoveredAt time.Time) (*entity.CatalogFile, bool, error) {
	existing, err := r.GetByHash(ctx, hash)
	if err == nil {
		return existing, true, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, false, err
	}

	f := &entity.CatalogFile{
		ID:           uuid.New(),
		SourcePath:   sourcePath,
		Filename:     filename,
		FileExt:      ext,
		FileSize:     size,
		ContentHash:  hash,
		Status:       entity.StatusPending,
		DiscoveredAt: discoveredAt.UTC(),
		UpdatedAt:    discoveredAt.UTC(),
	}
	_, err = r.db.ExecContext(ctx,
		rebind(r.driver, "INSERT INTO catalog_files (id, source_path, filename, file_ext, file_size, content_hash, status, discovered_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)"),
		f.ID.String(), f.SourcePath, f.Filename, f.FileExt, f.FileSize, f.ContentHash,
		string(f.Status), f.DiscoveredAt.Unix(), f.UpdatedAt.Unix())
	if err != nil {
		r.logger.Error("failed to create catalog file", "source_path", sourcePath, "error", err)
		return nil, false, err
	}
	r.logger.Info("catalog file registered", "file_id", f.ID, "filename", filename, "size", size)
	return f, false, nil
}

func (r *catalogFileRepo) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	now := time.Now().Unix()
	return r.update(ctx, id,
		"UPDATE catalog_files SET status = ?, started_at = ?, updated_at = ? WHERE id = ?",
		string(entity.StatusProcessing), now, now, id.String())
}

func (r *catalogFileRepo) MarkDone(ctx context.Context, id uuid.UUID, outputPath string, recordCount int) error {
	now := time.Now().Unix()
	err := r.update(ctx, id,
		"UPDATE catalog_files SET status = ?, output_path = ?, record_count = ?, error_message = '', finished_at = ?, updated_at = ? WHERE id = ?",
		string(entity.StatusDone), outputPath, recordCount, now, now, id.String())
	if err != nil {
		return err
	}
	r.logger.Info("catalog file done", "file_id", id, "records", recordCount, "output", outputPath)
	return nil
}

func (r *catalogFileRepo) MarkFailed(ctx context.Context, id uuid.UUID, message string) error {
	now := time.Now().Unix()
	err := r.update(ctx, id,
		"UPDATE catalog_files SET status = ?, error_message = ?, finished_at = ?, updated_at = ? WHERE id = ?",
		string(entity.StatusFailed), message, now, now, id.String())
	if err != nil {
		return err
	}
	r.logger.Warn("catalog file failed", "file_id", id, "error", message)
	return nil
}

func (r *catalogFileRepo) ListByStatus(ctx context.Context, status entity.FileStatus, limit int) ([]*entity.CatalogFile, error) {
	query := "SELECT " + fileColumns + " FROM catalog_files WHERE status = ? ORDER BY discovered_at, id"
	args := []any{string(status)}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, rebind(r.driver, query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.CatalogFile
	for rows.Next() {
		f, err := scanCatalogFile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// ResetProcessing returns files stuck in PROCESSING to PENDING. Called on
// startup so work interrupted by a crash is picked up again.
func (r *catalogFileRepo) ResetProcessing(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		rebind(r.driver, "UPDATE catalog_files SET status = ?, updated_at = ? WHERE status = ?"),
		string(entity.StatusPending), time.Now().Unix(), string(entity.StatusProcessing))
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		r.logger.Warn("requeued interrupted files", "count", n)
	}
	return n, nil
}

func (r *catalogFileRepo) update(ctx context.Context, id uuid.UUID, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, rebind(r.driver, query), args...)
	if err != nil {
		r.logger.Error("ledger update failed", "file_id", id, "error", err)
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("catalog file %s: %w", id, common.ErrNotFound)
	}
	return nil
}

// CountFilesByStatus reports how many ledger rows sit in each status. Used
// by health tooling; a growing PROCESSING count with no workers running
// points at interrupted jobs.
func CountFilesByStatus(ctx context.Context, db *sql.DB) (map[entity.FileStatus]int64, error) {
	rows, err := db.QueryContext(ctx, "SELECT status, COUNT(*) FROM catalog_files GROUP BY status")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[entity.FileStatus]int64)
	for rows.Next() {
		var (
			status string
			n      int64
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[entity.FileStatus(status)] = n
	}
	return counts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCatalogFile(row rowScanner) (*entity.CatalogFile, error) {
	var (
		f          entity.CatalogFile
		id         string
		status     string
		discovered int64
		started    int64
		finished   int64
		updated    int64
	)
	err := row.Scan(&id, &f.SourcePath, &f.Filename, &f.FileExt, &f.FileSize,
		&f.ContentHash, &status, &f.OutputPath, &f.ErrorMessage, &f.RecordCount,
		&discovered, &started, &finished, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	f.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("ledger row id %q: %w", id, err)
	}
	f.Status = entity.FileStatus(status)
	f.DiscoveredAt = time.Unix(discovered, 0).UTC()
	f.UpdatedAt = time.Unix(updated, 0).UTC()
	if started > 0 {
		t := time.Unix(started, 0).UTC()
		f.StartedAt = &t
	}
	if finished > 0 {
		t := time.Unix(finished, 0).UTC()
		f.FinishedAt = &t
	}
	return &f, nil
}
