// Package ingest discovers catalog files, registers them in the ledger and
// feeds the processing queue. Discovery runs two ways at once: an fsnotify
// watch on the catalog directory and a periodic rescan that catches events
// the watcher missed.
package ingest

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Kurai777/Alda-oficial/internal/entity"
)

// IngestionResult is the per-file ingest outcome.
type IngestionResult struct {
	SourcePath   string
	FileID       uuid.UUID
	Status       entity.FileStatus
	Deduplicated bool
	HashHex      string
	FileExt      string
	FileSize     int64
	DiscoveredAt time.Time
	Err          string
}

// DirStats summarizes a directory ingest.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Succeeded    uint32
	Deduplicated uint32
	Failed       uint32
}

// Ingestor is the discovery behavior the service depends on.
type Ingestor interface {
	// IngestPath registers a single path.
	IngestPath(ctx context.Context, path string) (IngestionResult, error)
	// IngestDirectory registers all matching files under root.
	IngestDirectory(ctx context.Context, root string, skipHidden bool) ([]IngestionResult, DirStats, error)
}
