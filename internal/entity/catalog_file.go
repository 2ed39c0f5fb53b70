package entity

import (
	"time"

	"github.com/google/uuid"
)

// FileStatus tracks a catalog file through the ingest ledger.
type FileStatus string

const (
	StatusPending    FileStatus = "PENDING"
	StatusProcessing FileStatus = "PROCESSING"
	StatusDone       FileStatus = "DONE"
	StatusFailed     FileStatus = "FAILED"
)

// CatalogFile represents a discovered catalog file for data transfer between
// layers. ContentHash is the hex SHA-256 of the file body and is the dedupe
// key across paths and rescans.
type CatalogFile struct {
	ID           uuid.UUID  `json:"id"`
	SourcePath   string     `json:"source_path"`
	Filename     string     `json:"filename"`
	FileExt      string     `json:"file_ext"`
	FileSize     int64      `json:"file_size"`
	ContentHash  string     `json:"content_hash"`
	Status       FileStatus `json:"status"`
	OutputPath   string     `json:"output_path,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	RecordCount  int        `json:"record_count"`
	DiscoveredAt time.Time  `json:"discovered_at"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
