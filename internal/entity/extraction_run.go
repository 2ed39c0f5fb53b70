package entity

import (
	"time"

	"github.com/google/uuid"
)

// Run lifecycle states recorded in the ledger.
const (
	RunStatusRunning = "RUNNING"
	RunStatusDone    = "DONE"
	RunStatusFailed  = "FAILED"
)

// ExtractionRun represents one recorded extraction attempt for data transfer
// between layers. Mode is filled in when the run finishes, once the
// processor has decided how the file was read.
type ExtractionRun struct {
	ID           uuid.UUID  `json:"id"`
	FileID       uuid.UUID  `json:"file_id"`
	Mode         string     `json:"mode,omitempty"`
	Status       string     `json:"status"`
	Pages        int        `json:"pages"`
	RecordCount  int        `json:"record_count"`
	ErrorCount   int        `json:"error_count"`
	ErrorMessage string     `json:"error_message,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}
