package entity

import (
	"time"

	"github.com/google/uuid"
)

// RunError records a per-page or per-sheet adapter failure. The failed unit
// contributes zero records; the run itself continues.
type RunError struct {
	Scope string `json:"scope"`
	Page  int    `json:"page,omitempty"`
	Err   string `json:"error"`
}

// RunResult represents the outcome of one extraction run: the assembled
// records plus the run-level error list. A run always yields a structurally
// valid result, possibly with zero records, even when every page failed.
type RunResult struct {
	RunID     uuid.UUID     `json:"run_id"`
	Source    string        `json:"source"`
	Mode      string        `json:"mode"`
	Pages     int           `json:"pages"`
	Records   []Record      `json:"records"`
	Errors    []RunError    `json:"errors,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

// ValidRecords returns the records eligible for emission.
func (r *RunResult) ValidRecords() []Record {
	out := make([]Record, 0, len(r.Records))
	for _, rec := range r.Records {
		if rec.Valid() {
			out = append(out, rec)
		}
	}
	return out
}
