package async

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Job is one catalog file awaiting processing.
type Job struct {
	FileID      uuid.UUID
	Path        string
	Force       bool // re-submission of a file the ledger already tracks
	SubmittedAt time.Time
}

// Handler runs one job to completion: extraction, output, ledger updates.
type Handler interface {
	Handle(ctx context.Context, job Job) error
}

// Queue accepts jobs for asynchronous processing. The daemon's ingest
// service holds this interface so tests can substitute a recording fake.
type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
