package importer

import (
	"context"

	"github.com/google/uuid"
)

// Service runs the bulk client-import pipeline.
type Service interface {
	// ImportSync runs the full pipeline inline and returns the report.
	// Only a ParseError is returned as an error; every record-level or
	// chunk-level failure is folded into the report.
	ImportSync(ctx context.Context, fileBytes []byte, fileName string) (*ImportReport, error)

	// EnqueueImport stores the file and queues a background import job.
	EnqueueImport(ctx context.Context, fileBytes []byte, fileName string) (*ImportJob, error)

	// ProcessJob is the worker-side entry point for a queued import.
	ProcessJob(ctx context.Context, payload ImportRosterPayload) error

	// GetJob returns a job's status plus live progress.
	GetJob(ctx context.Context, id uuid.UUID) (*JobResponse, error)
}
