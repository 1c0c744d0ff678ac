package importer

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository is the data-access contract for import jobs.
type Repository interface {
	Create(ctx context.Context, job *ImportJob) error
	GetByID(ctx context.Context, id uuid.UUID) (*ImportJob, error)
	MarkProcessing(ctx context.Context, id uuid.UUID) error
	Complete(ctx context.Context, id uuid.UUID, report *ImportReport) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error

	// DeleteFinishedBefore removes completed and failed jobs whose
	// completion time is older than cutoff. Returns the rows removed.
	DeleteFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
