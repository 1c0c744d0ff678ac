package job

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"coachhub-backend/internal/domains/importer"
	"coachhub-backend/pkg/logger"
)

// Handler processes the importer's background tasks.
type Handler struct {
	service       importer.Service
	jobs          importer.Repository
	retentionDays int
}

func NewHandler(service importer.Service, jobs importer.Repository, retentionDays int) *Handler {
	return &Handler{
		service:       service,
		jobs:          jobs,
		retentionDays: retentionDays,
	}
}

// HandleImportRoster runs one queued import.
func (h *Handler) HandleImportRoster(ctx context.Context, t *asynq.Task) error {
	var payload importer.ImportRosterPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		// A payload that will not decode cannot succeed on retry.
		return fmt.Errorf("decode import payload: %v: %w", err, asynq.SkipRetry)
	}

	logger.Info(fmt.Sprintf("processing import job %s (%s)", payload.JobID, payload.FileName))
	return h.service.ProcessJob(ctx, payload)
}

// HandlePurgeImportJobs removes finished job rows past the retention window.
func (h *Handler) HandlePurgeImportJobs(ctx context.Context, t *asynq.Task) error {
	cutoff := time.Now().AddDate(0, 0, -h.retentionDays)

	deleted, err := h.jobs.DeleteFinishedBefore(ctx, cutoff)
	if err != nil {
		return err
	}

	logger.Info(fmt.Sprintf("purged %d import jobs finished before %s", deleted, cutoff.Format(time.RFC3339)))
	return nil
}
