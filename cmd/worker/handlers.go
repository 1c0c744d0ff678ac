package main

import (
	"github.com/hibiken/asynq"

	importJob "coachhub-backend/internal/domains/importer/job"
	"coachhub-backend/internal/shared"
	"coachhub-backend/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	importHandler *importJob.Handler
}

// initializeHandlers creates all job handlers with their dependencies
func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		importHandler: importJob.NewHandler(
			c.ImportService,
			c.ImportRepo,
			c.Config.Job.ImportJobRetentionDays,
		),
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	// Import tasks
	mux.HandleFunc(shared.TypeImportRoster, h.importHandler.HandleImportRoster)

	// Maintenance tasks
	mux.HandleFunc(shared.TypePurgeImportJobs, h.importHandler.HandlePurgeImportJobs)
}
