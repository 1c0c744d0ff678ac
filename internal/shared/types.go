package shared

// Asynq task types
const (
	TypeImportRoster    = "import:roster"
	TypePurgeImportJobs = "import:purge_jobs"
)

// Queue names
const (
	QueueImports     = "imports"
	QueueMaintenance = "maintenance"
)
