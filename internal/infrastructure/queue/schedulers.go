package queue

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"coachhub-backend/internal/config"
	"coachhub-backend/internal/shared"
	"coachhub-backend/pkg/logger"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
	jobConfig config.JobConfig
}

func NewScheduler(redisAddress string, jobConfig config.JobConfig) *Scheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{Addr: redisAddress},
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{
		scheduler: scheduler,
		jobConfig: jobConfig,
	}
}

func (s *Scheduler) RegisterCleanupJobs() error {
	return s.registerPurgeImportJobs()
}

// ================================================
// JOB: Purge finished import jobs (Daily at 3 AM)
// ================================================
func (s *Scheduler) registerPurgeImportJobs() error {
	payload, err := json.Marshal(map[string]interface{}{
		"older_than_days": s.jobConfig.ImportJobRetentionDays,
	})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypePurgeImportJobs, payload)

	_, err = s.scheduler.Register(
		"0 3 * * *", // Daily at 3 AM, low traffic
		task,
		asynq.Queue(shared.QueueMaintenance),
		asynq.MaxRetry(2),
		asynq.Timeout(10*time.Minute),
	)

	if err != nil {
		logger.Error("Failed to register PurgeImportJobs job", err)
		return err
	}

	logger.Info("✓ Registered PurgeImportJobs: daily at 3 AM", map[string]interface{}{})
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
