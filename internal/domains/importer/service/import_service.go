package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"coachhub-backend/internal/config"
	"coachhub-backend/internal/domains/importer"
	"coachhub-backend/internal/infrastructure/storage"
	"coachhub-backend/internal/shared"
	"coachhub-backend/pkg/cache"
	"coachhub-backend/pkg/logger"
)

const (
	progressKeyPrefix = "imports:progress:"
	progressTTL       = time.Hour
)

type importService struct {
	extractor  *TabularExtractor
	mapper     *FieldMapper
	validator  *RecordValidator
	aggregator *ReconciliationAggregator
	submitter  ChunkSubmitter
	policy     importer.DispatchPolicy
	jobs       importer.Repository
	storage    *storage.MinIOStorage
	cache      cache.Cache
	queue      *asynq.Client
}

func NewImportService(
	cfg config.ImportConfig,
	submitter ChunkSubmitter,
	jobs importer.Repository,
	store *storage.MinIOStorage,
	cache cache.Cache,
	queue *asynq.Client,
) importer.Service {
	return &importService{
		extractor:  NewTabularExtractor(),
		mapper:     NewFieldMapper(),
		validator:  NewRecordValidator(),
		aggregator: NewReconciliationAggregator(),
		submitter:  submitter,
		policy: importer.DispatchPolicy{
			ChunkSize:        cfg.ChunkSize,
			SizeThreshold:    cfg.SizeThresholdBytes,
			DirectCountLimit: cfg.DirectCountLimit,
			Pacing:           cfg.ChunkPacing,
		},
		jobs:    jobs,
		storage: store,
		cache:   cache,
		queue:   queue,
	}
}

// ImportSync runs the whole pipeline inline. Only a ParseError surfaces as
// an error; everything else lands in the report.
func (s *importService) ImportSync(ctx context.Context, fileBytes []byte, fileName string) (*importer.ImportReport, error) {
	return s.run(ctx, fileBytes, fileName, nil)
}

// EnqueueImport stores the file and hands the run to the worker.
func (s *importService) EnqueueImport(ctx context.Context, fileBytes []byte, fileName string) (*importer.ImportJob, error) {
	job := &importer.ImportJob{
		ID:       uuid.New(),
		FileName: fileName,
		Status:   importer.JobStatusPending,
	}
	job.ObjectKey = fmt.Sprintf("imports/%s/%s", job.ID, fileName)

	if _, err := s.storage.Upload(ctx, job.ObjectKey, fileBytes, "application/octet-stream"); err != nil {
		return nil, fmt.Errorf("store import file: %w", err)
	}

	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(importer.ImportRosterPayload{
		JobID:     job.ID,
		ObjectKey: job.ObjectKey,
		FileName:  job.FileName,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal import task payload: %w", err)
	}

	task := asynq.NewTask(shared.TypeImportRoster, payload)
	if _, err := s.queue.Enqueue(task, asynq.Queue(shared.QueueImports), asynq.MaxRetry(3)); err != nil {
		return nil, fmt.Errorf("enqueue import task: %w", err)
	}

	logger.Info(fmt.Sprintf("queued import job %s for file %s", job.ID, fileName))
	return job, nil
}

// ProcessJob is the worker-side run: download the stored file, execute the
// pipeline with a redis-backed progress sink, record the outcome on the
// job row.
func (s *importService) ProcessJob(ctx context.Context, payload importer.ImportRosterPayload) error {
	if err := s.jobs.MarkProcessing(ctx, payload.JobID); err != nil {
		return err
	}

	fileBytes, err := s.storage.Download(ctx, payload.ObjectKey)
	if err != nil {
		s.failJob(ctx, payload.JobID, fmt.Sprintf("could not read stored file: %v", err))
		return err
	}

	progress := func(percent int) {
		key := progressKeyPrefix + payload.JobID.String()
		if err := s.cache.Set(ctx, key, percent, progressTTL); err != nil {
			logger.Error("import progress write failed", err)
		}
	}

	report, err := s.run(ctx, fileBytes, payload.FileName, progress)
	if err != nil {
		// A ParseError is terminal: the file will not parse better on
		// a retry, so the job is failed rather than requeued.
		s.failJob(ctx, payload.JobID, err.Error())
		return nil
	}

	if err := s.jobs.Complete(ctx, payload.JobID, report); err != nil {
		return err
	}

	if err := s.storage.Delete(ctx, payload.ObjectKey); err != nil {
		logger.Error("import file cleanup failed", err)
	}

	logger.Info(fmt.Sprintf(
		"import job %s done: %d imported, %d failed of %d",
		payload.JobID, report.TotalImported, report.TotalFailed, report.TotalRecords,
	))
	return nil
}

// GetJob returns a job row plus the live progress percent from redis.
func (s *importService) GetJob(ctx context.Context, id uuid.UUID) (*importer.JobResponse, error) {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	progress := 0
	if job.Status == importer.JobStatusProcessing {
		var cached int
		if found, err := s.cache.Get(ctx, progressKeyPrefix+id.String(), &cached); err == nil && found {
			progress = cached
		}
	}

	return importer.ToJobResponse(job, progress), nil
}

// run is the pipeline itself: extract, map, validate, dispatch, aggregate.
func (s *importService) run(ctx context.Context, fileBytes []byte, fileName string, progress ProgressFunc) (*importer.ImportReport, error) {
	extraction, err := s.extractor.Extract(fileBytes, fileName)
	if err != nil {
		return nil, err
	}

	candidates := s.mapSheets(extraction)

	// Records the validator rejects never entered the pipeline: they are
	// absent from the totals, not counted as failures.
	records := s.validator.Filter(candidates)

	dispatcher := NewBatchDispatcher(s.submitter, s.policy, progress)
	outcomes, strategy := dispatcher.Dispatch(ctx, records)

	chunkSize := s.policy.ChunkSize
	if strategy == importer.StrategyDirect {
		chunkSize = len(records)
	}

	return s.aggregator.Aggregate(outcomes, len(records), chunkSize), nil
}

// mapSheets applies the format-appropriate mapping mode: one record per
// data row for delimited files, one record per tab for workbooks.
func (s *importService) mapSheets(extraction *importer.Extraction) []*importer.CanonicalRecord {
	var candidates []*importer.CanonicalRecord

	if extraction.Format == importer.FormatCSV {
		sheet := extraction.Sheets[0]
		if len(sheet.Cells) < 2 {
			return candidates
		}
		headers := sheet.Cells[0]
		for _, row := range sheet.Cells[1:] {
			candidates = append(candidates, s.mapper.MapRow(headers, row, sheet.Name))
		}
		return candidates
	}

	for _, sheet := range extraction.Sheets {
		meta := s.extractor.DetectHeader(sheet)
		candidates = append(candidates, s.mapper.MapSheet(sheet, meta))
	}
	return candidates
}

func (s *importService) failJob(ctx context.Context, id uuid.UUID, reason string) {
	if err := s.jobs.MarkFailed(ctx, id, reason); err != nil {
		logger.Error("could not mark import job failed", err)
	}
}
