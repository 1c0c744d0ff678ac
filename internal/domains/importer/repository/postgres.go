package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"coachhub-backend/internal/domains/importer"
)

const jobColumns = `id, file_name, object_key, status, total_records, total_imported, total_failed, errors, failure_reason, created_at, updated_at, completed_at`

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) importer.Repository {
	return &postgresRepository{
		pool: pool,
	}
}

func scanJob(row pgx.Row) (*importer.ImportJob, error) {
	var (
		job       importer.ImportJob
		errorsRaw []byte
	)
	err := row.Scan(
		&job.ID, &job.FileName, &job.ObjectKey, &job.Status,
		&job.TotalRecords, &job.TotalImported, &job.TotalFailed,
		&errorsRaw, &job.FailureReason,
		&job.CreatedAt, &job.UpdatedAt, &job.CompletedAt,
	)
	if err != nil {
		return nil, err
	}

	job.Errors = []importer.RecordError{}
	if len(errorsRaw) > 0 {
		if err := json.Unmarshal(errorsRaw, &job.Errors); err != nil {
			return nil, fmt.Errorf("decode job errors: %w", err)
		}
	}

	return &job, nil
}

// Create inserts a pending job row.
func (r *postgresRepository) Create(ctx context.Context, job *importer.ImportJob) error {
	query := `
    INSERT INTO import_jobs (id, file_name, object_key, status, errors, created_at, updated_at)
    VALUES ($1, $2, $3, $4, '[]'::jsonb, NOW(), NOW())`

	_, err := r.pool.Exec(ctx, query, job.ID, job.FileName, job.ObjectKey, job.Status)
	if err != nil {
		return fmt.Errorf("create import job: %w", err)
	}
	return nil
}

// GetByID retrieves one job row.
func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*importer.ImportJob, error) {
	query := `SELECT ` + jobColumns + ` FROM import_jobs WHERE id = $1`

	job, err := scanJob(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, importer.ErrJobNotFound
		}
		return nil, fmt.Errorf("get import job: %w", err)
	}
	return job, nil
}

// MarkProcessing transitions a job to processing.
func (r *postgresRepository) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE import_jobs SET status = $2, updated_at = NOW() WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, importer.JobStatusProcessing)
	if err != nil {
		return fmt.Errorf("mark import job processing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return importer.ErrJobNotFound
	}
	return nil
}

// Complete records the final report on a job row.
func (r *postgresRepository) Complete(ctx context.Context, id uuid.UUID, report *importer.ImportReport) error {
	errorsJSON, err := json.Marshal(report.Errors)
	if err != nil {
		return fmt.Errorf("encode job errors: %w", err)
	}

	query := `
    UPDATE import_jobs
    SET status = $2, total_records = $3, total_imported = $4, total_failed = $5,
        errors = $6, updated_at = NOW(), completed_at = NOW()
    WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query,
		id, importer.JobStatusCompleted,
		report.TotalRecords, report.TotalImported, report.TotalFailed,
		errorsJSON,
	)
	if err != nil {
		return fmt.Errorf("complete import job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return importer.ErrJobNotFound
	}
	return nil
}

// MarkFailed records a run-level failure (unparseable file, lost upload).
func (r *postgresRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	query := `
    UPDATE import_jobs
    SET status = $2, failure_reason = $3, updated_at = NOW(), completed_at = NOW()
    WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, importer.JobStatusFailed, reason)
	if err != nil {
		return fmt.Errorf("mark import job failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return importer.ErrJobNotFound
	}
	return nil
}

// DeleteFinishedBefore purges finished jobs older than cutoff.
func (r *postgresRepository) DeleteFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
    DELETE FROM import_jobs
    WHERE status IN ($1, $2) AND completed_at < $3`

	tag, err := r.pool.Exec(ctx, query, importer.JobStatusCompleted, importer.JobStatusFailed, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge import jobs: %w", err)
	}
	return tag.RowsAffected(), nil
}
