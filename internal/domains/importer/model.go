package importer

import (
	"time"

	"github.com/google/uuid"
)

// SourceFormat identifies the tabular format of an uploaded file.
type SourceFormat string

const (
	FormatCSV  SourceFormat = "csv"
	FormatXLSX SourceFormat = "xlsx"
)

// RawSheet is one logical table extracted from an input file.
// A CSV file yields exactly one sheet; an XLSX workbook yields one per tab,
// empty tabs included.
type RawSheet struct {
	Name  string
	Cells [][]string
}

// Extraction is the full result of parsing one uploaded file.
type Extraction struct {
	Format SourceFormat
	Sheets []RawSheet
}

// HeaderMetadata locates the column-header row within a sheet and captures
// the key/value rows that precede it.
type HeaderMetadata struct {
	HeaderRowIndex int
	// PrecedingKeyValues holds label/value pairs found above the header row.
	// Keys are case-folded.
	PrecedingKeyValues map[string]string
}

// CanonicalRecord is the normalized client record produced by the field
// mapper. Optional fields are nil pointers, never empty strings, so later
// stages can tell "absent" from "blank".
type CanonicalRecord struct {
	FullName        string
	Email           *string
	Phone           *string
	Goals           *string
	Injuries        *string
	Equipment       []string
	Notes           *string
	SourceSheetName string
}

// Chunk is a bounded slice of validated records submitted in one round trip.
type Chunk struct {
	Records []*CanonicalRecord
	Index   int
	IsLast  bool
}

// RecordError ties a failure message to a record position. Indices are
// 0-based throughout the pipeline; conversion to human-facing row numbers
// happens only at the HTTP boundary.
type RecordError struct {
	RecordIndex int    `json:"record_index"`
	Message     string `json:"message"`
}

// ImportOutcome is the result of submitting one chunk.
type ImportOutcome struct {
	ChunkIndex    int
	ImportedCount int
	FailedCount   int
	// Errors carry chunk-local record indices.
	Errors []RecordError
}

// ImportReport is the aggregate result of one import run.
type ImportReport struct {
	TotalRecords  int           `json:"total_records"`
	TotalImported int           `json:"total_imported"`
	TotalFailed   int           `json:"total_failed"`
	Errors        []RecordError `json:"errors"`
}

// Strategy is the dispatch mode chosen once per run.
type Strategy string

const (
	StrategyDirect  Strategy = "direct"
	StrategyChunked Strategy = "chunked"
)

// DispatchPolicy configures how a validated record sequence is submitted.
type DispatchPolicy struct {
	// ChunkSize is the number of records per chunk in chunked mode.
	ChunkSize int
	// SizeThreshold is the serialized payload size below which the whole
	// run goes out as a single direct submission.
	SizeThreshold int64
	// DirectCountLimit forces direct mode at or below this record count
	// regardless of payload size.
	DirectCountLimit int
	// Pacing is the delay inserted between chunk submissions. Skipped
	// after the final chunk.
	Pacing time.Duration
}

// Import job statuses.
const (
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

// ImportJob is the persisted record of an asynchronous import run.
type ImportJob struct {
	ID            uuid.UUID     `json:"id"`
	FileName      string        `json:"file_name"`
	ObjectKey     string        `json:"object_key"`
	Status        string        `json:"status"`
	TotalRecords  int           `json:"total_records"`
	TotalImported int           `json:"total_imported"`
	TotalFailed   int           `json:"total_failed"`
	Errors        []RecordError `json:"errors"`
	FailureReason *string       `json:"failure_reason,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
	CompletedAt   *time.Time    `json:"completed_at,omitempty"`
}

// ImportRosterPayload is the asynq task payload for a queued import.
type ImportRosterPayload struct {
	JobID     uuid.UUID `json:"job_id"`
	ObjectKey string    `json:"object_key"`
	FileName  string    `json:"file_name"`
}

// RowError is the presentation form of a RecordError: 1-based row numbers
// for humans reading the report.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ReportResponse is the HTTP shape of an ImportReport.
type ReportResponse struct {
	TotalRecords  int        `json:"total_records"`
	TotalImported int        `json:"total_imported"`
	TotalFailed   int        `json:"total_failed"`
	Errors        []RowError `json:"errors"`
}

// JobResponse is the HTTP shape of an import job plus live progress.
type JobResponse struct {
	ID            uuid.UUID  `json:"id"`
	FileName      string     `json:"file_name"`
	Status        string     `json:"status"`
	Progress      int        `json:"progress"`
	TotalRecords  int        `json:"total_records"`
	TotalImported int        `json:"total_imported"`
	TotalFailed   int        `json:"total_failed"`
	Errors        []RowError `json:"errors"`
	FailureReason *string    `json:"failure_reason,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// ToReportResponse converts a report to its HTTP shape, shifting error
// indices to 1-based rows.
func ToReportResponse(r *ImportReport) *ReportResponse {
	resp := &ReportResponse{
		TotalRecords:  r.TotalRecords,
		TotalImported: r.TotalImported,
		TotalFailed:   r.TotalFailed,
		Errors:        make([]RowError, 0, len(r.Errors)),
	}
	for _, e := range r.Errors {
		resp.Errors = append(resp.Errors, RowError{Row: e.RecordIndex + 1, Message: e.Message})
	}
	return resp
}

// ToJobResponse converts a persisted job plus a live progress percent to
// its HTTP shape.
func ToJobResponse(j *ImportJob, progress int) *JobResponse {
	resp := &JobResponse{
		ID:            j.ID,
		FileName:      j.FileName,
		Status:        j.Status,
		Progress:      progress,
		TotalRecords:  j.TotalRecords,
		TotalImported: j.TotalImported,
		TotalFailed:   j.TotalFailed,
		Errors:        make([]RowError, 0, len(j.Errors)),
		FailureReason: j.FailureReason,
		CreatedAt:     j.CreatedAt,
		CompletedAt:   j.CompletedAt,
	}
	if j.Status == JobStatusCompleted {
		resp.Progress = 100
	}
	for _, e := range j.Errors {
		resp.Errors = append(resp.Errors, RowError{Row: e.RecordIndex + 1, Message: e.Message})
	}
	return resp
}
