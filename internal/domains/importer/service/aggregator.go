package service

import (
	"coachhub-backend/internal/domains/importer"
)

// ReconciliationAggregator folds per-chunk outcomes into one report,
// translating chunk-local error indices back to positions in the original
// validated sequence.
type ReconciliationAggregator struct{}

func NewReconciliationAggregator() *ReconciliationAggregator {
	return &ReconciliationAggregator{}
}

// Aggregate merges outcomes into a report. originalRecordCount is the
// number of records that passed validation, not the raw input count.
// chunkSize must be the size used during partitioning; a chunk's error
// offset is its index times that size, which also holds for a direct run
// (single chunk at index 0, offset 0).
func (a *ReconciliationAggregator) Aggregate(outcomes []importer.ImportOutcome, originalRecordCount, chunkSize int) *importer.ImportReport {
	report := &importer.ImportReport{
		TotalRecords: originalRecordCount,
		Errors:       []importer.RecordError{},
	}

	for _, outcome := range outcomes {
		report.TotalImported += outcome.ImportedCount
		report.TotalFailed += outcome.FailedCount

		offset := outcome.ChunkIndex * chunkSize
		for _, e := range outcome.Errors {
			report.Errors = append(report.Errors, importer.RecordError{
				RecordIndex: offset + e.RecordIndex,
				Message:     e.Message,
			})
		}
	}

	return report
}
