package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"coachhub-backend/internal/config"
	"coachhub-backend/internal/domains/importer"
)

func newTestImportService(submitter ChunkSubmitter) importer.Service {
	cfg := config.ImportConfig{
		ChunkSize:          20,
		SizeThresholdBytes: 4 * 1024 * 1024,
		DirectCountLimit:   10,
	}
	// Storage, cache and queue are only touched on the async path; the
	// inline pipeline runs without them.
	return NewImportService(cfg, submitter, nil, nil, nil, nil)
}

func TestImportSyncCSV(t *testing.T) {
	submitter := &fakeSubmitter{}
	svc := newTestImportService(submitter)

	data := []byte("Client Name,E-mail,Goal,Equipment\n" +
		"Jane Doe,jane@x.com,Lose weight,\"Dumbbells; Resistance Bands,  Kettlebell\"\n" +
		"John Smith,john@x.com,Bulk,\n" +
		",missing@x.com,,\n") // no name: dropped before dispatch

	report, err := svc.ImportSync(context.Background(), data, "roster.csv")
	require.NoError(t, err)

	// The nameless row never entered the pipeline.
	assert.Equal(t, 2, report.TotalRecords)
	assert.Equal(t, 2, report.TotalImported)
	assert.Equal(t, 0, report.TotalFailed)
	assert.Empty(t, report.Errors)

	require.Len(t, submitter.calls, 1)
	records := submitter.calls[0].Records
	require.Len(t, records, 2)
	assert.Equal(t, "Jane Doe", records[0].FullName)
	assert.Equal(t, []string{"Dumbbells", "Resistance Bands", "Kettlebell"}, records[0].Equipment)
	require.NotNil(t, records[0].Goals)
	assert.Equal(t, "Lose weight", *records[0].Goals)
}

func TestImportSyncXLSXSkipsTemplateSheets(t *testing.T) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", "Jane Doe")
	f.SetCellValue("Jane Doe", "A1", "Date")
	f.SetCellValue("Jane Doe", "B1", "Workout")
	f.SetCellValue("Jane Doe", "A2", "2026-01-05")
	f.SetCellValue("Jane Doe", "B2", "Squats")

	_, err := f.NewSheet("Template")
	require.NoError(t, err)
	f.SetCellValue("Template", "A1", "Name")
	f.SetCellValue("Template", "A2", "Example Person")

	_, err = f.NewSheet("Instructions")
	require.NoError(t, err)
	f.SetCellValue("Instructions", "A1", "Fill in one tab per client")

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	submitter := &fakeSubmitter{}
	svc := newTestImportService(submitter)

	report, err := svc.ImportSync(context.Background(), buf.Bytes(), "roster.xlsx")
	require.NoError(t, err)

	// Only the real client tab survives; template tabs are expected
	// noise, not errors.
	assert.Equal(t, 1, report.TotalRecords)
	assert.Equal(t, 1, report.TotalImported)
	assert.Empty(t, report.Errors)

	require.Len(t, submitter.calls, 1)
	require.Len(t, submitter.calls[0].Records, 1)
	assert.Equal(t, "Jane Doe", submitter.calls[0].Records[0].FullName)
}

func TestImportSyncParseErrorAbortsRun(t *testing.T) {
	submitter := &fakeSubmitter{}
	svc := newTestImportService(submitter)

	_, err := svc.ImportSync(context.Background(), []byte{0x00, 0xDE, 0xAD}, "roster.dat")
	require.Error(t, err)
	assert.True(t, importer.IsParseError(err))
	// Nothing was submitted: a corrupt file aborts before dispatch.
	assert.Empty(t, submitter.calls)
}

func TestImportSyncPartialFailureReachesReport(t *testing.T) {
	// Collaborator reports one duplicate inside the chunk; the rest of
	// the chunk still lands.
	submitter := &duplicateSubmitter{duplicateIndex: 1}
	svc := newTestImportService(submitter)

	data := []byte("Name,Email\nJane Doe,jane@x.com\nJane Doe,jane@x.com\nJohn Smith,john@x.com\n")

	report, err := svc.ImportSync(context.Background(), data, "roster.csv")
	require.NoError(t, err)

	assert.Equal(t, 3, report.TotalRecords)
	assert.Equal(t, 2, report.TotalImported)
	assert.Equal(t, 1, report.TotalFailed)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, 1, report.Errors[0].RecordIndex)
	assert.Equal(t, "email already exists", report.Errors[0].Message)
}

// duplicateSubmitter fails exactly one record per chunk, the way the batch
// repository reports a unique-constraint conflict.
type duplicateSubmitter struct {
	duplicateIndex int
}

func (s *duplicateSubmitter) SubmitChunk(_ context.Context, chunk importer.Chunk) (importer.ImportOutcome, error) {
	outcome := importer.ImportOutcome{ImportedCount: len(chunk.Records)}
	if s.duplicateIndex < len(chunk.Records) {
		outcome.ImportedCount--
		outcome.FailedCount = 1
		outcome.Errors = []importer.RecordError{
			{RecordIndex: s.duplicateIndex, Message: "email already exists"},
		}
	}
	return outcome, nil
}
