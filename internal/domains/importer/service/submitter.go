package service

import (
	"context"

	"github.com/lib/pq"

	cl "coachhub-backend/internal/domains/client"
	"coachhub-backend/internal/domains/importer"
)

// clientSubmitter is the production ChunkSubmitter: it lands a chunk in
// the clients table through the batch repository. Per-record failures
// reported by the repository (duplicate emails, mostly) become per-record
// errors; the rest of the chunk still counts as imported.
type clientSubmitter struct {
	repo cl.Repository
}

func NewClientSubmitter(repo cl.Repository) ChunkSubmitter {
	return &clientSubmitter{repo: repo}
}

func (s *clientSubmitter) SubmitChunk(ctx context.Context, chunk importer.Chunk) (importer.ImportOutcome, error) {
	clients := make([]*cl.Client, 0, len(chunk.Records))
	for _, rec := range chunk.Records {
		clients = append(clients, toClient(rec))
	}

	created, itemErrs, err := s.repo.BatchCreate(ctx, clients)
	if err != nil {
		return importer.ImportOutcome{}, err
	}

	outcome := importer.ImportOutcome{
		ImportedCount: created,
		FailedCount:   len(itemErrs),
		Errors:        make([]importer.RecordError, 0, len(itemErrs)),
	}
	for _, e := range itemErrs {
		outcome.Errors = append(outcome.Errors, importer.RecordError{
			RecordIndex: e.Index,
			Message:     e.Message,
		})
	}

	return outcome, nil
}

func toClient(rec *importer.CanonicalRecord) *cl.Client {
	return &cl.Client{
		FullName:  rec.FullName,
		Email:     rec.Email,
		Phone:     rec.Phone,
		Goals:     rec.Goals,
		Injuries:  rec.Injuries,
		Equipment: pq.StringArray(rec.Equipment),
		Notes:     rec.Notes,
	}
}
