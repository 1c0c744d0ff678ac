package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"coachhub-backend/internal/domains/importer"
	"coachhub-backend/pkg/logger"
)

// ChunkSubmitter is the network boundary: it hands one chunk of records to
// the datastore and reports per-record outcomes. A returned error means the
// whole chunk failed in transit.
type ChunkSubmitter interface {
	SubmitChunk(ctx context.Context, chunk importer.Chunk) (importer.ImportOutcome, error)
}

// ProgressFunc receives the run's completion percentage after each chunk.
// It is a notification hook only; its behavior never steers the dispatch
// loop.
type ProgressFunc func(percent int)

// BatchDispatcher submits validated records strictly in order, one chunk
// at a time, with a fixed pacing delay between chunks. A chunk failure is
// recorded and the loop moves on; only cancellation stops it early, and
// even then the completed outcomes are kept so a partial report can still
// be aggregated.
type BatchDispatcher struct {
	submitter ChunkSubmitter
	policy    importer.DispatchPolicy
	progress  ProgressFunc
}

func NewBatchDispatcher(submitter ChunkSubmitter, policy importer.DispatchPolicy, progress ProgressFunc) *BatchDispatcher {
	if policy.ChunkSize <= 0 {
		policy.ChunkSize = 20
	}
	if progress == nil {
		progress = func(int) {}
	}
	return &BatchDispatcher{
		submitter: submitter,
		policy:    policy,
		progress:  progress,
	}
}

// ChooseStrategy picks the dispatch mode once per run. Direct when the
// serialized payload is strictly below the size threshold or the record
// count is within the direct limit; chunked otherwise. The strict
// comparison keeps a payload sitting exactly on the threshold on the
// chunked side every time.
func (d *BatchDispatcher) ChooseStrategy(records []*importer.CanonicalRecord) importer.Strategy {
	if len(records) <= d.policy.DirectCountLimit {
		return importer.StrategyDirect
	}
	if estimatePayloadSize(records) < d.policy.SizeThreshold {
		return importer.StrategyDirect
	}
	return importer.StrategyChunked
}

// Dispatch submits all records and returns one outcome per chunk, in
// submission order. It never returns an error: transport failures become
// failed outcomes and cancellation truncates the run after the in-flight
// chunk.
func (d *BatchDispatcher) Dispatch(ctx context.Context, records []*importer.CanonicalRecord) ([]importer.ImportOutcome, importer.Strategy) {
	if len(records) == 0 {
		return nil, importer.StrategyDirect
	}

	strategy := d.ChooseStrategy(records)
	chunks := d.partition(records, strategy)
	total := len(chunks)

	logger.Debug(fmt.Sprintf("dispatching %d records as %d %s chunk(s)", len(records), total, strategy))

	outcomes := make([]importer.ImportOutcome, 0, total)
	for i, chunk := range chunks {
		outcome, err := d.submitter.SubmitChunk(ctx, chunk)
		if err != nil {
			outcome = failedOutcome(chunk, err)
		}
		outcome.ChunkIndex = chunk.Index
		outcomes = append(outcomes, outcome)

		d.progress(int(math.Round(float64(i+1) / float64(total) * 100)))

		if ctx.Err() != nil {
			// The in-flight chunk already got its failed outcome;
			// everything completed so far stays in the result.
			break
		}

		if !chunk.IsLast && d.policy.Pacing > 0 {
			if !d.pace(ctx) {
				break
			}
		}
	}

	return outcomes, strategy
}

// pace waits the inter-chunk delay. Returns false when cancelled mid-wait.
func (d *BatchDispatcher) pace(ctx context.Context) bool {
	timer := time.NewTimer(d.policy.Pacing)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func (d *BatchDispatcher) partition(records []*importer.CanonicalRecord, strategy importer.Strategy) []importer.Chunk {
	if strategy == importer.StrategyDirect {
		return []importer.Chunk{{Records: records, Index: 0, IsLast: true}}
	}

	size := d.policy.ChunkSize
	var chunks []importer.Chunk
	for start := 0; start < len(records); start += size {
		end := start + size
		if end > len(records) {
			end = len(records)
		}
		chunks = append(chunks, importer.Chunk{
			Records: records[start:end],
			Index:   len(chunks),
			IsLast:  end == len(records),
		})
	}
	return chunks
}

// failedOutcome marks every record of a chunk failed after a transport
// error, with chunk-local indices.
func failedOutcome(chunk importer.Chunk, err error) importer.ImportOutcome {
	outcome := importer.ImportOutcome{
		FailedCount: len(chunk.Records),
		Errors:      make([]importer.RecordError, 0, len(chunk.Records)),
	}
	for i := range chunk.Records {
		outcome.Errors = append(outcome.Errors, importer.RecordError{
			RecordIndex: i,
			Message:     fmt.Sprintf("chunk submission failed: %v", err),
		})
	}
	return outcome
}

// estimatePayloadSize measures the records as they would go over the wire.
// json.Marshal is deterministic for a fixed input, so the strategy choice
// cannot flap between runs.
func estimatePayloadSize(records []*importer.CanonicalRecord) int64 {
	data, err := json.Marshal(records)
	if err != nil {
		return 0
	}
	return int64(len(data))
}
