package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coachhub-backend/internal/domains/importer"
)

// fakeSubmitter records every chunk it receives and succeeds unless told
// otherwise.
type fakeSubmitter struct {
	failChunks map[int]bool
	onSubmit   func(chunk importer.Chunk)
	calls      []importer.Chunk
}

func (f *fakeSubmitter) SubmitChunk(_ context.Context, chunk importer.Chunk) (importer.ImportOutcome, error) {
	f.calls = append(f.calls, chunk)
	if f.onSubmit != nil {
		f.onSubmit(chunk)
	}
	if f.failChunks[chunk.Index] {
		return importer.ImportOutcome{}, errors.New("connection reset")
	}
	return importer.ImportOutcome{ImportedCount: len(chunk.Records)}, nil
}

func makeRecords(n int) []*importer.CanonicalRecord {
	records := make([]*importer.CanonicalRecord, n)
	for i := range records {
		records[i] = &importer.CanonicalRecord{FullName: fmt.Sprintf("Client %03d", i)}
	}
	return records
}

func chunkedPolicy(chunkSize int) importer.DispatchPolicy {
	return importer.DispatchPolicy{
		ChunkSize:        chunkSize,
		SizeThreshold:    1, // any payload is at or above this
		DirectCountLimit: 0,
	}
}

func TestChooseStrategySmallCountIsDirect(t *testing.T) {
	policy := importer.DispatchPolicy{
		ChunkSize:        20,
		SizeThreshold:    64 * 1024 * 1024,
		DirectCountLimit: 10,
	}
	d := NewBatchDispatcher(&fakeSubmitter{}, policy, nil)

	assert.Equal(t, importer.StrategyDirect, d.ChooseStrategy(makeRecords(3)))
}

func TestChooseStrategyBoundaryIsDeterministic(t *testing.T) {
	records := makeRecords(50)
	policy := importer.DispatchPolicy{
		ChunkSize:        20,
		SizeThreshold:    estimatePayloadSize(records), // exactly at the threshold
		DirectCountLimit: 5,
	}
	d := NewBatchDispatcher(&fakeSubmitter{}, policy, nil)

	// Strictly-below keeps an at-threshold payload on the chunked side,
	// run after run.
	for i := 0; i < 10; i++ {
		assert.Equal(t, importer.StrategyChunked, d.ChooseStrategy(records))
	}
}

func TestDispatchDirectSingleChunk(t *testing.T) {
	submitter := &fakeSubmitter{}
	policy := importer.DispatchPolicy{
		ChunkSize:        20,
		SizeThreshold:    64 * 1024 * 1024,
		DirectCountLimit: 10,
	}
	d := NewBatchDispatcher(submitter, policy, nil)

	outcomes, strategy := d.Dispatch(context.Background(), makeRecords(3))

	assert.Equal(t, importer.StrategyDirect, strategy)
	require.Len(t, outcomes, 1)
	require.Len(t, submitter.calls, 1)
	assert.Equal(t, 0, submitter.calls[0].Index)
	assert.True(t, submitter.calls[0].IsLast)
	assert.Equal(t, 3, outcomes[0].ImportedCount)
	assert.Equal(t, 0, outcomes[0].FailedCount)
}

func TestDispatchChunkedPartitioning(t *testing.T) {
	submitter := &fakeSubmitter{}
	d := NewBatchDispatcher(submitter, chunkedPolicy(20), nil)

	outcomes, strategy := d.Dispatch(context.Background(), makeRecords(45))

	assert.Equal(t, importer.StrategyChunked, strategy)
	require.Len(t, outcomes, 3)
	require.Len(t, submitter.calls, 3)

	assert.Len(t, submitter.calls[0].Records, 20)
	assert.Len(t, submitter.calls[1].Records, 20)
	assert.Len(t, submitter.calls[2].Records, 5)
	assert.False(t, submitter.calls[0].IsLast)
	assert.False(t, submitter.calls[1].IsLast)
	assert.True(t, submitter.calls[2].IsLast)

	// Submission order matches input order.
	assert.Equal(t, "Client 000", submitter.calls[0].Records[0].FullName)
	assert.Equal(t, "Client 020", submitter.calls[1].Records[0].FullName)
	assert.Equal(t, "Client 040", submitter.calls[2].Records[0].FullName)
}

func TestDispatchFailedChunkDoesNotHaltRun(t *testing.T) {
	submitter := &fakeSubmitter{failChunks: map[int]bool{1: true}}
	d := NewBatchDispatcher(submitter, chunkedPolicy(20), nil)

	outcomes, _ := d.Dispatch(context.Background(), makeRecords(45))

	require.Len(t, outcomes, 3)
	assert.Equal(t, 20, outcomes[0].ImportedCount)
	assert.Equal(t, 20, outcomes[1].FailedCount)
	assert.Equal(t, 5, outcomes[2].ImportedCount)

	// The failed chunk carries one synthetic error per record, with
	// chunk-local indices.
	require.Len(t, outcomes[1].Errors, 20)
	assert.Equal(t, 0, outcomes[1].Errors[0].RecordIndex)
	assert.Equal(t, 19, outcomes[1].Errors[19].RecordIndex)
	assert.Contains(t, outcomes[1].Errors[0].Message, "chunk submission failed")
}

func TestDispatchProgressIsMonotonicAndReaches100(t *testing.T) {
	var percents []int
	submitter := &fakeSubmitter{failChunks: map[int]bool{0: true}}
	d := NewBatchDispatcher(submitter, chunkedPolicy(10), func(p int) {
		percents = append(percents, p)
	})

	d.Dispatch(context.Background(), makeRecords(35))

	require.Len(t, percents, 4)
	for i := 1; i < len(percents); i++ {
		assert.GreaterOrEqual(t, percents[i], percents[i-1])
	}
	assert.Equal(t, 100, percents[len(percents)-1])
	// Progress counts completed chunks, failed ones included.
	assert.Equal(t, 25, percents[0])
}

func TestDispatchPacingBetweenChunks(t *testing.T) {
	policy := chunkedPolicy(10)
	policy.Pacing = 25 * time.Millisecond
	d := NewBatchDispatcher(&fakeSubmitter{}, policy, nil)

	start := time.Now()
	d.Dispatch(context.Background(), makeRecords(30))
	elapsed := time.Since(start)

	// Two pacing delays between three chunks; none after the last.
	assert.GreaterOrEqual(t, elapsed, 50*time.Millisecond)
	assert.Less(t, elapsed, 200*time.Millisecond)
}

func TestDispatchNoPacingForSingleChunk(t *testing.T) {
	policy := importer.DispatchPolicy{
		ChunkSize:        20,
		SizeThreshold:    64 * 1024 * 1024,
		DirectCountLimit: 10,
		Pacing:           200 * time.Millisecond,
	}
	d := NewBatchDispatcher(&fakeSubmitter{}, policy, nil)

	start := time.Now()
	d.Dispatch(context.Background(), makeRecords(3))
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestDispatchCancellationKeepsCompletedOutcomes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	submitter := &fakeSubmitter{failChunks: map[int]bool{1: true}}
	submitter.onSubmit = func(chunk importer.Chunk) {
		if chunk.Index == 1 {
			cancel()
		}
	}

	d := NewBatchDispatcher(submitter, chunkedPolicy(10), nil)
	outcomes, _ := d.Dispatch(ctx, makeRecords(40))

	// Chunk 0 completed, chunk 1 was in flight when the run was
	// cancelled; chunks 2 and 3 never went out.
	require.Len(t, outcomes, 2)
	require.Len(t, submitter.calls, 2)
	assert.Equal(t, 10, outcomes[0].ImportedCount)
	assert.Equal(t, 10, outcomes[1].FailedCount)

	// A partial report is still derivable from what completed.
	report := NewReconciliationAggregator().Aggregate(outcomes, 40, 10)
	assert.Equal(t, 10, report.TotalImported)
	assert.Equal(t, 10, report.TotalFailed)
}

func TestDispatchEmptyInput(t *testing.T) {
	submitter := &fakeSubmitter{}
	d := NewBatchDispatcher(submitter, chunkedPolicy(20), nil)

	outcomes, strategy := d.Dispatch(context.Background(), nil)

	assert.Empty(t, outcomes)
	assert.Empty(t, submitter.calls)
	assert.Equal(t, importer.StrategyDirect, strategy)
}
