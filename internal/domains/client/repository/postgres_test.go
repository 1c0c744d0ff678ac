package repository

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cl "coachhub-backend/internal/domains/client"
)

// fakeBatchResults replays canned command tags the way a pgx batch would,
// optionally raising an error at a fixed statement index.
type fakeBatchResults struct {
	tags  []pgconn.CommandTag
	errAt int
	calls int
}

func newFakeBatchResults(tags []pgconn.CommandTag) *fakeBatchResults {
	return &fakeBatchResults{tags: tags, errAt: -1}
}

func (f *fakeBatchResults) Exec() (pgconn.CommandTag, error) {
	i := f.calls
	f.calls++
	if f.errAt >= 0 && i == f.errAt {
		return pgconn.CommandTag{}, errors.New("terminating connection due to administrator command")
	}
	return f.tags[i], nil
}

func (f *fakeBatchResults) Query() (pgx.Rows, error) {
	return nil, errors.New("unexpected Query on batch")
}

func (f *fakeBatchResults) QueryRow() pgx.Row { return nil }

func (f *fakeBatchResults) Close() error { return nil }

func insertTags(rowsAffected ...int) []pgconn.CommandTag {
	tags := make([]pgconn.CommandTag, len(rowsAffected))
	for i, n := range rowsAffected {
		if n == 0 {
			tags[i] = pgconn.NewCommandTag("INSERT 0 0")
		} else {
			tags[i] = pgconn.NewCommandTag("INSERT 0 1")
		}
	}
	return tags
}

func TestCollectBatchResultsAllInserted(t *testing.T) {
	results := newFakeBatchResults(insertTags(1, 1, 1))

	created, itemErrs := collectBatchResults(results, 3)

	assert.Equal(t, 3, created)
	assert.Empty(t, itemErrs)
}

func TestCollectBatchResultsReportsDuplicates(t *testing.T) {
	// ON CONFLICT DO NOTHING surfaces a duplicate as zero affected rows.
	results := newFakeBatchResults(insertTags(1, 0, 1))

	created, itemErrs := collectBatchResults(results, 3)

	assert.Equal(t, 2, created)
	require.Len(t, itemErrs, 1)
	assert.Equal(t, cl.BatchItemError{Index: 1, Message: "email already exists"}, itemErrs[0])
}

func TestCollectBatchResultsMidBatchErrorCoversWholeBatch(t *testing.T) {
	// A raised error aborts the implicit transaction, rolling back the
	// inserts before it. Every record must be accounted for: none created,
	// one error entry per index.
	results := newFakeBatchResults(insertTags(1, 1, 1, 1, 1))
	results.errAt = 2

	created, itemErrs := collectBatchResults(results, 5)

	assert.Equal(t, 0, created)
	require.Len(t, itemErrs, 5)
	for i, itemErr := range itemErrs {
		assert.Equal(t, i, itemErr.Index)
		assert.Equal(t, "insert failed", itemErr.Message)
	}
	assert.Equal(t, 5, created+len(itemErrs))
}

func TestCollectBatchResultsErrorReplacesEarlierDuplicates(t *testing.T) {
	// A duplicate noted before the abort is rolled back like everything
	// else; the final list carries exactly one entry per record.
	results := newFakeBatchResults(insertTags(1, 0, 1, 1))
	results.errAt = 3

	created, itemErrs := collectBatchResults(results, 4)

	assert.Equal(t, 0, created)
	require.Len(t, itemErrs, 4)
	seen := make(map[int]bool, len(itemErrs))
	for _, itemErr := range itemErrs {
		assert.False(t, seen[itemErr.Index])
		seen[itemErr.Index] = true
		assert.Equal(t, "insert failed", itemErr.Message)
	}
}
