package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"coachhub-backend/internal/domains/importer"
)

func TestValidateRejectsNilRecord(t *testing.T) {
	v := NewRecordValidator()

	result := v.Validate(nil, 0)
	assert.False(t, result.Accepted)
	assert.Equal(t, "not a valid object", result.Reason)
}

func TestValidateRejectsBlankName(t *testing.T) {
	v := NewRecordValidator()

	for _, name := range []string{"", "   ", "\t"} {
		result := v.Validate(&importer.CanonicalRecord{FullName: name}, 0)
		assert.False(t, result.Accepted)
		assert.Equal(t, "missing required field: full_name", result.Reason)
	}
}

func TestValidateAcceptsMinimalRecord(t *testing.T) {
	v := NewRecordValidator()

	result := v.Validate(&importer.CanonicalRecord{FullName: "Jane Doe"}, 0)
	assert.True(t, result.Accepted)
	assert.Empty(t, result.Reason)
}

func TestValidateIsIdempotent(t *testing.T) {
	v := NewRecordValidator()
	rec := &importer.CanonicalRecord{FullName: "Jane Doe"}

	// An accepted record stays accepted however often it is re-checked,
	// and the index argument must not influence the verdict.
	for i := 0; i < 50; i++ {
		assert.True(t, v.Validate(rec, i).Accepted)
	}
}

func TestFilterKeepsOrder(t *testing.T) {
	v := NewRecordValidator()

	records := []*importer.CanonicalRecord{
		{FullName: "Jane Doe"},
		nil,
		{FullName: "  "},
		{FullName: "John Smith"},
	}

	valid := v.Filter(records)
	assert.Len(t, valid, 2)
	assert.Equal(t, "Jane Doe", valid[0].FullName)
	assert.Equal(t, "John Smith", valid[1].FullName)
}
