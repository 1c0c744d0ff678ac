package service

import (
	"strings"

	"coachhub-backend/internal/domains/importer"
)

// ValidationResult is the outcome of checking one candidate record.
type ValidationResult struct {
	Accepted bool
	Reason   string
}

func accepted() ValidationResult {
	return ValidationResult{Accepted: true}
}

func rejected(reason string) ValidationResult {
	return ValidationResult{Reason: reason}
}

// RecordValidator gates candidate records before they enter a chunk.
// Rejected records leave no trace in the report totals.
type RecordValidator struct{}

func NewRecordValidator() *RecordValidator {
	return &RecordValidator{}
}

// Validate is pure and idempotent: the same record always yields the same
// result regardless of how often or in what order it is checked.
func (v *RecordValidator) Validate(rec *importer.CanonicalRecord, index int) ValidationResult {
	if rec == nil {
		return rejected("not a valid object")
	}
	if strings.TrimSpace(rec.FullName) == "" {
		return rejected("missing required field: full_name")
	}
	return accepted()
}

// Filter returns the accepted subset in original order.
func (v *RecordValidator) Filter(records []*importer.CanonicalRecord) []*importer.CanonicalRecord {
	valid := make([]*importer.CanonicalRecord, 0, len(records))
	for i, rec := range records {
		if v.Validate(rec, i).Accepted {
			valid = append(valid, rec)
		}
	}
	return valid
}
