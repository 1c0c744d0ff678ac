package importer

import (
	"errors"
	"fmt"
	"net/http"
)

// ParseError means the uploaded bytes could not be interpreted as tabular
// data. It is the only error that aborts an import run outright; every
// other failure is folded into the ImportReport.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("parse error: %s", e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func NewParseError(reason string, err error) *ParseError {
	return &ParseError{Reason: reason, Err: err}
}

// IsParseError reports whether err is (or wraps) a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

var (
	ErrJobNotFound     = errors.New("import job not found")
	ErrInvalidJobID    = errors.New("invalid import job id")
	ErrFileTooLarge    = errors.New("uploaded file exceeds the size limit")
	ErrEmptyFile       = errors.New("uploaded file is empty")
	ErrUnsupportedFile = errors.New("unsupported file type")
)

// GetHTTPStatusCode maps importer errors to HTTP statuses.
func GetHTTPStatusCode(err error) int {
	switch {
	case errors.Is(err, ErrJobNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidJobID), errors.Is(err, ErrEmptyFile), errors.Is(err, ErrUnsupportedFile):
		return http.StatusBadRequest
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case IsParseError(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
