package client

import (
	"errors"
	"fmt"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Sentinel errors for the client domain. Compared with errors.Is so
// wrapped errors still map to the right HTTP status.
var (
	ErrClientNotFound  = errors.New("client not found")
	ErrDuplicateEmail  = errors.New("client email already exists")
	ErrInvalidClientID = errors.New("invalid client id")
)

// ValidationError carries the offending field of a rejected request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: field '%s' - %s", e.Field, e.Message)
}

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// GetHTTPStatusCode maps domain errors to HTTP status codes in one place.
func GetHTTPStatusCode(err error) int {
	var (
		vErr    *ValidationError
		ozzoErr validation.Errors
	)

	switch {
	case errors.Is(err, ErrClientNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicateEmail):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidClientID):
		return http.StatusBadRequest
	case errors.As(err, &vErr), errors.As(err, &ozzoErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
