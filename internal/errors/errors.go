package errors

import (
	"net/http"

	"github.com/cockroachdb/errors"
)

// Sentinel categories. Every error leaving a storage-facing operation is marked
// with exactly one of these so adapters can map it without string matching.
var (
	ErrValidation    = errors.New("validation error")
	ErrNotFound      = errors.New("resource not found")
	ErrConfiguration = errors.New("configuration error")
	ErrConflict      = errors.New("conflict")
	ErrDatabase      = errors.New("database error")
	ErrSystem        = errors.New("system error")
)

const (
	ErrCodeValidation    = "validation_error"
	ErrCodeNotFound      = "not_found"
	ErrCodeConfiguration = "configuration_error"
	ErrCodeConflict      = "conflict"
	ErrCodeDatabase      = "database_error"
	ErrCodeSystem        = "system_error"
)

type category struct {
	sentinel error
	code     string
	status   int
}

// ordered: the first matching category wins
var categories = []category{
	{ErrValidation, ErrCodeValidation, http.StatusBadRequest},
	{ErrNotFound, ErrCodeNotFound, http.StatusNotFound},
	{ErrConflict, ErrCodeConflict, http.StatusConflict},
	{ErrConfiguration, ErrCodeConfiguration, http.StatusServiceUnavailable},
	{ErrDatabase, ErrCodeDatabase, http.StatusInternalServerError},
	{ErrSystem, ErrCodeSystem, http.StatusInternalServerError},
}

func Is(err, reference error) bool {
	return errors.Is(err, reference)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConfiguration checks if an error is caused by missing or broken setup data
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsConflict checks if an error is a write conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// HTTPStatusFromErr maps an error category to an HTTP status code.
func HTTPStatusFromErr(err error) int {
	for _, c := range categories {
		if errors.Is(err, c.sentinel) {
			return c.status
		}
	}
	return http.StatusInternalServerError
}

// CodeFromErr returns the machine-readable code for an error category.
func CodeFromErr(err error) string {
	for _, c := range categories {
		if errors.Is(err, c.sentinel) {
			return c.code
		}
	}
	return ErrCodeSystem
}
