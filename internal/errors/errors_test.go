package errors_test

import (
	"net/http"
	"testing"

	ierr "agency-billing/internal/errors"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusFromErr(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", ierr.NewError("bad").Mark(ierr.ErrValidation), http.StatusBadRequest, ierr.ErrCodeValidation},
		{"not found", ierr.NewError("gone").Mark(ierr.ErrNotFound), http.StatusNotFound, ierr.ErrCodeNotFound},
		{"conflict", ierr.NewError("taken").Mark(ierr.ErrConflict), http.StatusConflict, ierr.ErrCodeConflict},
		{"configuration", ierr.NewError("unset").Mark(ierr.ErrConfiguration), http.StatusServiceUnavailable, ierr.ErrCodeConfiguration},
		{"database", ierr.NewError("io").Mark(ierr.ErrDatabase), http.StatusInternalServerError, ierr.ErrCodeDatabase},
		{"unmarked", errors.New("plain"), http.StatusInternalServerError, ierr.ErrCodeSystem},
		{"validation wins", ierr.NewError("both").Mark(ierr.ErrConflict, ierr.ErrValidation), http.StatusBadRequest, ierr.ErrCodeValidation},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.status, ierr.HTTPStatusFromErr(tc.err))
			assert.Equal(t, tc.code, ierr.CodeFromErr(tc.err))
		})
	}
}

func TestBuilder_HintsAndDetails(t *testing.T) {
	cause := errors.New("connection reset")
	err := ierr.WithError(cause).
		WithMessage("load invoice").
		WithHint("Invoice could not be loaded").
		WithReportableDetails(map[string]any{"invoice_id": 7}).
		Mark(ierr.ErrDatabase)

	assert.True(t, ierr.Is(err, ierr.ErrDatabase))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "load invoice")
	assert.Equal(t, "Invoice could not be loaded", ierr.DisplayMessage(err, "fallback"))
	assert.Equal(t, float64(7), ierr.Details(err)["invoice_id"])

	plain := errors.New("plain")
	assert.Equal(t, "fallback", ierr.DisplayMessage(plain, "fallback"))
	assert.Empty(t, ierr.Details(plain))
}
