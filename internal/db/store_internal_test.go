package db

import (
	"testing"

	ierr "agency-billing/internal/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestLikePrefix(t *testing.T) {
	assert.Equal(t, "INV/2024/%", likePrefix("INV/2024/"))
	assert.Equal(t, `A\_B/2024/%`, likePrefix("A_B/2024/"))
	assert.Equal(t, `50\%/2024/%`, likePrefix("50%/2024/"))
	assert.Equal(t, `X\\Y/2024/%`, likePrefix(`X\Y/2024/`))
}

func TestPgErrorCode(t *testing.T) {
	wrapped := dbError(&pgconn.PgError{Code: "23505", ConstraintName: "invoices_invoice_number_key"}, "insert invoice")
	code, constraint := pgErrorCode(wrapped)
	assert.Equal(t, "23505", code)
	assert.Equal(t, "invoices_invoice_number_key", constraint)
	assert.True(t, ierr.Is(wrapped, ierr.ErrDatabase))

	code, constraint = pgErrorCode(ierr.NewError("plain").Mark(ierr.ErrSystem))
	assert.Empty(t, code)
	assert.Empty(t, constraint)
}
