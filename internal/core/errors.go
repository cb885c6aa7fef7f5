package core

import (
	ierr "agency-billing/internal/errors"

	"github.com/cockroachdb/errors"
)

// Billing-specific error identities. Storage and services mark them together
// with a category from internal/errors (conflict, not found, configuration).
var (
	ErrInvoiceNumberTaken     = errors.New("invoice number already issued")
	ErrCycleAlreadyInvoiced   = errors.New("subscription already invoiced for this billing cycle")
	ErrBusinessProfileMissing = errors.New("business profile not configured")
	ErrInvoiceNotFound        = errors.New("invoice not found")
	ErrPaymentNotFound        = errors.New("payment not found")
	ErrClientNotFound         = errors.New("client not found")
	ErrSubscriptionNotFound   = errors.New("subscription not found")
)

// NotFoundError reports a missing row, marked with ierr.ErrNotFound and ref.
func NotFoundError(ref error, entity string, id int) error {
	return ierr.NewErrorf("%s %d not found", entity, id).
		WithHintf("%s %d does not exist", entity, id).
		WithReportableDetails(map[string]any{"entity": entity, "id": id}).
		Mark(ierr.ErrNotFound, ref)
}

// NumberTakenError reports a lost invoice-number race. Callers retry it.
func NumberTakenError(number string) error {
	return ierr.NewErrorf("invoice number %s already issued", number).
		WithHintf("Invoice number %s was taken concurrently, please retry", number).
		WithReportableDetails(map[string]any{"invoice_number": number}).
		Mark(ierr.ErrConflict, ErrInvoiceNumberTaken)
}

// DuplicateCycleError reports an idempotency key that was already used by
// another subscription invoice.
func DuplicateCycleError(key string) error {
	return ierr.NewErrorf("idempotency key %s already used", key).
		WithHint("This billing cycle has already been invoiced").
		WithReportableDetails(map[string]any{"idempotency_key": key}).
		Mark(ierr.ErrConflict, ErrCycleAlreadyInvoiced)
}
