package core

import (
	"strings"
	"time"

	ierr "agency-billing/internal/errors"

	"github.com/shopspring/decimal"
)

// LineInput is one requested line before pricing.
type LineInput struct {
	Description string
	Quantity    decimal.Decimal
	Rate        decimal.Decimal
}

// InvoiceDraft carries everything needed to compose an invoice aggregate.
type InvoiceDraft struct {
	ClientID   int
	IssueDate  time.Time
	DueDate    time.Time
	TaxRate    decimal.Decimal
	InterState bool
	Lines      []LineInput
	Notes      string
}

// Validate checks the shape of a draft. It does not touch storage.
func (d *InvoiceDraft) Validate() error {
	if d.ClientID <= 0 {
		return validationError("client_id", "client is required")
	}
	if d.IssueDate.IsZero() {
		return validationError("issue_date", "issue date is required")
	}
	if d.DueDate.IsZero() {
		return validationError("due_date", "due date is required")
	}
	if Date(d.DueDate).Before(Date(d.IssueDate)) {
		return validationError("due_date", "due date cannot be before the issue date")
	}
	if !validTaxRate(d.TaxRate) {
		return validationError("tax_rate", "tax rate must be between 0 and 100 with at most 2 decimals")
	}
	if len(d.Lines) == 0 {
		return validationError("items", "invoice must have at least one line item")
	}
	for _, l := range d.Lines {
		if strings.TrimSpace(l.Description) == "" {
			return validationError("items.description", "line item description is required")
		}
		if !l.Quantity.IsPositive() {
			return validationError("items.quantity", "line item quantity must be > 0")
		}
		if !fitsScale(l.Quantity, quantityPlaces) {
			return validationError("items.quantity", "line item quantity allows at most 4 decimals")
		}
		if l.Rate.IsNegative() {
			return validationError("items.rate", "line item rate cannot be negative")
		}
		if !fitsScale(l.Rate, ratePlaces) {
			return validationError("items.rate", "line item rate allows at most 2 decimals")
		}
	}
	return nil
}

// ComposeInvoice prices the draft's lines, computes tax and totals and returns
// an unnumbered draft invoice. It never fails; callers validate first.
func ComposeInvoice(d InvoiceDraft) *Invoice {
	items := make([]LineItem, len(d.Lines))
	subtotal := decimal.Zero
	for i, l := range d.Lines {
		lineTotal := RoundMoney(l.Quantity.Mul(l.Rate))
		items[i] = LineItem{
			Position:    i + 1,
			Description: strings.TrimSpace(l.Description),
			Quantity:    l.Quantity,
			Rate:        l.Rate,
			Subtotal:    lineTotal,
		}
		subtotal = subtotal.Add(lineTotal)
	}

	tax := ComputeTax(subtotal, d.TaxRate, d.InterState)
	return &Invoice{
		ClientID:   d.ClientID,
		IssueDate:  Date(d.IssueDate),
		DueDate:    Date(d.DueDate),
		Items:      items,
		TaxRate:    d.TaxRate,
		InterState: d.InterState,
		Subtotal:   subtotal,
		Tax:        tax,
		GrandTotal: subtotal.Add(tax.TotalTax),
		AmountPaid: decimal.Zero,
		Status:     InvoiceStatusDraft,
		Notes:      d.Notes,
	}
}

// EvaluateStatus derives an invoice's status from its payments, due date and
// finalization flag as of today. It is pure and idempotent.
//
// An unpaid invoice that was never finalized stays draft even past its due date.
func EvaluateStatus(inv *Invoice, today time.Time) InvoiceStatus {
	paid := inv.AmountPaid
	switch {
	case paid.IsPositive() && paid.GreaterThanOrEqual(inv.GrandTotal):
		return InvoiceStatusPaid
	case paid.IsPositive():
		return InvoiceStatusPartiallyPaid
	case !inv.IsFinalized():
		return InvoiceStatusDraft
	case Date(inv.DueDate).Before(Date(today)):
		return InvoiceStatusOverdue
	default:
		return InvoiceStatusSent
	}
}

func validationError(field, msg string) error {
	return ierr.NewError(msg).
		WithHint(msg).
		WithReportableDetails(map[string]any{"field": field}).
		Mark(ierr.ErrValidation)
}
