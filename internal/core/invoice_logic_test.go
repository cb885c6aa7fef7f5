package core_test

import (
	"testing"
	"time"

	"agency-billing/internal/core"
	ierr "agency-billing/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposeInvoice(t *testing.T) {
	inv := core.ComposeInvoice(core.InvoiceDraft{
		ClientID:  1,
		IssueDate: date(t, "2024-03-01"),
		DueDate:   date(t, "2024-03-16"),
		TaxRate:   d("18"),
		Lines: []core.LineInput{
			{Description: " Design ", Quantity: d("2.5"), Rate: d("1000")},
			{Description: "Hosting", Quantity: d("0.6667"), Rate: d("1499.93")},
		},
	})

	require.Len(t, inv.Items, 2)
	assert.Equal(t, 1, inv.Items[0].Position)
	assert.Equal(t, "Design", inv.Items[0].Description)
	assert.True(t, d("2500").Equal(inv.Items[0].Subtotal))
	assert.True(t, d("1000").Equal(inv.Items[1].Subtotal), "line subtotal rounded to 2 dp")
	assert.True(t, d("3500").Equal(inv.Subtotal))
	assert.True(t, d("315").Equal(inv.Tax.CentralTax))
	assert.True(t, d("630").Equal(inv.Tax.TotalTax))
	assert.True(t, d("4130").Equal(inv.GrandTotal))
	assert.True(t, inv.AmountPaid.IsZero())
	assert.Equal(t, core.InvoiceStatusDraft, inv.Status)
}

func TestInvoiceDraft_Validate(t *testing.T) {
	valid := func() core.InvoiceDraft {
		return core.InvoiceDraft{
			ClientID:  1,
			IssueDate: date(t, "2024-03-01"),
			DueDate:   date(t, "2024-03-16"),
			TaxRate:   d("18"),
			Lines:     []core.LineInput{{Description: "Work", Quantity: d("1"), Rate: d("100")}},
		}
	}
	ok := valid()
	require.NoError(t, ok.Validate())

	padded := valid()
	padded.TaxRate = d("18.000")
	padded.Lines[0].Rate = d("100.5000")
	require.NoError(t, padded.Validate(), "trailing zeros are not extra precision")

	tests := map[string]func(*core.InvoiceDraft){
		"missing client":       func(x *core.InvoiceDraft) { x.ClientID = 0 },
		"due before issue":     func(x *core.InvoiceDraft) { x.DueDate = date(t, "2024-02-28") },
		"negative tax rate":    func(x *core.InvoiceDraft) { x.TaxRate = d("-1") },
		"tax rate above 100":   func(x *core.InvoiceDraft) { x.TaxRate = d("100.01") },
		"tax rate 3 decimals":  func(x *core.InvoiceDraft) { x.TaxRate = d("18.005") },
		"no lines":             func(x *core.InvoiceDraft) { x.Lines = nil },
		"blank description":    func(x *core.InvoiceDraft) { x.Lines[0].Description = "  " },
		"zero quantity":        func(x *core.InvoiceDraft) { x.Lines[0].Quantity = d("0") },
		"quantity 5 decimals":  func(x *core.InvoiceDraft) { x.Lines[0].Quantity = d("1.00005") },
		"negative rate":        func(x *core.InvoiceDraft) { x.Lines[0].Rate = d("-5") },
		"rate below the paisa": func(x *core.InvoiceDraft) { x.Lines[0].Rate = d("0.333") },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			draft := valid()
			mutate(&draft)
			err := draft.Validate()
			require.Error(t, err)
			assert.True(t, ierr.IsValidation(err))
		})
	}
}

func TestEvaluateStatus(t *testing.T) {
	sent := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	base := core.Invoice{
		GrandTotal: d("1180"),
		AmountPaid: d("0"),
		DueDate:    date(t, "2024-03-16"),
		SentAt:     &sent,
	}

	tests := []struct {
		name   string
		paid   string
		draft  bool
		today  string
		status core.InvoiceStatus
	}{
		{"unpaid before due", "0", false, "2024-03-10", core.InvoiceStatusSent},
		{"unpaid on due date", "0", false, "2024-03-16", core.InvoiceStatusSent},
		{"unpaid after due", "0", false, "2024-03-17", core.InvoiceStatusOverdue},
		{"partial", "500", false, "2024-03-10", core.InvoiceStatusPartiallyPaid},
		{"partial after due", "500", false, "2024-04-30", core.InvoiceStatusPartiallyPaid},
		{"exact", "1180", false, "2024-03-10", core.InvoiceStatusPaid},
		{"overpaid", "2000", false, "2024-03-10", core.InvoiceStatusPaid},
		{"draft stays draft past due", "0", true, "2024-05-01", core.InvoiceStatusDraft},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			inv := base
			inv.AmountPaid = d(tc.paid)
			if tc.draft {
				inv.SentAt = nil
			}
			today := date(t, tc.today)
			got := core.EvaluateStatus(&inv, today)
			assert.Equal(t, tc.status, got)

			inv.Status = got
			assert.Equal(t, got, core.EvaluateStatus(&inv, today), "idempotent")
		})
	}
}

func TestInvoice_BalanceDueClampsOverpayment(t *testing.T) {
	inv := core.Invoice{GrandTotal: d("100"), AmountPaid: d("150")}
	assert.True(t, inv.BalanceDue().IsZero())

	inv.AmountPaid = d("40")
	assert.True(t, d("60").Equal(inv.BalanceDue()))
}
