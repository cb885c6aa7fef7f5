package core_test

import (
	"context"
	"testing"

	"agency-billing/internal/core"
	ierr "agency-billing/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordPayment_PartialThenFull(t *testing.T) {
	f := newFixture(t, "2024-03-05")
	ctx := context.Background()
	inv := f.invoice(t, f.local, "1000", "2024-03-01", true)

	p, got, err := f.payments.RecordPayment(ctx, core.RecordPaymentInput{
		InvoiceID: inv.ID,
		Amount:    d("500"),
		Method:    core.PaymentMethodUPI,
		Reference: " UTR123 ",
	})
	require.NoError(t, err)
	assert.NotZero(t, p.ID)
	assert.Equal(t, "UTR123", p.Reference)
	assert.Equal(t, date(t, "2024-03-05"), p.PaymentDate)
	assert.Equal(t, core.InvoiceStatusPartiallyPaid, got.Status)
	assert.True(t, d("680").Equal(got.BalanceDue()))

	_, got, err = f.payments.RecordPayment(ctx, core.RecordPaymentInput{InvoiceID: inv.ID, Amount: d("680")})
	require.NoError(t, err)
	assert.Equal(t, core.InvoiceStatusPaid, got.Status)
	assert.True(t, got.BalanceDue().IsZero())

	list, err := f.payments.ListPayments(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, core.PaymentMethodBankTransfer, list[1].Method, "method defaults to bank transfer")
}

func TestRecordPayment_Overpayment(t *testing.T) {
	f := newFixture(t, "2024-03-05")
	inv := f.invoice(t, f.local, "100", "2024-03-01", true)

	_, got, err := f.payments.RecordPayment(context.Background(), core.RecordPaymentInput{InvoiceID: inv.ID, Amount: d("500")})
	require.NoError(t, err)
	assert.Equal(t, core.InvoiceStatusPaid, got.Status)
	assert.True(t, d("500").Equal(got.AmountPaid))
	assert.True(t, got.BalanceDue().IsZero())
}

func TestRecordPayment_FinalizesDraft(t *testing.T) {
	f := newFixture(t, "2024-03-05")
	ctx := context.Background()
	inv := f.invoice(t, f.local, "1000", "2024-03-01", false)

	p, got, err := f.payments.RecordPayment(ctx, core.RecordPaymentInput{InvoiceID: inv.ID, Amount: d("100")})
	require.NoError(t, err)
	assert.Equal(t, core.InvoiceStatusPartiallyPaid, got.Status)
	assert.NotNil(t, got.SentAt)

	got, err = f.payments.DeletePayment(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, core.InvoiceStatusSent, got.Status, "a paid-against draft never returns to draft")
	assert.True(t, got.AmountPaid.IsZero())
}

func TestDeletePayment_ReevaluatesStatus(t *testing.T) {
	f := newFixture(t, "2024-03-05")
	ctx := context.Background()
	inv := f.invoice(t, f.local, "100", "2024-03-01", true)

	p, _, err := f.payments.RecordPayment(ctx, core.RecordPaymentInput{InvoiceID: inv.ID, Amount: d("118")})
	require.NoError(t, err)

	f.setToday(t, "2024-04-01")
	got, err := f.payments.DeletePayment(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, core.InvoiceStatusOverdue, got.Status)

	_, err = f.payments.DeletePayment(ctx, p.ID)
	require.Error(t, err)
	assert.True(t, ierr.IsNotFound(err))
	assert.True(t, ierr.Is(err, core.ErrPaymentNotFound))
}

func TestRecordPayment_Validation(t *testing.T) {
	f := newFixture(t, "2024-03-05")
	ctx := context.Background()
	inv := f.invoice(t, f.local, "100", "2024-03-01", true)

	tests := map[string]core.RecordPaymentInput{
		"zero amount":      {InvoiceID: inv.ID, Amount: d("0")},
		"negative amount":  {InvoiceID: inv.ID, Amount: d("-10")},
		"sub-paisa amount": {InvoiceID: inv.ID, Amount: d("0.004")},
		"unknown method":   {InvoiceID: inv.ID, Amount: d("10"), Method: "barter"},
		"missing invoice":  {Amount: d("10")},
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := f.payments.RecordPayment(ctx, in)
			require.Error(t, err)
			assert.True(t, ierr.IsValidation(err))
		})
	}

	list, err := f.payments.ListPayments(ctx, inv.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRecordPayment_SubPaisaLeavesDraftUntouched(t *testing.T) {
	f := newFixture(t, "2024-03-05")
	ctx := context.Background()
	inv := f.invoice(t, f.local, "100", "2024-03-01", false)

	_, _, err := f.payments.RecordPayment(ctx, core.RecordPaymentInput{InvoiceID: inv.ID, Amount: d("0.004")})
	require.Error(t, err)
	assert.True(t, ierr.IsValidation(err))

	got, err := f.invoices.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, core.InvoiceStatusDraft, got.Status)
	assert.Nil(t, got.SentAt)
}

func TestRecordPayment_UnknownInvoice(t *testing.T) {
	f := newFixture(t, "2024-03-05")
	ctx := context.Background()

	_, _, err := f.payments.RecordPayment(ctx, core.RecordPaymentInput{InvoiceID: 42, Amount: d("10")})
	require.Error(t, err)
	assert.True(t, ierr.Is(err, core.ErrInvoiceNotFound))

	_, err = f.payments.ListPayments(ctx, 42)
	assert.True(t, ierr.IsNotFound(err))
}
