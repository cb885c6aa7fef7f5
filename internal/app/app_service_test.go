package app_test

import (
	"context"
	"testing"
	"time"

	"agency-billing/internal/app"
	"agency-billing/internal/core"
	"agency-billing/internal/db/memory"
	ierr "agency-billing/internal/errors"
	"agency-billing/internal/logger"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (app.ApplicationService, *core.Client) {
	t.Helper()
	now := time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC)
	svc := app.NewAppService(memory.NewStore(), core.BillingConfig{
		InvoiceDueDays: 15,
		Clock:          func() time.Time { return now },
	}, logger.Nop())

	ctx := context.Background()
	_, err := svc.UpdateProfile(ctx, app.UpdateProfileRequest{
		Name: "Acme Digital", StateCode: "KA", InvoicePrefix: "AC", DefaultTaxRate: decimal.NewFromInt(18),
	})
	require.NoError(t, err)
	c, err := svc.CreateClient(ctx, app.CreateClientRequest{Name: "Meera", StateCode: "MH", Email: "meera@example.com"})
	require.NoError(t, err)
	return svc, c
}

func TestInvoiceLifecycle(t *testing.T) {
	svc, client := newService(t)
	ctx := context.Background()

	created, err := svc.CreateInvoice(ctx, app.CreateInvoiceRequest{
		ClientID:  client.ID,
		IssueDate: "2024-03-01",
		Items: []app.InvoiceLineRequest{
			{Description: "Landing page", Quantity: decimal.NewFromInt(1), Rate: decimal.NewFromInt(20000)},
			{Description: "Copywriting", Quantity: decimal.NewFromInt(4), Rate: decimal.NewFromInt(1500)},
		},
		Finalize: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "AC/2024/0001", created.Invoice.Number)
	assert.True(t, decimal.NewFromInt(30680).Equal(created.BalanceDue))

	paid, err := svc.RecordPayment(ctx, app.RecordPaymentRequest{
		InvoiceID: created.Invoice.ID, Amount: decimal.NewFromInt(10000), PaymentDate: "2024-03-04", Method: "upi",
	})
	require.NoError(t, err)
	assert.Equal(t, core.InvoiceStatusPartiallyPaid, paid.Invoice.Invoice.Status)
	assert.True(t, decimal.NewFromInt(20680).Equal(paid.Invoice.BalanceDue))

	got, err := svc.GetInvoice(ctx, created.Invoice.ID)
	require.NoError(t, err)
	require.Len(t, got.Payments, 1)
	assert.Equal(t, core.PaymentMethodUPI, got.Payments[0].Method)

	list, err := svc.ListInvoices(ctx, app.ListInvoicesRequest{Status: "partially_paid"})
	require.NoError(t, err)
	assert.Len(t, list.Invoices, 1)

	report, err := svc.GenerateReport(ctx, app.ReportRequest{From: "2024-03-01", To: "2024-03-31"})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(10000).Equal(report.TotalCollected))

	after, err := svc.DeletePayment(ctx, paid.Payment.ID)
	require.NoError(t, err)
	assert.Equal(t, core.InvoiceStatusSent, after.Invoice.Status)
}

func TestRequestValidation(t *testing.T) {
	svc, client := newService(t)
	ctx := context.Background()

	_, err := svc.CreateInvoice(ctx, app.CreateInvoiceRequest{ClientID: client.ID})
	require.Error(t, err)
	assert.True(t, ierr.IsValidation(err))
	assert.Contains(t, ierr.Details(err), "items")

	_, err = svc.CreateInvoice(ctx, app.CreateInvoiceRequest{
		ClientID: client.ID, IssueDate: "01/03/2024",
		Items: []app.InvoiceLineRequest{{Description: "x", Quantity: decimal.NewFromInt(1), Rate: decimal.NewFromInt(1)}},
	})
	assert.True(t, ierr.IsValidation(err))

	_, err = svc.RecordPayment(ctx, app.RecordPaymentRequest{InvoiceID: 1, Amount: decimal.NewFromInt(1), Method: "barter"})
	assert.True(t, ierr.IsValidation(err))

	_, err = svc.RecordPayment(ctx, app.RecordPaymentRequest{InvoiceID: 1, Amount: decimal.RequireFromString("0.004")})
	assert.True(t, ierr.IsValidation(err))

	_, err = svc.CreateSubscription(ctx, app.CreateSubscriptionRequest{ClientID: client.ID, ServiceName: "SEO", MonthlyRate: decimal.NewFromInt(100), BillingCycleDay: 40})
	assert.True(t, ierr.IsValidation(err))

	_, err = svc.GenerateReport(ctx, app.ReportRequest{From: "2024-03-01"})
	assert.True(t, ierr.IsValidation(err))

	_, err = svc.CreateClient(ctx, app.CreateClientRequest{Name: "X", StateCode: "KA", Email: "not-an-email"})
	assert.True(t, ierr.IsValidation(err))
}

func TestSubscriptionFlow(t *testing.T) {
	svc, client := newService(t)
	ctx := context.Background()

	sub, err := svc.CreateSubscription(ctx, app.CreateSubscriptionRequest{
		ClientID: client.ID, ServiceName: "Hosting", MonthlyRate: decimal.NewFromInt(999), BillingCycleDay: 1,
	})
	require.NoError(t, err)

	res, err := svc.GenerateDueInvoices(ctx)
	require.NoError(t, err)
	require.Len(t, res.Generated, 1)

	_, err = svc.GenerateSubscriptionInvoice(ctx, sub.ID)
	assert.True(t, ierr.IsConflict(err))

	subs, err := svc.ListSubscriptions(ctx, true)
	require.NoError(t, err)
	require.Len(t, subs.Subscriptions, 1)
	assert.NotNil(t, subs.Subscriptions[0].LastInvoiceDate)

	refreshed, err := svc.RefreshInvoiceStatuses(ctx)
	require.NoError(t, err)
	assert.Zero(t, refreshed.Changed)
}
