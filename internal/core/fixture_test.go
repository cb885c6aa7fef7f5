package core_test

import (
	"context"
	"testing"
	"time"

	"agency-billing/internal/core"
	"agency-billing/internal/db/memory"
	"agency-billing/internal/logger"

	"github.com/stretchr/testify/require"
)

// fixture wires the billing services over an in-memory store with a
// controllable clock, a KA business profile and two clients.
type fixture struct {
	store *memory.Store
	now   time.Time
	cfg   core.BillingConfig

	profiles      core.ProfileService
	clients       core.ClientService
	invoices      core.InvoiceService
	payments      core.PaymentService
	subscriptions core.SubscriptionService
	reports       core.ReportingService

	local    *core.Client // same state as the business
	outState *core.Client // different state
}

func newFixture(t *testing.T, today string) *fixture {
	t.Helper()
	f := &fixture{store: memory.NewStore()}
	f.setToday(t, today)
	f.cfg = core.BillingConfig{
		InvoiceDueDays:               15,
		AutoSendSubscriptionInvoices: true,
		Clock:                        func() time.Time { return f.now },
	}
	f.wire(f.store)

	ctx := context.Background()
	_, err := f.profiles.Update(ctx, core.BusinessProfile{
		Name:           "Acme Digital",
		StateCode:      "KA",
		InvoicePrefix:  "INV",
		DefaultTaxRate: d("18"),
	})
	require.NoError(t, err)

	f.local, err = f.clients.Create(ctx, core.Client{Name: "Ravi", CompanyName: "Bangalore Bakes", StateCode: "KA"})
	require.NoError(t, err)
	f.outState, err = f.clients.Create(ctx, core.Client{Name: "Meera", StateCode: "MH"})
	require.NoError(t, err)
	return f
}

// wire builds the services over store, which may wrap f.store.
func (f *fixture) wire(store core.Store) {
	log := logger.Nop()
	f.profiles = core.NewProfileService(store, f.cfg, log)
	f.clients = core.NewClientService(store, f.cfg, log)
	f.invoices = core.NewInvoiceService(store, f.profiles, f.cfg, log)
	f.payments = core.NewPaymentService(store, f.cfg, log)
	f.subscriptions = core.NewSubscriptionService(store, f.profiles, f.cfg, log)
	f.reports = core.NewReportingService(store, f.cfg, log)
}

func (f *fixture) setToday(t *testing.T, day string) {
	t.Helper()
	date, err := core.ParseDate(day)
	require.NoError(t, err)
	f.now = date.Add(10 * time.Hour)
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := core.ParseDate(s)
	require.NoError(t, err)
	return v
}

// invoice creates an invoice for c with one line of amount, issued on issue.
func (f *fixture) invoice(t *testing.T, c *core.Client, amount, issue string, finalize bool) *core.Invoice {
	t.Helper()
	inv, err := f.invoices.CreateInvoice(context.Background(), core.NewInvoiceInput{
		ClientID:  c.ID,
		IssueDate: date(t, issue),
		Lines:     []core.LineInput{{Description: "Consulting", Quantity: d("1"), Rate: d(amount)}},
		Finalize:  finalize,
	})
	require.NoError(t, err)
	return inv
}
