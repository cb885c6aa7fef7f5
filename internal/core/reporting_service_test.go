package core_test

import (
	"bytes"
	"context"
	"testing"

	"agency-billing/internal/core"
	ierr "agency-billing/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateReport(t *testing.T) {
	f := newFixture(t, "2024-03-20")
	ctx := context.Background()

	inv1 := f.invoice(t, f.local, "1000", "2024-03-01", true)
	inv2 := f.invoice(t, f.outState, "2000", "2024-03-05", true)
	inv3 := f.invoice(t, f.local, "500", "2024-02-10", true)

	pay := func(inv *core.Invoice, amount, on string) {
		_, _, err := f.payments.RecordPayment(ctx, core.RecordPaymentInput{InvoiceID: inv.ID, Amount: d(amount), PaymentDate: date(t, on)})
		require.NoError(t, err)
	}
	pay(inv1, "1180", "2024-03-10")
	pay(inv3, "290", "2024-03-02")
	pay(inv2, "360", "2024-03-15")
	pay(inv3, "100", "2024-02-20")

	data, err := f.reports.GenerateReport(ctx, core.DateRange{From: date(t, "2024-03-01"), To: date(t, "2024-03-31")})
	require.NoError(t, err)

	assert.Equal(t, 2, data.InvoiceCount)
	assert.True(t, d("3540").Equal(data.TotalInvoiced))
	assert.True(t, d("1830").Equal(data.TotalCollected), "payments received in the window, whatever the invoice date")
	assert.True(t, d("2000").Equal(data.TotalOutstanding))
	assert.Equal(t, date(t, "2024-03-20"), data.AsOf)

	assert.Equal(t, 1, data.StatusCounts[core.InvoiceStatusPaid])
	assert.Equal(t, 1, data.StatusCounts[core.InvoiceStatusPartiallyPaid])
	assert.Len(t, data.StatusCounts, len(core.AllInvoiceStatuses))
	assert.Zero(t, data.StatusCounts[core.InvoiceStatusOverdue])

	require.Len(t, data.Clients, 2)
	assert.Equal(t, "Meera", data.Clients[0].ClientName)
	assert.True(t, d("2360").Equal(data.Clients[0].Invoiced))
	assert.True(t, d("360").Equal(data.Clients[0].Collected))
	assert.Equal(t, "Bangalore Bakes", data.Clients[1].ClientName)
	assert.Equal(t, 1, data.Clients[1].InvoiceCount)
	assert.True(t, d("1470").Equal(data.Clients[1].Collected))

	assert.True(t, d("3000").Equal(data.Tax.TaxableValue))
	assert.True(t, d("90").Equal(data.Tax.CentralTax))
	assert.True(t, d("90").Equal(data.Tax.StateTax))
	assert.True(t, d("360").Equal(data.Tax.IntegratedTax))
	assert.True(t, d("540").Equal(data.Tax.TotalTax))
}

func TestGenerateReport_EmptyWindow(t *testing.T) {
	f := newFixture(t, "2024-03-20")
	f.invoice(t, f.local, "1000", "2024-03-01", true)

	data, err := f.reports.GenerateReport(context.Background(), core.DateRange{From: date(t, "2023-01-01"), To: date(t, "2023-12-31")})
	require.NoError(t, err)
	assert.Zero(t, data.InvoiceCount)
	assert.True(t, data.TotalInvoiced.IsZero())
	assert.True(t, data.TotalCollected.IsZero())
	assert.Empty(t, data.Clients)
	assert.NotNil(t, data.Clients)
}

func TestGenerateReport_Validation(t *testing.T) {
	f := newFixture(t, "2024-03-20")
	ctx := context.Background()

	_, err := f.reports.GenerateReport(ctx, core.DateRange{From: date(t, "2024-04-01"), To: date(t, "2024-03-01")})
	assert.True(t, ierr.IsValidation(err))

	_, err = f.reports.GenerateReport(ctx, core.DateRange{To: date(t, "2024-03-01")})
	assert.True(t, ierr.IsValidation(err))
}

func TestAggregateReport_ClientOrdering(t *testing.T) {
	rows := &core.ReportRows{
		Invoices: []core.Invoice{
			{ClientID: 3, ClientName: "Zeta", GrandTotal: d("100"), AmountPaid: d("0")},
			{ClientID: 2, ClientName: "Alpha", GrandTotal: d("100"), AmountPaid: d("0")},
			{ClientID: 1, ClientName: "Alpha", GrandTotal: d("100"), AmountPaid: d("0")},
			{ClientID: 4, ClientName: "Beta", GrandTotal: d("250"), AmountPaid: d("0")},
		},
		Payments: []core.ReportPaymentRow{
			{Payment: core.Payment{Amount: d("40")}, ClientID: 5, ClientName: "Payer Only"},
		},
	}
	data := core.AggregateReport(core.DateRange{}, rows, date(t, "2024-01-01"))

	ids := make([]int, len(data.Clients))
	for i, c := range data.Clients {
		ids[i] = c.ClientID
	}
	assert.Equal(t, []int{4, 1, 2, 3, 5}, ids)
	assert.Equal(t, "Payer Only", data.Clients[4].ClientName)
	assert.Zero(t, data.Clients[4].InvoiceCount)
	assert.True(t, d("40").Equal(data.Clients[4].Collected))
	assert.Equal(t, 4, data.StatusCounts[core.InvoiceStatusDraft])
}

func TestFormatReportCSV(t *testing.T) {
	data := &core.ReportData{
		InvoiceCount:   3,
		TotalInvoiced:  d("350"),
		TotalCollected: d("40.5"),
		Clients: []core.ClientBreakdown{
			{ClientID: 1, ClientName: "Acme, Inc.", InvoiceCount: 2, Invoiced: d("250"), Collected: d("40.5")},
			{ClientID: 2, ClientName: "=HYPERLINK(\"x\")", InvoiceCount: 1, Invoiced: d("100"), Collected: d("0")},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, core.FormatReportCSV(&buf, data))

	want := "Client ID,Client,Invoices,Invoiced,Collected\n" +
		"1,\"Acme, Inc.\",2,250.00,40.50\n" +
		"2,\"'=HYPERLINK(\"\"x\"\")\",1,100.00,0.00\n" +
		",Total,3,350.00,40.50\n"
	assert.Equal(t, want, buf.String())
}
