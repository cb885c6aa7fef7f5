package core

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// ── Report types ──────────────────────────────────────────────────────────────

// ClientBreakdown is one client's share of a report window. Invoiced counts
// invoices issued in the window; Collected counts payments received in it.
type ClientBreakdown struct {
	ClientID     int             `json:"client_id"`
	ClientName   string          `json:"client_name"`
	InvoiceCount int             `json:"invoice_count"`
	Invoiced     decimal.Decimal `json:"invoiced"`
	Collected    decimal.Decimal `json:"collected"`
}

// TaxSummary totals the GST charged on invoices issued in the window.
type TaxSummary struct {
	TaxableValue  decimal.Decimal `json:"taxable_value"`
	CentralTax    decimal.Decimal `json:"cgst"`
	StateTax      decimal.Decimal `json:"sgst"`
	IntegratedTax decimal.Decimal `json:"igst"`
	TotalTax      decimal.Decimal `json:"total_tax"`
}

// ReportData is a point-in-time summary over an inclusive date window.
type ReportData struct {
	Range            DateRange             `json:"range"`
	AsOf             time.Time             `json:"as_of"`
	InvoiceCount     int                   `json:"invoice_count"`
	TotalInvoiced    decimal.Decimal       `json:"total_invoiced"`
	TotalCollected   decimal.Decimal       `json:"total_collected"`
	TotalOutstanding decimal.Decimal       `json:"total_outstanding"`
	StatusCounts     map[InvoiceStatus]int `json:"status_counts"`
	Clients          []ClientBreakdown     `json:"clients"`
	Tax              TaxSummary            `json:"tax"`
}

// ── Interface ─────────────────────────────────────────────────────────────────

// ReportingService provides read-only billing summaries.
type ReportingService interface {
	// GenerateReport summarizes invoices issued and payments received within
	// r, both bounds inclusive. Statuses are evaluated as of today.
	GenerateReport(ctx context.Context, r DateRange) (*ReportData, error)
}

type reportingService struct {
	store  Repository
	cfg    BillingConfig
	logger zerolog.Logger
}

func NewReportingService(store Repository, cfg BillingConfig, logger zerolog.Logger) ReportingService {
	return &reportingService{
		store:  store,
		cfg:    cfg,
		logger: logger.With().Str("component", "reporting").Logger(),
	}
}

func (s *reportingService) GenerateReport(ctx context.Context, r DateRange) (*ReportData, error) {
	if r.From.IsZero() || r.To.IsZero() {
		return nil, validationError("from", "report window needs both from and to dates")
	}
	r = DateRange{From: Date(r.From), To: Date(r.To)}
	if r.From.After(r.To) {
		return nil, validationError("from", "from date must not be after to date")
	}

	rows, err := s.store.QueryInvoicesAndPayments(ctx, r)
	if err != nil {
		return nil, err
	}

	data := AggregateReport(r, rows, s.cfg.today())
	s.logger.Debug().
		Str("from", r.From.Format(DateLayout)).
		Str("to", r.To.Format(DateLayout)).
		Int("invoices", data.InvoiceCount).
		Int("payments", len(rows.Payments)).
		Msg("report generated")
	return data, nil
}

// ── Aggregation ───────────────────────────────────────────────────────────────

// AggregateReport folds the window rows into a ReportData. It is pure.
func AggregateReport(r DateRange, rows *ReportRows, today time.Time) *ReportData {
	data := &ReportData{
		Range:        r,
		AsOf:         Date(today),
		InvoiceCount: len(rows.Invoices),
		StatusCounts: make(map[InvoiceStatus]int, len(AllInvoiceStatuses)),
		Clients:      []ClientBreakdown{},
	}
	for _, st := range AllInvoiceStatuses {
		data.StatusCounts[st] = 0
	}

	data.TotalInvoiced = lo.Reduce(rows.Invoices, func(acc decimal.Decimal, inv Invoice, _ int) decimal.Decimal {
		return acc.Add(inv.GrandTotal)
	}, decimal.Zero)
	data.TotalOutstanding = lo.Reduce(rows.Invoices, func(acc decimal.Decimal, inv Invoice, _ int) decimal.Decimal {
		return acc.Add(inv.BalanceDue())
	}, decimal.Zero)
	data.TotalCollected = lo.Reduce(rows.Payments, func(acc decimal.Decimal, p ReportPaymentRow, _ int) decimal.Decimal {
		return acc.Add(p.Amount)
	}, decimal.Zero)

	for i := range rows.Invoices {
		data.StatusCounts[EvaluateStatus(&rows.Invoices[i], today)]++
	}
	data.Tax = summarizeTax(rows.Invoices)
	data.Clients = breakdownByClient(rows)
	return data
}

func summarizeTax(invoices []Invoice) TaxSummary {
	return lo.Reduce(invoices, func(acc TaxSummary, inv Invoice, _ int) TaxSummary {
		return TaxSummary{
			TaxableValue:  acc.TaxableValue.Add(inv.Subtotal),
			CentralTax:    acc.CentralTax.Add(inv.Tax.CentralTax),
			StateTax:      acc.StateTax.Add(inv.Tax.StateTax),
			IntegratedTax: acc.IntegratedTax.Add(inv.Tax.IntegratedTax),
			TotalTax:      acc.TotalTax.Add(inv.Tax.TotalTax),
		}
	}, TaxSummary{
		TaxableValue:  decimal.Zero,
		CentralTax:    decimal.Zero,
		StateTax:      decimal.Zero,
		IntegratedTax: decimal.Zero,
		TotalTax:      decimal.Zero,
	})
}

// breakdownByClient merges both selections per client, ordered by invoiced
// amount desc, then client name asc, then client id asc.
func breakdownByClient(rows *ReportRows) []ClientBreakdown {
	invoicesByClient := lo.GroupBy(rows.Invoices, func(inv Invoice) int { return inv.ClientID })
	paymentsByClient := lo.GroupBy(rows.Payments, func(p ReportPaymentRow) int { return p.ClientID })

	ids := lo.Uniq(append(lo.Keys(invoicesByClient), lo.Keys(paymentsByClient)...))
	out := lo.Map(ids, func(id int, _ int) ClientBreakdown {
		invs, pays := invoicesByClient[id], paymentsByClient[id]
		b := ClientBreakdown{
			ClientID:     id,
			InvoiceCount: len(invs),
			Invoiced: lo.Reduce(invs, func(acc decimal.Decimal, inv Invoice, _ int) decimal.Decimal {
				return acc.Add(inv.GrandTotal)
			}, decimal.Zero),
			Collected: lo.Reduce(pays, func(acc decimal.Decimal, p ReportPaymentRow, _ int) decimal.Decimal {
				return acc.Add(p.Amount)
			}, decimal.Zero),
		}
		if len(invs) > 0 {
			b.ClientName = invs[0].ClientName
		} else if len(pays) > 0 {
			b.ClientName = pays[0].ClientName
		}
		return b
	})

	slices.SortFunc(out, func(a, b ClientBreakdown) int {
		if c := b.Invoiced.Cmp(a.Invoiced); c != 0 {
			return c
		}
		if c := strings.Compare(a.ClientName, b.ClientName); c != 0 {
			return c
		}
		return a.ClientID - b.ClientID
	})
	return out
}
