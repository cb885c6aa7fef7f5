package db

import (
	"context"

	"agency-billing/internal/core"

	"github.com/jackc/pgx/v5"
)

// QueryInvoicesAndPayments runs the two report windows independently: invoices
// by issue date and payments by payment date, both inclusive.
func (s *Store) QueryInvoicesAndPayments(ctx context.Context, r core.DateRange) (*core.ReportRows, error) {
	from, to := core.Date(r.From), core.Date(r.To)

	rows, err := s.q.Query(ctx,
		invoiceSelect+" WHERE i.issue_date BETWEEN $1 AND $2 ORDER BY i.issue_date, i.id", from, to)
	if err != nil {
		return nil, dbError(err, "query report invoices")
	}
	invoices, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.Invoice, error) {
		return scanInvoice(row)
	})
	if err != nil {
		return nil, dbError(err, "scan report invoices")
	}

	rows, err = s.q.Query(ctx, `
		SELECT p.id, p.invoice_id, p.amount, p.payment_date, p.method, p.reference, p.created_at,
		       i.invoice_number, i.client_id,
		       CASE WHEN c.company_name <> '' THEN c.company_name ELSE c.name END
		FROM payments p
		JOIN invoices i ON i.id = p.invoice_id
		JOIN clients c ON c.id = i.client_id
		WHERE p.payment_date BETWEEN $1 AND $2
		ORDER BY p.payment_date, p.id
	`, from, to)
	if err != nil {
		return nil, dbError(err, "query report payments")
	}
	payments, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.ReportPaymentRow, error) {
		var pr core.ReportPaymentRow
		var method string
		err := row.Scan(&pr.ID, &pr.InvoiceID, &pr.Amount, &pr.PaymentDate, &method, &pr.Reference,
			&pr.CreatedAt, &pr.InvoiceNumber, &pr.ClientID, &pr.ClientName)
		pr.Method = core.PaymentMethod(method)
		return pr, err
	})
	if err != nil {
		return nil, dbError(err, "scan report payments")
	}

	return &core.ReportRows{Invoices: invoices, Payments: payments}, nil
}
