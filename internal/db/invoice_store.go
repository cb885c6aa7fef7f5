package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"agency-billing/internal/core"
	ierr "agency-billing/internal/errors"

	"github.com/jackc/pgx/v5"
)

// invoiceSelect loads invoice headers with the client display name and the
// all-time amount paid. Items are loaded separately.
const invoiceSelect = `
	SELECT i.id, i.invoice_number, i.client_id,
	       CASE WHEN c.company_name <> '' THEN c.company_name ELSE c.name END,
	       i.subscription_id, i.idempotency_key, i.issue_date, i.due_date,
	       i.tax_rate, i.is_inter_state, i.subtotal, i.cgst, i.sgst, i.igst, i.total_tax,
	       i.grand_total,
	       COALESCE((SELECT SUM(p.amount) FROM payments p WHERE p.invoice_id = i.id), 0),
	       i.status, i.notes, i.sent_at, i.created_at, i.updated_at
	FROM invoices i
	JOIN clients c ON c.id = i.client_id`

func scanInvoice(row pgx.Row) (core.Invoice, error) {
	var inv core.Invoice
	var status string
	err := row.Scan(&inv.ID, &inv.Number, &inv.ClientID, &inv.ClientName,
		&inv.SubscriptionID, &inv.IdempotencyKey, &inv.IssueDate, &inv.DueDate,
		&inv.TaxRate, &inv.InterState, &inv.Subtotal,
		&inv.Tax.CentralTax, &inv.Tax.StateTax, &inv.Tax.IntegratedTax, &inv.Tax.TotalTax,
		&inv.GrandTotal, &inv.AmountPaid, &status, &inv.Notes, &inv.SentAt,
		&inv.CreatedAt, &inv.UpdatedAt)
	inv.Status = core.InvoiceStatus(status)
	return inv, err
}

func (s *Store) LockNumberScope(ctx context.Context, prefix string, year int) error {
	if !s.tx {
		return ierr.NewError("invoice number scope lock requires a transaction").Mark(ierr.ErrSystem)
	}
	_, err := s.q.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))",
		"invoice_number:"+core.InvoiceNumberScope(prefix, year))
	if err != nil {
		return dbError(err, "lock invoice number scope")
	}
	return nil
}

// GetLastInvoiceNumber orders by length first so that 10000 sorts after 9999.
func (s *Store) GetLastInvoiceNumber(ctx context.Context, prefix string, year int) (string, error) {
	var last string
	err := s.q.QueryRow(ctx, `
		SELECT invoice_number FROM invoices
		WHERE invoice_number LIKE $1
		ORDER BY length(invoice_number) DESC, invoice_number DESC
		LIMIT 1
	`, likePrefix(core.InvoiceNumberScope(prefix, year))).Scan(&last)
	if err != nil {
		if ierr.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", dbError(err, "get last invoice number")
	}
	return last, nil
}

func (s *Store) InsertInvoice(ctx context.Context, inv *core.Invoice) (int, error) {
	var id int
	err := s.q.QueryRow(ctx, `
		INSERT INTO invoices (invoice_number, client_id, subscription_id, idempotency_key,
			issue_date, due_date, tax_rate, is_inter_state, subtotal, cgst, sgst, igst,
			total_tax, grand_total, status, notes, sent_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id
	`, inv.Number, inv.ClientID, inv.SubscriptionID, inv.IdempotencyKey,
		inv.IssueDate, inv.DueDate, inv.TaxRate, inv.InterState, inv.Subtotal,
		inv.Tax.CentralTax, inv.Tax.StateTax, inv.Tax.IntegratedTax, inv.Tax.TotalTax,
		inv.GrandTotal, string(inv.Status), inv.Notes, inv.SentAt, inv.CreatedAt, inv.UpdatedAt,
	).Scan(&id)
	if err != nil {
		switch code, constraint := pgErrorCode(err); {
		case code == pgUniqueViolation && constraint == constraintInvoiceNumber:
			return 0, core.NumberTakenError(inv.Number)
		case code == pgUniqueViolation && constraint == constraintIdempotencyKey:
			return 0, core.DuplicateCycleError(deref(inv.IdempotencyKey))
		case code == pgForeignKeyViolation:
			return 0, core.NotFoundError(core.ErrClientNotFound, "client", inv.ClientID)
		}
		return 0, dbError(err, "insert invoice")
	}

	batch := &pgx.Batch{}
	for _, it := range inv.Items {
		batch.Queue(`
			INSERT INTO invoice_items (invoice_id, position, description, quantity, rate, subtotal)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, id, it.Position, it.Description, it.Quantity, it.Rate, it.Subtotal)
	}
	if err := s.q.SendBatch(ctx, batch).Close(); err != nil {
		return 0, dbError(err, "insert invoice items")
	}
	return id, nil
}

func (s *Store) GetInvoice(ctx context.Context, id int) (*core.Invoice, error) {
	inv, err := scanInvoice(s.q.QueryRow(ctx, invoiceSelect+" WHERE i.id = $1", id))
	if err != nil {
		if ierr.Is(err, pgx.ErrNoRows) {
			return nil, core.NotFoundError(core.ErrInvoiceNotFound, "invoice", id)
		}
		return nil, dbError(err, "get invoice")
	}

	rows, err := s.q.Query(ctx, `
		SELECT position, description, quantity, rate, subtotal
		FROM invoice_items WHERE invoice_id = $1 ORDER BY position
	`, id)
	if err != nil {
		return nil, dbError(err, "get invoice items")
	}
	inv.Items, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.LineItem, error) {
		var it core.LineItem
		err := row.Scan(&it.Position, &it.Description, &it.Quantity, &it.Rate, &it.Subtotal)
		return it, err
	})
	if err != nil {
		return nil, dbError(err, "scan invoice items")
	}
	return &inv, nil
}

func (s *Store) LockInvoice(ctx context.Context, id int) error {
	var locked int
	err := s.q.QueryRow(ctx, "SELECT id FROM invoices WHERE id = $1 FOR UPDATE", id).Scan(&locked)
	if err != nil {
		if ierr.Is(err, pgx.ErrNoRows) {
			return core.NotFoundError(core.ErrInvoiceNotFound, "invoice", id)
		}
		return dbError(err, "lock invoice")
	}
	return nil
}

func (s *Store) ListInvoices(ctx context.Context, f core.InvoiceFilter) ([]core.Invoice, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.ClientID > 0 {
		add("i.client_id = $%d", f.ClientID)
	}
	if f.SubscriptionID > 0 {
		add("i.subscription_id = $%d", f.SubscriptionID)
	}
	if f.Status != "" {
		add("i.status = $%d", string(f.Status))
	}
	if !f.From.IsZero() {
		add("i.issue_date >= $%d", core.Date(f.From))
	}
	if !f.To.IsZero() {
		add("i.issue_date <= $%d", core.Date(f.To))
	}
	if f.UnpaidOnly {
		where = append(where, "i.status <> 'paid'")
	}

	query := invoiceSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY i.issue_date DESC, i.id DESC"

	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, dbError(err, "list invoices")
	}
	invoices, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.Invoice, error) {
		return scanInvoice(row)
	})
	if err != nil {
		return nil, dbError(err, "scan invoices")
	}
	return invoices, nil
}

func (s *Store) UpdateInvoiceStatus(ctx context.Context, id int, status core.InvoiceStatus, sentAt *time.Time) error {
	tag, err := s.q.Exec(ctx,
		"UPDATE invoices SET status = $2, sent_at = $3, updated_at = now() WHERE id = $1",
		id, string(status), sentAt)
	if err != nil {
		return dbError(err, "update invoice status")
	}
	if tag.RowsAffected() == 0 {
		return core.NotFoundError(core.ErrInvoiceNotFound, "invoice", id)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
