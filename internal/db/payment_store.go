package db

import (
	"context"

	"agency-billing/internal/core"
	ierr "agency-billing/internal/errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const paymentColumns = "id, invoice_id, amount, payment_date, method, reference, created_at"

func scanPayment(row pgx.Row) (core.Payment, error) {
	var p core.Payment
	var method string
	err := row.Scan(&p.ID, &p.InvoiceID, &p.Amount, &p.PaymentDate, &method, &p.Reference, &p.CreatedAt)
	p.Method = core.PaymentMethod(method)
	return p, err
}

func (s *Store) InsertPayment(ctx context.Context, p *core.Payment) (int, error) {
	var id int
	err := s.q.QueryRow(ctx, `
		INSERT INTO payments (invoice_id, amount, payment_date, method, reference, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, p.InvoiceID, p.Amount, p.PaymentDate, string(p.Method), p.Reference, p.CreatedAt).Scan(&id)
	if err != nil {
		if code, _ := pgErrorCode(err); code == pgForeignKeyViolation {
			return 0, core.NotFoundError(core.ErrInvoiceNotFound, "invoice", p.InvoiceID)
		}
		return 0, dbError(err, "insert payment")
	}
	return id, nil
}

func (s *Store) GetPayment(ctx context.Context, id int) (*core.Payment, error) {
	p, err := scanPayment(s.q.QueryRow(ctx, "SELECT "+paymentColumns+" FROM payments WHERE id = $1", id))
	if err != nil {
		if ierr.Is(err, pgx.ErrNoRows) {
			return nil, core.NotFoundError(core.ErrPaymentNotFound, "payment", id)
		}
		return nil, dbError(err, "get payment")
	}
	return &p, nil
}

func (s *Store) DeletePayment(ctx context.Context, id int) error {
	tag, err := s.q.Exec(ctx, "DELETE FROM payments WHERE id = $1", id)
	if err != nil {
		return dbError(err, "delete payment")
	}
	if tag.RowsAffected() == 0 {
		return core.NotFoundError(core.ErrPaymentNotFound, "payment", id)
	}
	return nil
}

func (s *Store) ListPayments(ctx context.Context, invoiceID int) ([]core.Payment, error) {
	rows, err := s.q.Query(ctx,
		"SELECT "+paymentColumns+" FROM payments WHERE invoice_id = $1 ORDER BY payment_date, id",
		invoiceID)
	if err != nil {
		return nil, dbError(err, "list payments")
	}
	payments, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.Payment, error) {
		return scanPayment(row)
	})
	if err != nil {
		return nil, dbError(err, "scan payments")
	}
	return payments, nil
}

func (s *Store) SumPayments(ctx context.Context, invoiceID int) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := s.q.QueryRow(ctx,
		"SELECT COALESCE(SUM(amount), 0) FROM payments WHERE invoice_id = $1", invoiceID).Scan(&sum)
	if err != nil {
		return decimal.Zero, dbError(err, "sum payments")
	}
	return sum, nil
}
