package db

import (
	"context"
	"time"

	"agency-billing/internal/core"
	ierr "agency-billing/internal/errors"

	"github.com/jackc/pgx/v5"
)

const subscriptionColumns = `id, client_id, service_name, monthly_rate, billing_cycle_day,
	last_invoice_date, active, created_at, updated_at`

func scanSubscription(row pgx.Row) (core.Subscription, error) {
	var sub core.Subscription
	err := row.Scan(&sub.ID, &sub.ClientID, &sub.ServiceName, &sub.MonthlyRate, &sub.BillingCycleDay,
		&sub.LastInvoiceDate, &sub.Active, &sub.CreatedAt, &sub.UpdatedAt)
	return sub, err
}

func (s *Store) CreateSubscription(ctx context.Context, sub *core.Subscription) error {
	err := s.q.QueryRow(ctx, `
		INSERT INTO subscriptions (client_id, service_name, monthly_rate, billing_cycle_day,
			last_invoice_date, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, sub.ClientID, sub.ServiceName, sub.MonthlyRate, sub.BillingCycleDay,
		sub.LastInvoiceDate, sub.Active, sub.CreatedAt, sub.UpdatedAt).Scan(&sub.ID)
	if err != nil {
		if code, _ := pgErrorCode(err); code == pgForeignKeyViolation {
			return core.NotFoundError(core.ErrClientNotFound, "client", sub.ClientID)
		}
		return dbError(err, "create subscription")
	}
	return nil
}

func (s *Store) GetSubscription(ctx context.Context, id int) (*core.Subscription, error) {
	sub, err := scanSubscription(s.q.QueryRow(ctx,
		"SELECT "+subscriptionColumns+" FROM subscriptions WHERE id = $1", id))
	if err != nil {
		if ierr.Is(err, pgx.ErrNoRows) {
			return nil, core.NotFoundError(core.ErrSubscriptionNotFound, "subscription", id)
		}
		return nil, dbError(err, "get subscription")
	}
	return &sub, nil
}

func (s *Store) ListSubscriptions(ctx context.Context, activeOnly bool) ([]core.Subscription, error) {
	rows, err := s.q.Query(ctx, `
		SELECT `+subscriptionColumns+` FROM subscriptions
		WHERE active OR NOT $1
		ORDER BY id
	`, activeOnly)
	if err != nil {
		return nil, dbError(err, "list subscriptions")
	}
	subs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.Subscription, error) {
		return scanSubscription(row)
	})
	if err != nil {
		return nil, dbError(err, "scan subscriptions")
	}
	return subs, nil
}

func (s *Store) SetSubscriptionLastInvoiceDate(ctx context.Context, id int, date time.Time) error {
	tag, err := s.q.Exec(ctx,
		"UPDATE subscriptions SET last_invoice_date = $2, updated_at = now() WHERE id = $1",
		id, core.Date(date))
	if err != nil {
		return dbError(err, "set subscription last invoice date")
	}
	if tag.RowsAffected() == 0 {
		return core.NotFoundError(core.ErrSubscriptionNotFound, "subscription", id)
	}
	return nil
}
