package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	ierr "agency-billing/internal/errors"
	"agency-billing/internal/idempotency"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// SubscriptionInput creates a recurring monthly service.
type SubscriptionInput struct {
	ClientID        int
	ServiceName     string
	MonthlyRate     decimal.Decimal
	BillingCycleDay int
}

// GenerationFailure is one subscription GenerateDue could not invoice.
type GenerationFailure struct {
	SubscriptionID int    `json:"subscription_id"`
	Message        string `json:"error"`
	Err            error  `json:"-"`
}

// GenerateDueResult summarizes a GenerateDue batch.
type GenerateDueResult struct {
	Generated []Invoice           `json:"generated"`
	Skipped   int                 `json:"skipped"`
	Failures  []GenerationFailure `json:"failures"`
}

// SubscriptionService turns subscriptions into one invoice per billing cycle.
type SubscriptionService interface {
	Create(ctx context.Context, in SubscriptionInput) (*Subscription, error)
	Get(ctx context.Context, id int) (*Subscription, error)
	List(ctx context.Context, activeOnly bool) ([]Subscription, error)
	// Generate issues the invoice for the subscription's current billing cycle.
	// A cycle that is already invoiced is rejected with ErrCycleAlreadyInvoiced.
	Generate(ctx context.Context, subscriptionID int) (*Invoice, error)
	// GenerateDue invoices every active subscription whose current cycle is
	// still open. Failures are collected and do not stop the batch.
	GenerateDue(ctx context.Context) (*GenerateDueResult, error)
}

type subscriptionService struct {
	store    Store
	profiles ProfileService
	cfg      BillingConfig
	logger   zerolog.Logger
}

func NewSubscriptionService(store Store, profiles ProfileService, cfg BillingConfig, logger zerolog.Logger) SubscriptionService {
	return &subscriptionService{
		store:    store,
		profiles: profiles,
		cfg:      cfg,
		logger:   logger.With().Str("component", "subscription").Logger(),
	}
}

// BillingPeriod returns the inclusive cycle containing today. Cycles start on
// cycleDay, clamped to the length of short months, and end the day before the
// next cycle starts.
func BillingPeriod(cycleDay int, today time.Time) (start, end time.Time) {
	today = Date(today)
	y, m, _ := today.Date()
	start = cycleAnchor(y, m, cycleDay)
	if today.Before(start) {
		start = cycleAnchor(y, m-1, cycleDay)
	}
	sy, sm, _ := start.Date()
	end = cycleAnchor(sy, sm+1, cycleDay).AddDate(0, 0, -1)
	return start, end
}

// PeriodLabel names an invoice line after the service and the cycle's month.
func PeriodLabel(serviceName string, periodStart time.Time) string {
	return fmt.Sprintf("%s - %s", serviceName, periodStart.Format("January 2006"))
}

// IsCycleInvoiced reports whether sub already has an invoice for the cycle
// starting at periodStart.
func IsCycleInvoiced(sub *Subscription, periodStart time.Time) bool {
	return sub.LastInvoiceDate != nil && !Date(*sub.LastInvoiceDate).Before(Date(periodStart))
}

// cycleAnchor is cycleDay in the given month, clamped to the month's last day.
// Month overflow is normalized by time.Date.
func cycleAnchor(year int, month time.Month, cycleDay int) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	lastDay := first.AddDate(0, 1, -1).Day()
	return first.AddDate(0, 0, min(cycleDay, lastDay)-1)
}

func (s *subscriptionService) Create(ctx context.Context, in SubscriptionInput) (*Subscription, error) {
	in.ServiceName = strings.TrimSpace(in.ServiceName)
	switch {
	case in.ServiceName == "":
		return nil, validationError("service_name", "service name is required")
	case !in.MonthlyRate.IsPositive():
		return nil, validationError("monthly_rate", "monthly rate must be > 0")
	case !fitsScale(in.MonthlyRate, moneyPlaces):
		return nil, validationError("monthly_rate", "monthly rate allows at most 2 decimals")
	case in.BillingCycleDay < 1 || in.BillingCycleDay > 31:
		return nil, validationError("billing_cycle_day", "billing cycle day must be between 1 and 31")
	}
	if _, err := s.store.GetClient(ctx, in.ClientID); err != nil {
		return nil, err
	}

	now := s.cfg.now()
	sub := &Subscription{
		ClientID:        in.ClientID,
		ServiceName:     in.ServiceName,
		MonthlyRate:     in.MonthlyRate,
		BillingCycleDay: in.BillingCycleDay,
		Active:          true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.CreateSubscription(ctx, sub); err != nil {
		return nil, err
	}
	s.logger.Info().Int("subscription_id", sub.ID).Int("client_id", sub.ClientID).Msg("subscription created")
	return sub, nil
}

func (s *subscriptionService) Get(ctx context.Context, id int) (*Subscription, error) {
	return s.store.GetSubscription(ctx, id)
}

func (s *subscriptionService) List(ctx context.Context, activeOnly bool) ([]Subscription, error) {
	return s.store.ListSubscriptions(ctx, activeOnly)
}

func (s *subscriptionService) Generate(ctx context.Context, subscriptionID int) (*Invoice, error) {
	sub, err := s.store.GetSubscription(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if !sub.Active {
		return nil, validationError("subscription_id", "subscription is not active")
	}
	client, err := s.store.GetClient(ctx, sub.ClientID)
	if err != nil {
		return nil, err
	}
	profile, err := s.profiles.Get(ctx)
	if err != nil {
		return nil, err
	}

	today := s.cfg.today()
	periodStart, _ := BillingPeriod(sub.BillingCycleDay, today)
	key := idempotency.GenerateKey(idempotency.ScopeSubscriptionInvoice, map[string]any{
		"subscription_id": sub.ID,
		"period_start":    periodStart.Format(DateLayout),
	})

	draft := InvoiceDraft{
		ClientID:   client.ID,
		IssueDate:  today,
		DueDate:    today.AddDate(0, 0, s.cfg.InvoiceDueDays),
		TaxRate:    profile.DefaultTaxRate,
		InterState: IsInterState(client.StateCode, profile.StateCode),
		Lines: []LineInput{{
			Description: PeriodLabel(sub.ServiceName, periodStart),
			Quantity:    decimal.NewFromInt(1),
			Rate:        sub.MonthlyRate,
		}},
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	var inv *Invoice
	err = retryOnNumberConflict(ctx, func() error {
		return s.store.InTx(ctx, func(ctx context.Context, repo Repository) error {
			// re-read inside the transaction; a concurrent generator may have won
			current, err := repo.GetSubscription(ctx, sub.ID)
			if err != nil {
				return err
			}
			if IsCycleInvoiced(current, periodStart) {
				return cycleInvoicedError(sub.ID, periodStart)
			}

			inv = ComposeInvoice(draft)
			inv.ClientName = client.DisplayName()
			inv.SubscriptionID = &sub.ID
			inv.IdempotencyKey = &key
			if s.cfg.AutoSendSubscriptionInvoices {
				now := s.cfg.now()
				inv.SentAt = &now
				inv.Status = EvaluateStatus(inv, today)
			}
			if err := allocateAndInsert(ctx, repo, inv, profile.InvoicePrefix, s.cfg.now()); err != nil {
				return err
			}
			return repo.SetSubscriptionLastInvoiceDate(ctx, sub.ID, today)
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int("subscription_id", sub.ID).
		Int("invoice_id", inv.ID).
		Str("invoice_number", inv.Number).
		Str("period_start", periodStart.Format(DateLayout)).
		Msg("subscription invoice generated")
	return inv, nil
}

func (s *subscriptionService) GenerateDue(ctx context.Context) (*GenerateDueResult, error) {
	subs, err := s.store.ListSubscriptions(ctx, true)
	if err != nil {
		return nil, err
	}

	today := s.cfg.today()
	res := &GenerateDueResult{Generated: []Invoice{}, Failures: []GenerationFailure{}}
	for i := range subs {
		sub := &subs[i]
		start, _ := BillingPeriod(sub.BillingCycleDay, today)
		if IsCycleInvoiced(sub, start) {
			res.Skipped++
			continue
		}
		inv, err := s.Generate(ctx, sub.ID)
		if err != nil {
			if ierr.Is(err, ErrCycleAlreadyInvoiced) {
				res.Skipped++
				continue
			}
			s.logger.Warn().Err(err).Int("subscription_id", sub.ID).Msg("subscription generation failed")
			res.Failures = append(res.Failures, GenerationFailure{
				SubscriptionID: sub.ID,
				Message:        ierr.DisplayMessage(err, err.Error()),
				Err:            err,
			})
			continue
		}
		res.Generated = append(res.Generated, *inv)
	}

	s.logger.Info().
		Int("generated", len(res.Generated)).
		Int("skipped", res.Skipped).
		Int("failed", len(res.Failures)).
		Msg("due subscriptions processed")
	return res, nil
}

func cycleInvoicedError(subscriptionID int, periodStart time.Time) error {
	return ierr.NewError("subscription already invoiced for this billing cycle").
		WithHintf("Subscription %d is already invoiced for the cycle starting %s", subscriptionID, periodStart.Format(DateLayout)).
		WithReportableDetails(map[string]any{
			"subscription_id": subscriptionID,
			"period_start":    periodStart.Format(DateLayout),
		}).
		Mark(ierr.ErrConflict, ErrCycleAlreadyInvoiced)
}
