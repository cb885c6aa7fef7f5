package core

import (
	"context"
	"time"

	ierr "agency-billing/internal/errors"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// numberConflictRetries is how many times a lost invoice-number race is retried
// before the conflict is surfaced.
const numberConflictRetries = 1

// NewInvoiceInput is an admin-entered invoice.
type NewInvoiceInput struct {
	ClientID  int
	IssueDate time.Time
	// DueDate defaults to IssueDate + InvoiceDueDays when zero.
	DueDate time.Time
	// TaxRate defaults to the business profile's default rate when nil.
	TaxRate *decimal.Decimal
	// InterState overrides the client/business state comparison when set.
	InterState *bool
	Lines      []LineInput
	Notes      string
	// Finalize issues the invoice immediately (draft → sent).
	Finalize bool
}

// InvoiceService owns the invoice aggregate: creation with sequential numbering,
// finalization, and status recomputation on read.
type InvoiceService interface {
	CreateInvoice(ctx context.Context, in NewInvoiceInput) (*Invoice, error)
	// FinalizeInvoice moves a draft to sent. Non-drafts are returned unchanged.
	FinalizeInvoice(ctx context.Context, id int) (*Invoice, error)
	// GetInvoice returns the invoice with its status re-evaluated as of today.
	GetInvoice(ctx context.Context, id int) (*Invoice, error)
	ListInvoices(ctx context.Context, f InvoiceFilter) ([]Invoice, error)
	// RefreshStatuses re-evaluates every unpaid invoice and returns how many changed.
	RefreshStatuses(ctx context.Context) (int, error)
}

type invoiceService struct {
	store    Store
	profiles ProfileService
	cfg      BillingConfig
	logger   zerolog.Logger
}

func NewInvoiceService(store Store, profiles ProfileService, cfg BillingConfig, logger zerolog.Logger) InvoiceService {
	return &invoiceService{
		store:    store,
		profiles: profiles,
		cfg:      cfg,
		logger:   logger.With().Str("component", "invoice").Logger(),
	}
}

func (s *invoiceService) CreateInvoice(ctx context.Context, in NewInvoiceInput) (*Invoice, error) {
	profile, err := s.profiles.Get(ctx)
	if err != nil {
		return nil, err
	}
	client, err := s.store.GetClient(ctx, in.ClientID)
	if err != nil {
		return nil, err
	}

	issue := in.IssueDate
	if issue.IsZero() {
		issue = s.cfg.today()
	}
	due := in.DueDate
	if due.IsZero() {
		due = Date(issue).AddDate(0, 0, s.cfg.InvoiceDueDays)
	}
	rate := profile.DefaultTaxRate
	if in.TaxRate != nil {
		rate = *in.TaxRate
	}
	interState := IsInterState(client.StateCode, profile.StateCode)
	if in.InterState != nil {
		interState = *in.InterState
	}

	draft := InvoiceDraft{
		ClientID:   client.ID,
		IssueDate:  issue,
		DueDate:    due,
		TaxRate:    rate,
		InterState: interState,
		Lines:      in.Lines,
		Notes:      in.Notes,
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	var inv *Invoice
	err = retryOnNumberConflict(ctx, func() error {
		return s.store.InTx(ctx, func(ctx context.Context, repo Repository) error {
			inv = ComposeInvoice(draft)
			inv.ClientName = client.DisplayName()
			if in.Finalize {
				now := s.cfg.now()
				inv.SentAt = &now
				inv.Status = EvaluateStatus(inv, s.cfg.today())
			}
			return allocateAndInsert(ctx, repo, inv, profile.InvoicePrefix, s.cfg.now())
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int("invoice_id", inv.ID).
		Str("invoice_number", inv.Number).
		Str("grand_total", inv.GrandTotal.StringFixed(2)).
		Msg("invoice created")
	return inv, nil
}

func (s *invoiceService) FinalizeInvoice(ctx context.Context, id int) (*Invoice, error) {
	var inv *Invoice
	err := s.store.InTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.LockInvoice(ctx, id); err != nil {
			return err
		}
		var err error
		inv, err = repo.GetInvoice(ctx, id)
		if err != nil {
			return err
		}
		if inv.IsFinalized() {
			return nil
		}
		now := s.cfg.now()
		inv.SentAt = &now
		inv.Status = EvaluateStatus(inv, s.cfg.today())
		return repo.UpdateInvoiceStatus(ctx, inv.ID, inv.Status, inv.SentAt)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int("invoice_id", inv.ID).Str("status", string(inv.Status)).Msg("invoice finalized")
	return inv, nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, id int) (*Invoice, error) {
	inv, err := s.store.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := refreshStatus(ctx, s.store, inv, s.cfg.today(), s.logger); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, f InvoiceFilter) ([]Invoice, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, validationError("status", "unknown invoice status "+string(f.Status))
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.From.After(f.To) {
		return nil, validationError("from", "from date must not be after to date")
	}
	// stored statuses may lag behind the calendar (sent → overdue), so the
	// status filter applies to the evaluated status, not the stored one
	want := f.Status
	f.Status = ""
	invoices, err := s.store.ListInvoices(ctx, f)
	if err != nil {
		return nil, err
	}
	today := s.cfg.today()
	out := invoices[:0]
	for i := range invoices {
		invoices[i].Status = EvaluateStatus(&invoices[i], today)
		if want == "" || invoices[i].Status == want {
			out = append(out, invoices[i])
		}
	}
	return out, nil
}

func (s *invoiceService) RefreshStatuses(ctx context.Context) (int, error) {
	invoices, err := s.store.ListInvoices(ctx, InvoiceFilter{UnpaidOnly: true})
	if err != nil {
		return 0, err
	}
	today := s.cfg.today()
	changed := 0
	for i := range invoices {
		ok, err := refreshStatus(ctx, s.store, &invoices[i], today, s.logger)
		if err != nil {
			return changed, err
		}
		if ok {
			changed++
		}
	}
	return changed, nil
}

// allocateAndInsert numbers inv within (prefix, issue year) and stores it.
// Must run inside a transaction so the scope lock covers read and insert.
func allocateAndInsert(ctx context.Context, repo Repository, inv *Invoice, prefix string, now time.Time) error {
	year := inv.IssueDate.Year()
	if err := repo.LockNumberScope(ctx, prefix, year); err != nil {
		return err
	}
	last, err := repo.GetLastInvoiceNumber(ctx, prefix, year)
	if err != nil {
		return err
	}
	inv.Number = NextInvoiceNumber(last, prefix, year)
	inv.CreatedAt, inv.UpdatedAt = now, now

	id, err := repo.InsertInvoice(ctx, inv)
	if err != nil {
		return err
	}
	inv.ID = id
	return nil
}

// retryOnNumberConflict runs op again once if it lost an invoice-number race.
// Any other error is returned immediately.
func retryOnNumberConflict(ctx context.Context, op func() error) error {
	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(25*time.Millisecond), numberConflictRetries),
		ctx,
	)
	return backoff.Retry(func() error {
		err := op()
		if err != nil && !ierr.Is(err, ErrInvoiceNumberTaken) {
			return backoff.Permanent(err)
		}
		return err
	}, b)
}

// refreshStatus persists a drifted status and reports whether it changed.
func refreshStatus(ctx context.Context, repo Repository, inv *Invoice, today time.Time, logger zerolog.Logger) (bool, error) {
	status := EvaluateStatus(inv, today)
	if status == inv.Status {
		return false, nil
	}
	if err := repo.UpdateInvoiceStatus(ctx, inv.ID, status, inv.SentAt); err != nil {
		return false, err
	}
	logger.Info().
		Int("invoice_id", inv.ID).
		Str("from", string(inv.Status)).
		Str("to", string(status)).
		Msg("invoice status changed")
	inv.Status = status
	return true, nil
}
