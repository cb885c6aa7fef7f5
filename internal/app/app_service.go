package app

import (
	"context"
	"time"

	"agency-billing/internal/core"
	ierr "agency-billing/internal/errors"
	"agency-billing/internal/validator"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

type appService struct {
	profiles      core.ProfileService
	clients       core.ClientService
	invoices      core.InvoiceService
	payments      core.PaymentService
	subscriptions core.SubscriptionService
	reports       core.ReportingService
}

// NewAppService wires the billing core over store and returns the
// ApplicationService the adapters call.
func NewAppService(store core.Store, cfg core.BillingConfig, logger zerolog.Logger) ApplicationService {
	profiles := core.NewProfileService(store, cfg, logger)
	return &appService{
		profiles:      profiles,
		clients:       core.NewClientService(store, cfg, logger),
		invoices:      core.NewInvoiceService(store, profiles, cfg, logger),
		payments:      core.NewPaymentService(store, cfg, logger),
		subscriptions: core.NewSubscriptionService(store, profiles, cfg, logger),
		reports:       core.NewReportingService(store, cfg, logger),
	}
}

// ── Profile & clients ─────────────────────────────────────────────────────────

func (s *appService) GetProfile(ctx context.Context) (*core.BusinessProfile, error) {
	return s.profiles.Get(ctx)
}

func (s *appService) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*core.BusinessProfile, error) {
	if err := validator.ValidateRequest(req); err != nil {
		return nil, err
	}
	return s.profiles.Update(ctx, core.BusinessProfile{
		Name:                  req.Name,
		AddressLine1:          req.AddressLine1,
		AddressLine2:          req.AddressLine2,
		City:                  req.City,
		StateCode:             req.StateCode,
		PostalCode:            req.PostalCode,
		TaxRegistrationNumber: req.TaxRegistrationNumber,
		BankName:              req.BankName,
		BankAccountName:       req.BankAccountName,
		BankAccountNumber:     req.BankAccountNumber,
		BankIFSC:              req.BankIFSC,
		InvoicePrefix:         req.InvoicePrefix,
		DefaultTaxRate:        req.DefaultTaxRate,
	})
}

func (s *appService) CreateClient(ctx context.Context, req CreateClientRequest) (*core.Client, error) {
	if err := validator.ValidateRequest(req); err != nil {
		return nil, err
	}
	return s.clients.Create(ctx, core.Client{
		Name:         req.Name,
		CompanyName:  req.CompanyName,
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		City:         req.City,
		StateCode:    req.StateCode,
		PostalCode:   req.PostalCode,
		Email:        req.Email,
		Phone:        req.Phone,
		TaxID:        req.TaxID,
	})
}

func (s *appService) GetClient(ctx context.Context, id int) (*core.Client, error) {
	return s.clients.Get(ctx, id)
}

func (s *appService) ListClients(ctx context.Context) (*ClientListResult, error) {
	clients, err := s.clients.List(ctx)
	if err != nil {
		return nil, err
	}
	return &ClientListResult{Clients: clients}, nil
}

func (s *appService) RenameClient(ctx context.Context, req RenameClientRequest) (*core.Client, error) {
	if err := validator.ValidateRequest(req); err != nil {
		return nil, err
	}
	return s.clients.Rename(ctx, req.ClientID, req.Name, req.CompanyName)
}

// ── Subscriptions ─────────────────────────────────────────────────────────────

func (s *appService) CreateSubscription(ctx context.Context, req CreateSubscriptionRequest) (*core.Subscription, error) {
	if err := validator.ValidateRequest(req); err != nil {
		return nil, err
	}
	return s.subscriptions.Create(ctx, core.SubscriptionInput{
		ClientID:        req.ClientID,
		ServiceName:     req.ServiceName,
		MonthlyRate:     req.MonthlyRate,
		BillingCycleDay: req.BillingCycleDay,
	})
}

func (s *appService) GetSubscription(ctx context.Context, id int) (*core.Subscription, error) {
	return s.subscriptions.Get(ctx, id)
}

func (s *appService) ListSubscriptions(ctx context.Context, activeOnly bool) (*SubscriptionListResult, error) {
	subs, err := s.subscriptions.List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	return &SubscriptionListResult{Subscriptions: subs}, nil
}

func (s *appService) GenerateSubscriptionInvoice(ctx context.Context, subscriptionID int) (*InvoiceResult, error) {
	inv, err := s.subscriptions.Generate(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	return invoiceResult(inv, nil), nil
}

func (s *appService) GenerateDueInvoices(ctx context.Context) (*core.GenerateDueResult, error) {
	return s.subscriptions.GenerateDue(ctx)
}

// ── Invoices ──────────────────────────────────────────────────────────────────

func (s *appService) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResult, error) {
	if err := validator.ValidateRequest(req); err != nil {
		return nil, err
	}
	issue, err := parseOptionalDate("issue_date", req.IssueDate)
	if err != nil {
		return nil, err
	}
	due, err := parseOptionalDate("due_date", req.DueDate)
	if err != nil {
		return nil, err
	}

	inv, err := s.invoices.CreateInvoice(ctx, core.NewInvoiceInput{
		ClientID:   req.ClientID,
		IssueDate:  issue,
		DueDate:    due,
		TaxRate:    req.TaxRate,
		InterState: req.InterState,
		Lines: lo.Map(req.Items, func(l InvoiceLineRequest, _ int) core.LineInput {
			return core.LineInput{Description: l.Description, Quantity: l.Quantity, Rate: l.Rate}
		}),
		Notes:    req.Notes,
		Finalize: req.Finalize,
	})
	if err != nil {
		return nil, err
	}
	return invoiceResult(inv, nil), nil
}

func (s *appService) GetInvoice(ctx context.Context, id int) (*InvoiceResult, error) {
	inv, err := s.invoices.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	payments, err := s.payments.ListPayments(ctx, id)
	if err != nil {
		return nil, err
	}
	return invoiceResult(inv, payments), nil
}

func (s *appService) ListInvoices(ctx context.Context, req ListInvoicesRequest) (*InvoiceListResult, error) {
	if err := validator.ValidateRequest(req); err != nil {
		return nil, err
	}
	from, err := parseOptionalDate("from", req.From)
	if err != nil {
		return nil, err
	}
	to, err := parseOptionalDate("to", req.To)
	if err != nil {
		return nil, err
	}
	invoices, err := s.invoices.ListInvoices(ctx, core.InvoiceFilter{
		ClientID:       req.ClientID,
		SubscriptionID: req.SubscriptionID,
		Status:         core.InvoiceStatus(req.Status),
		From:           from,
		To:             to,
		UnpaidOnly:     req.UnpaidOnly,
	})
	if err != nil {
		return nil, err
	}
	return &InvoiceListResult{Invoices: invoices}, nil
}

func (s *appService) FinalizeInvoice(ctx context.Context, id int) (*InvoiceResult, error) {
	inv, err := s.invoices.FinalizeInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	return invoiceResult(inv, nil), nil
}

func (s *appService) RefreshInvoiceStatuses(ctx context.Context) (*RefreshResult, error) {
	n, err := s.invoices.RefreshStatuses(ctx)
	if err != nil {
		return nil, err
	}
	return &RefreshResult{Changed: n}, nil
}

// ── Payments ──────────────────────────────────────────────────────────────────

func (s *appService) RecordPayment(ctx context.Context, req RecordPaymentRequest) (*PaymentResult, error) {
	if err := validator.ValidateRequest(req); err != nil {
		return nil, err
	}
	date, err := parseOptionalDate("payment_date", req.PaymentDate)
	if err != nil {
		return nil, err
	}
	p, inv, err := s.payments.RecordPayment(ctx, core.RecordPaymentInput{
		InvoiceID:   req.InvoiceID,
		Amount:      req.Amount,
		PaymentDate: date,
		Method:      core.PaymentMethod(req.Method),
		Reference:   req.Reference,
	})
	if err != nil {
		return nil, err
	}
	return &PaymentResult{Payment: p, Invoice: invoiceResult(inv, nil)}, nil
}

func (s *appService) DeletePayment(ctx context.Context, paymentID int) (*InvoiceResult, error) {
	inv, err := s.payments.DeletePayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	return invoiceResult(inv, nil), nil
}

func (s *appService) ListPayments(ctx context.Context, invoiceID int) (*PaymentListResult, error) {
	payments, err := s.payments.ListPayments(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	return &PaymentListResult{InvoiceID: invoiceID, Payments: payments}, nil
}

// ── Reports ───────────────────────────────────────────────────────────────────

func (s *appService) GenerateReport(ctx context.Context, req ReportRequest) (*core.ReportData, error) {
	if err := validator.ValidateRequest(req); err != nil {
		return nil, err
	}
	from, err := parseOptionalDate("from", req.From)
	if err != nil {
		return nil, err
	}
	to, err := parseOptionalDate("to", req.To)
	if err != nil {
		return nil, err
	}
	return s.reports.GenerateReport(ctx, core.DateRange{From: from, To: to})
}

// ── helpers ───────────────────────────────────────────────────────────────────

func invoiceResult(inv *core.Invoice, payments []core.Payment) *InvoiceResult {
	return &InvoiceResult{Invoice: inv, Payments: payments, BalanceDue: inv.BalanceDue()}
}

// parseOptionalDate parses YYYY-MM-DD; an empty string yields the zero time.
func parseOptionalDate(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := core.ParseDate(s)
	if err != nil {
		return time.Time{}, ierr.WithError(err).
			WithHintf("%s must be a date in YYYY-MM-DD format", field).
			WithReportableDetails(map[string]any{field: s}).
			Mark(ierr.ErrValidation)
	}
	return t, nil
}
