package app

import (
	"context"

	"agency-billing/internal/core"
)

// ApplicationService is the single interface all UI adapters (CLI, Web) call.
// It decouples presentation from business logic. Implementations must contain
// no fmt.Println, no ANSI codes, and no display logic of any kind.
type ApplicationService interface {
	// GetProfile returns the business profile. A missing profile is a configuration error.
	GetProfile(ctx context.Context) (*core.BusinessProfile, error)

	// UpdateProfile creates or replaces the business profile.
	UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*core.BusinessProfile, error)

	// CreateClient registers a new billed party.
	CreateClient(ctx context.Context, req CreateClientRequest) (*core.Client, error)

	// GetClient returns one client by ID.
	GetClient(ctx context.Context, id int) (*core.Client, error)

	// ListClients returns every client ordered by name.
	ListClients(ctx context.Context) (*ClientListResult, error)

	// RenameClient changes a client's display names. Identity never changes.
	RenameClient(ctx context.Context, req RenameClientRequest) (*core.Client, error)

	// CreateSubscription registers a recurring monthly service for a client.
	CreateSubscription(ctx context.Context, req CreateSubscriptionRequest) (*core.Subscription, error)

	// GetSubscription returns one subscription by ID.
	GetSubscription(ctx context.Context, id int) (*core.Subscription, error)

	// ListSubscriptions returns subscriptions, optionally only active ones.
	ListSubscriptions(ctx context.Context, activeOnly bool) (*SubscriptionListResult, error)

	// GenerateSubscriptionInvoice issues the invoice for the subscription's current
	// billing cycle. A cycle can be invoiced only once.
	GenerateSubscriptionInvoice(ctx context.Context, subscriptionID int) (*InvoiceResult, error)

	// GenerateDueInvoices invoices every active subscription whose current cycle is open.
	GenerateDueInvoices(ctx context.Context) (*core.GenerateDueResult, error)

	// CreateInvoice records an admin-entered invoice with the next sequential number.
	CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResult, error)

	// GetInvoice returns an invoice with its payments, status re-evaluated as of today.
	GetInvoice(ctx context.Context, id int) (*InvoiceResult, error)

	// ListInvoices returns invoice headers matching the filter, newest first.
	ListInvoices(ctx context.Context, req ListInvoicesRequest) (*InvoiceListResult, error)

	// FinalizeInvoice issues a draft invoice. Non-drafts are returned unchanged.
	FinalizeInvoice(ctx context.Context, id int) (*InvoiceResult, error)

	// RefreshInvoiceStatuses re-evaluates every unpaid invoice (e.g. sent → overdue).
	RefreshInvoiceStatuses(ctx context.Context) (*RefreshResult, error)

	// RecordPayment appends a payment to an invoice and re-evaluates its status.
	RecordPayment(ctx context.Context, req RecordPaymentRequest) (*PaymentResult, error)

	// DeletePayment removes a payment and re-evaluates its invoice.
	DeletePayment(ctx context.Context, paymentID int) (*InvoiceResult, error)

	// ListPayments returns an invoice's payments in payment-date order.
	ListPayments(ctx context.Context, invoiceID int) (*PaymentListResult, error)

	// GenerateReport summarizes invoicing and collections over an inclusive date window.
	GenerateReport(ctx context.Context, req ReportRequest) (*core.ReportData, error)
}
