package app

import (
	"agency-billing/internal/core"

	"github.com/shopspring/decimal"
)

// InvoiceResult is returned by invoice lifecycle operations.
type InvoiceResult struct {
	Invoice    *core.Invoice   `json:"invoice"`
	Payments   []core.Payment  `json:"payments,omitempty"`
	BalanceDue decimal.Decimal `json:"balance_due"`
}

// InvoiceListResult is returned by ListInvoices.
type InvoiceListResult struct {
	Invoices []core.Invoice `json:"invoices"`
}

// PaymentResult is returned by RecordPayment.
type PaymentResult struct {
	Payment *core.Payment  `json:"payment"`
	Invoice *InvoiceResult `json:"invoice"`
}

// PaymentListResult is returned by ListPayments.
type PaymentListResult struct {
	InvoiceID int            `json:"invoice_id"`
	Payments  []core.Payment `json:"payments"`
}

// ClientListResult is returned by ListClients.
type ClientListResult struct {
	Clients []core.Client `json:"clients"`
}

// SubscriptionListResult is returned by ListSubscriptions.
type SubscriptionListResult struct {
	Subscriptions []core.Subscription `json:"subscriptions"`
}

// RefreshResult is returned by RefreshInvoiceStatuses.
type RefreshResult struct {
	Changed int `json:"changed"`
}
