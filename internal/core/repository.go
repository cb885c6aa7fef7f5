package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceFilter narrows ListInvoices. Zero values mean "any".
type InvoiceFilter struct {
	ClientID       int
	SubscriptionID int
	Status         InvoiceStatus
	From           time.Time // issue date lower bound, inclusive
	To             time.Time // issue date upper bound, inclusive
	UnpaidOnly     bool
}

// ReportPaymentRow is a payment joined to the client of its invoice.
type ReportPaymentRow struct {
	Payment
	InvoiceNumber string `json:"invoice_number"`
	ClientID      int    `json:"client_id"`
	ClientName    string `json:"client_name"`
}

// ReportRows holds the two independent windowed selections behind a report.
// Invoices carry their all-time AmountPaid; Items are not loaded.
type ReportRows struct {
	Invoices []Invoice
	Payments []ReportPaymentRow
}

// Repository is the storage surface the billing core needs. Implementations
// mark missing rows with ierr.ErrNotFound and uniqueness violations with
// ierr.ErrConflict.
type Repository interface {
	GetBusinessProfile(ctx context.Context) (*BusinessProfile, error)
	SaveBusinessProfile(ctx context.Context, p *BusinessProfile) error

	CreateClient(ctx context.Context, c *Client) error
	GetClient(ctx context.Context, id int) (*Client, error)
	ListClients(ctx context.Context) ([]Client, error)
	RenameClient(ctx context.Context, id int, name, companyName string) error

	// LockNumberScope serializes number allocation for (prefix, year) until
	// the surrounding transaction ends.
	LockNumberScope(ctx context.Context, prefix string, year int) error
	// GetLastInvoiceNumber returns the highest issued number in the scope, or "" if none.
	GetLastInvoiceNumber(ctx context.Context, prefix string, year int) (string, error)
	// InsertInvoice stores the invoice and its items. A taken number is marked
	// ErrInvoiceNumberTaken; a reused idempotency key ErrCycleAlreadyInvoiced.
	InsertInvoice(ctx context.Context, inv *Invoice) (int, error)
	// GetInvoice loads the invoice with items, client name and AmountPaid.
	GetInvoice(ctx context.Context, id int) (*Invoice, error)
	// LockInvoice holds a row lock on the invoice until the transaction ends.
	LockInvoice(ctx context.Context, id int) error
	ListInvoices(ctx context.Context, f InvoiceFilter) ([]Invoice, error)
	UpdateInvoiceStatus(ctx context.Context, id int, status InvoiceStatus, sentAt *time.Time) error

	InsertPayment(ctx context.Context, p *Payment) (int, error)
	GetPayment(ctx context.Context, id int) (*Payment, error)
	DeletePayment(ctx context.Context, id int) error
	ListPayments(ctx context.Context, invoiceID int) ([]Payment, error)
	SumPayments(ctx context.Context, invoiceID int) (decimal.Decimal, error)

	CreateSubscription(ctx context.Context, s *Subscription) error
	GetSubscription(ctx context.Context, id int) (*Subscription, error)
	ListSubscriptions(ctx context.Context, activeOnly bool) ([]Subscription, error)
	SetSubscriptionLastInvoiceDate(ctx context.Context, id int, date time.Time) error

	QueryInvoicesAndPayments(ctx context.Context, r DateRange) (*ReportRows, error)
}

// Transactor runs fn inside one storage transaction. fn receives a Repository
// bound to that transaction; returning an error rolls everything back.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error
}

// Store is a Repository that can also open transactions.
type Store interface {
	Repository
	Transactor
}
