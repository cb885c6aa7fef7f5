package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the ISO calendar date format used at every boundary.
const DateLayout = "2006-01-02"

// Client is the billed party. Identity is fixed once an invoice references it;
// the display name may change.
type Client struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	CompanyName  string    `json:"company_name,omitempty"`
	AddressLine1 string    `json:"address_line1,omitempty"`
	AddressLine2 string    `json:"address_line2,omitempty"`
	City         string    `json:"city,omitempty"`
	StateCode    string    `json:"state_code"`
	PostalCode   string    `json:"postal_code,omitempty"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	TaxID        string    `json:"tax_id,omitempty"` // client GSTIN, printed on the invoice
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DisplayName prefers the company name when one is set.
func (c *Client) DisplayName() string {
	if c.CompanyName != "" {
		return c.CompanyName
	}
	return c.Name
}

// BusinessProfile describes the issuing entity. Exactly one exists.
type BusinessProfile struct {
	Name                  string          `json:"name"`
	AddressLine1          string          `json:"address_line1,omitempty"`
	AddressLine2          string          `json:"address_line2,omitempty"`
	City                  string          `json:"city,omitempty"`
	StateCode             string          `json:"state_code"`
	PostalCode            string          `json:"postal_code,omitempty"`
	TaxRegistrationNumber string          `json:"tax_registration_number,omitempty"`
	BankName              string          `json:"bank_name,omitempty"`
	BankAccountName       string          `json:"bank_account_name,omitempty"`
	BankAccountNumber     string          `json:"bank_account_number,omitempty"`
	BankIFSC              string          `json:"bank_ifsc,omitempty"`
	InvoicePrefix         string          `json:"invoice_prefix"`
	DefaultTaxRate        decimal.Decimal `json:"default_tax_rate"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// LineItem belongs to exactly one invoice. Position orders display only.
type LineItem struct {
	Position    int             `json:"position"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// TaxBreakdown is derived from subtotal, rate and jurisdiction; never stored on its own.
type TaxBreakdown struct {
	CentralTax    decimal.Decimal `json:"cgst"`
	StateTax      decimal.Decimal `json:"sgst"`
	IntegratedTax decimal.Decimal `json:"igst"`
	TotalTax      decimal.Decimal `json:"total_tax"`
}

type InvoiceStatus string

const (
	InvoiceStatusDraft         InvoiceStatus = "draft"
	InvoiceStatusSent          InvoiceStatus = "sent"
	InvoiceStatusPartiallyPaid InvoiceStatus = "partially_paid"
	InvoiceStatusPaid          InvoiceStatus = "paid"
	InvoiceStatusOverdue       InvoiceStatus = "overdue"
)

// AllInvoiceStatuses lists statuses in lifecycle order.
var AllInvoiceStatuses = []InvoiceStatus{
	InvoiceStatusDraft,
	InvoiceStatusSent,
	InvoiceStatusPartiallyPaid,
	InvoiceStatusOverdue,
	InvoiceStatusPaid,
}

func (s InvoiceStatus) Valid() bool {
	for _, v := range AllInvoiceStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Invoice is the invoice aggregate. AmountPaid is always the sum of its
// payments and Status is derived from it (see EvaluateStatus).
type Invoice struct {
	ID             int             `json:"id"`
	Number         string          `json:"invoice_number"`
	ClientID       int             `json:"client_id"`
	ClientName     string          `json:"client_name,omitempty"` // joined from clients
	SubscriptionID *int            `json:"subscription_id,omitempty"`
	IdempotencyKey *string         `json:"-"`
	IssueDate      time.Time       `json:"issue_date"`
	DueDate        time.Time       `json:"due_date"`
	Items          []LineItem      `json:"items"`
	TaxRate        decimal.Decimal `json:"tax_rate"`
	InterState     bool            `json:"is_inter_state"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Tax            TaxBreakdown    `json:"tax"`
	GrandTotal     decimal.Decimal `json:"grand_total"`
	AmountPaid     decimal.Decimal `json:"amount_paid"`
	Status         InvoiceStatus   `json:"status"`
	Notes          string          `json:"notes,omitempty"`
	SentAt         *time.Time      `json:"sent_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// BalanceDue is the outstanding amount, clamped at zero for overpayments.
func (inv *Invoice) BalanceDue() decimal.Decimal {
	bal := inv.GrandTotal.Sub(inv.AmountPaid)
	if bal.IsNegative() {
		return decimal.Zero
	}
	return bal
}

// IsFinalized reports whether the invoice has left draft.
func (inv *Invoice) IsFinalized() bool {
	return inv.SentAt != nil
}

type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodUPI          PaymentMethod = "upi"
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodCheque       PaymentMethod = "cheque"
	PaymentMethodOther        PaymentMethod = "other"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodUPI,
		PaymentMethodCard, PaymentMethodCheque, PaymentMethodOther:
		return true
	}
	return false
}

// Payment is a receipt recorded against one invoice.
type Payment struct {
	ID          int             `json:"id"`
	InvoiceID   int             `json:"invoice_id"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate time.Time       `json:"payment_date"`
	Method      PaymentMethod   `json:"method"`
	Reference   string          `json:"reference,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Subscription is a recurring monthly service billed to a client.
// LastInvoiceDate is only ever advanced by invoice generation.
type Subscription struct {
	ID              int             `json:"id"`
	ClientID        int             `json:"client_id"`
	ServiceName     string          `json:"service_name"`
	MonthlyRate     decimal.Decimal `json:"monthly_rate"`
	BillingCycleDay int             `json:"billing_cycle_day"`
	LastInvoiceDate *time.Time      `json:"last_invoice_date,omitempty"`
	Active          bool            `json:"active"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// DateRange is an inclusive calendar-date window.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Contains reports whether d falls inside the window, comparing calendar dates only.
func (r DateRange) Contains(d time.Time) bool {
	day := Date(d)
	return !day.Before(Date(r.From)) && !day.After(Date(r.To))
}

// Date truncates t to its calendar date at UTC midnight.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// BillingConfig is passed explicitly to the billing services.
type BillingConfig struct {
	InvoiceDueDays               int
	AutoSendSubscriptionInvoices bool
	ProfileCacheTTL              time.Duration
	// Clock returns the current time; nil means time.Now.
	Clock func() time.Time
}

func (c BillingConfig) now() time.Time {
	if c.Clock != nil {
		return c.Clock()
	}
	return time.Now()
}

func (c BillingConfig) today() time.Time {
	return Date(c.now())
}
