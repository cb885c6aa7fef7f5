package app

import (
	"github.com/shopspring/decimal"
)

// UpdateProfileRequest is the input for creating or replacing the business profile.
type UpdateProfileRequest struct {
	Name                  string          `json:"name" validate:"required"`
	AddressLine1          string          `json:"address_line1"`
	AddressLine2          string          `json:"address_line2"`
	City                  string          `json:"city"`
	StateCode             string          `json:"state_code" validate:"required"`
	PostalCode            string          `json:"postal_code"`
	TaxRegistrationNumber string          `json:"tax_registration_number"`
	BankName              string          `json:"bank_name"`
	BankAccountName       string          `json:"bank_account_name"`
	BankAccountNumber     string          `json:"bank_account_number"`
	BankIFSC              string          `json:"bank_ifsc"`
	InvoicePrefix         string          `json:"invoice_prefix" validate:"omitempty,excludesall=/"`
	DefaultTaxRate        decimal.Decimal `json:"default_tax_rate" validate:"gte=0"`
}

// CreateClientRequest is the input for registering a client.
type CreateClientRequest struct {
	Name         string `json:"name" validate:"required"`
	CompanyName  string `json:"company_name"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city"`
	StateCode    string `json:"state_code" validate:"required"`
	PostalCode   string `json:"postal_code"`
	Email        string `json:"email" validate:"omitempty,email"`
	Phone        string `json:"phone"`
	TaxID        string `json:"tax_id"`
}

// RenameClientRequest changes a client's display names.
type RenameClientRequest struct {
	ClientID    int    `json:"client_id" validate:"required,gt=0"`
	Name        string `json:"name" validate:"required"`
	CompanyName string `json:"company_name"`
}

// CreateSubscriptionRequest is the input for a recurring monthly service.
type CreateSubscriptionRequest struct {
	ClientID        int             `json:"client_id" validate:"required,gt=0"`
	ServiceName     string          `json:"service_name" validate:"required"`
	MonthlyRate     decimal.Decimal `json:"monthly_rate" validate:"gt=0"`
	BillingCycleDay int             `json:"billing_cycle_day" validate:"required,min=1,max=31"`
}

// InvoiceLineRequest is a single line within a CreateInvoiceRequest.
type InvoiceLineRequest struct {
	Description string          `json:"description" validate:"required"`
	Quantity    decimal.Decimal `json:"quantity" validate:"gt=0"`
	Rate        decimal.Decimal `json:"rate" validate:"gte=0"`
}

// CreateInvoiceRequest is the input for an admin-entered invoice.
// Empty dates and a nil tax rate fall back to configured defaults.
type CreateInvoiceRequest struct {
	ClientID   int                  `json:"client_id" validate:"required,gt=0"`
	IssueDate  string               `json:"issue_date,omitempty" validate:"omitempty,datetime=2006-01-02"` // YYYY-MM-DD
	DueDate    string               `json:"due_date,omitempty" validate:"omitempty,datetime=2006-01-02"`   // YYYY-MM-DD
	TaxRate    *decimal.Decimal     `json:"tax_rate,omitempty"`
	InterState *bool                `json:"is_inter_state,omitempty"`
	Items      []InvoiceLineRequest `json:"items" validate:"required,min=1,dive"`
	Notes      string               `json:"notes,omitempty"`
	Finalize   bool                 `json:"finalize,omitempty"`
}

// ListInvoicesRequest filters ListInvoices. Zero values mean "any".
type ListInvoicesRequest struct {
	ClientID       int    `json:"client_id" validate:"gte=0"`
	SubscriptionID int    `json:"subscription_id" validate:"gte=0"`
	Status         string `json:"status" validate:"omitempty,oneof=draft sent partially_paid paid overdue"`
	From           string `json:"from" validate:"omitempty,datetime=2006-01-02"`
	To             string `json:"to" validate:"omitempty,datetime=2006-01-02"`
	UnpaidOnly     bool   `json:"unpaid_only"`
}

// RecordPaymentRequest is the input for a payment against an invoice.
type RecordPaymentRequest struct {
	InvoiceID   int             `json:"invoice_id" validate:"required,gt=0"`
	Amount      decimal.Decimal `json:"amount" validate:"gt=0"`
	PaymentDate string          `json:"payment_date,omitempty" validate:"omitempty,datetime=2006-01-02"` // YYYY-MM-DD, defaults to today
	Method      string          `json:"method,omitempty" validate:"omitempty,oneof=cash bank_transfer upi card cheque other"`
	Reference   string          `json:"reference,omitempty"`
}

// ReportRequest selects an inclusive report window.
type ReportRequest struct {
	From string `json:"from" validate:"required,datetime=2006-01-02"`
	To   string `json:"to" validate:"required,datetime=2006-01-02"`
}
