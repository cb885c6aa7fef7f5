package core

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// RecordPaymentInput is a receipt to append to an invoice's ledger.
type RecordPaymentInput struct {
	InvoiceID int
	Amount    decimal.Decimal
	// PaymentDate defaults to today when zero.
	PaymentDate time.Time
	Method      PaymentMethod
	Reference   string
}

// PaymentService is the payment ledger. Every mutation re-evaluates the
// owning invoice's status in the same transaction.
type PaymentService interface {
	// RecordPayment appends a payment. A draft invoice is finalized by its
	// first payment so that later deletions cannot return it to draft.
	RecordPayment(ctx context.Context, in RecordPaymentInput) (*Payment, *Invoice, error)
	// DeletePayment removes a payment and re-evaluates the invoice. It does not
	// roll back subscription cycle advancement.
	DeletePayment(ctx context.Context, paymentID int) (*Invoice, error)
	ListPayments(ctx context.Context, invoiceID int) ([]Payment, error)
}

type paymentService struct {
	store  Store
	cfg    BillingConfig
	logger zerolog.Logger
}

func NewPaymentService(store Store, cfg BillingConfig, logger zerolog.Logger) PaymentService {
	return &paymentService{
		store:  store,
		cfg:    cfg,
		logger: logger.With().Str("component", "payments").Logger(),
	}
}

func (s *paymentService) RecordPayment(ctx context.Context, in RecordPaymentInput) (*Payment, *Invoice, error) {
	if in.InvoiceID <= 0 {
		return nil, nil, validationError("invoice_id", "invoice is required")
	}
	// amounts are stored to the paisa; anything that rounds to zero is no payment
	amount := RoundMoney(in.Amount)
	if !amount.IsPositive() {
		return nil, nil, validationError("amount", "payment amount must be at least 0.01")
	}
	if in.Method == "" {
		in.Method = PaymentMethodBankTransfer
	}
	if !in.Method.Valid() {
		return nil, nil, validationError("method", "unknown payment method "+string(in.Method))
	}
	if in.PaymentDate.IsZero() {
		in.PaymentDate = s.cfg.today()
	}

	p := &Payment{
		InvoiceID:   in.InvoiceID,
		Amount:      amount,
		PaymentDate: Date(in.PaymentDate),
		Method:      in.Method,
		Reference:   strings.TrimSpace(in.Reference),
		CreatedAt:   s.cfg.now(),
	}

	var inv *Invoice
	err := s.store.InTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.LockInvoice(ctx, in.InvoiceID); err != nil {
			return err
		}
		id, err := repo.InsertPayment(ctx, p)
		if err != nil {
			return err
		}
		p.ID = id

		inv, err = repo.GetInvoice(ctx, in.InvoiceID)
		if err != nil {
			return err
		}
		if !inv.IsFinalized() {
			now := s.cfg.now()
			inv.SentAt = &now
		}
		return s.applyStatus(ctx, repo, inv)
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info().
		Int("payment_id", p.ID).
		Int("invoice_id", inv.ID).
		Str("amount", p.Amount.StringFixed(2)).
		Str("status", string(inv.Status)).
		Msg("payment recorded")
	return p, inv, nil
}

func (s *paymentService) DeletePayment(ctx context.Context, paymentID int) (*Invoice, error) {
	var inv *Invoice
	err := s.store.InTx(ctx, func(ctx context.Context, repo Repository) error {
		p, err := repo.GetPayment(ctx, paymentID)
		if err != nil {
			return err
		}
		if err := repo.LockInvoice(ctx, p.InvoiceID); err != nil {
			return err
		}
		if err := repo.DeletePayment(ctx, paymentID); err != nil {
			return err
		}
		inv, err = repo.GetInvoice(ctx, p.InvoiceID)
		if err != nil {
			return err
		}
		return s.applyStatus(ctx, repo, inv)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int("payment_id", paymentID).
		Int("invoice_id", inv.ID).
		Str("status", string(inv.Status)).
		Msg("payment deleted")
	return inv, nil
}

func (s *paymentService) ListPayments(ctx context.Context, invoiceID int) ([]Payment, error) {
	if _, err := s.store.GetInvoice(ctx, invoiceID); err != nil {
		return nil, err
	}
	return s.store.ListPayments(ctx, invoiceID)
}

// applyStatus re-sums payments under the invoice lock and writes the evaluated
// status and sent_at unconditionally, since a first payment may have finalized
// the invoice without changing its status.
func (s *paymentService) applyStatus(ctx context.Context, repo Repository, inv *Invoice) error {
	paid, err := repo.SumPayments(ctx, inv.ID)
	if err != nil {
		return err
	}
	inv.AmountPaid = paid
	inv.Status = EvaluateStatus(inv, s.cfg.today())
	return repo.UpdateInvoiceStatus(ctx, inv.ID, inv.Status, inv.SentAt)
}
