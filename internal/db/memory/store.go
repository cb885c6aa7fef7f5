// Package memory is an in-process core.Store used by unit tests. Transactions
// take a store-wide lock and restore a snapshot on failure.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"agency-billing/internal/core"
	ierr "agency-billing/internal/errors"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type state struct {
	profile       *core.BusinessProfile
	clients       map[int]core.Client
	invoices      map[int]core.Invoice
	payments      map[int]core.Payment
	subscriptions map[int]core.Subscription
	seq           map[string]int
}

func (st *state) clone() state {
	out := state{
		clients:       make(map[int]core.Client, len(st.clients)),
		invoices:      make(map[int]core.Invoice, len(st.invoices)),
		payments:      make(map[int]core.Payment, len(st.payments)),
		subscriptions: make(map[int]core.Subscription, len(st.subscriptions)),
		seq:           make(map[string]int, len(st.seq)),
	}
	if st.profile != nil {
		p := *st.profile
		out.profile = &p
	}
	for k, v := range st.clients {
		out.clients[k] = v
	}
	for k, v := range st.invoices {
		out.invoices[k] = cloneInvoice(v)
	}
	for k, v := range st.payments {
		out.payments[k] = v
	}
	for k, v := range st.subscriptions {
		out.subscriptions[k] = cloneSubscription(v)
	}
	for k, v := range st.seq {
		out.seq[k] = v
	}
	return out
}

func (st *state) nextID(table string) int {
	st.seq[table]++
	return st.seq[table]
}

// Store implements core.Store in memory.
type Store struct {
	mu   *sync.Mutex
	data *state
	inTx bool
}

var _ core.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		mu: &sync.Mutex{},
		data: &state{
			clients:       make(map[int]core.Client),
			invoices:      make(map[int]core.Invoice),
			payments:      make(map[int]core.Payment),
			subscriptions: make(map[int]core.Subscription),
			seq:           make(map[string]int),
		},
	}
}

func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, repo core.Repository) error) error {
	if s.inTx {
		return fn(ctx, s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(ctx, &Store{mu: s.mu, data: s.data, inTx: true}); err != nil {
		*s.data = snapshot
		return err
	}
	return nil
}

// ── Business profile ─────────────────────────────────────────────────────────

func (s *Store) GetBusinessProfile(_ context.Context) (*core.BusinessProfile, error) {
	defer s.lock()()
	if s.data.profile == nil {
		return nil, ierr.NewError("business profile not found").Mark(ierr.ErrNotFound)
	}
	p := *s.data.profile
	return &p, nil
}

func (s *Store) SaveBusinessProfile(_ context.Context, p *core.BusinessProfile) error {
	defer s.lock()()
	cp := *p
	s.data.profile = &cp
	return nil
}

// ── Clients ──────────────────────────────────────────────────────────────────

func (s *Store) CreateClient(_ context.Context, c *core.Client) error {
	defer s.lock()()
	c.ID = s.data.nextID("clients")
	s.data.clients[c.ID] = *c
	return nil
}

func (s *Store) GetClient(_ context.Context, id int) (*core.Client, error) {
	defer s.lock()()
	c, ok := s.data.clients[id]
	if !ok {
		return nil, core.NotFoundError(core.ErrClientNotFound, "client", id)
	}
	return &c, nil
}

func (s *Store) ListClients(_ context.Context) ([]core.Client, error) {
	defer s.lock()()
	out := lo.Values(s.data.clients)
	slices.SortFunc(out, func(a, b core.Client) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return a.ID - b.ID
	})
	return out, nil
}

func (s *Store) RenameClient(_ context.Context, id int, name, companyName string) error {
	defer s.lock()()
	c, ok := s.data.clients[id]
	if !ok {
		return core.NotFoundError(core.ErrClientNotFound, "client", id)
	}
	c.Name, c.CompanyName, c.UpdatedAt = name, companyName, time.Now()
	s.data.clients[id] = c
	return nil
}

// ── Invoices ─────────────────────────────────────────────────────────────────

func (s *Store) LockNumberScope(_ context.Context, _ string, _ int) error {
	if !s.inTx {
		return ierr.NewError("invoice number scope lock requires a transaction").Mark(ierr.ErrSystem)
	}
	return nil
}

func (s *Store) GetLastInvoiceNumber(_ context.Context, prefix string, year int) (string, error) {
	defer s.lock()()
	scope := core.InvoiceNumberScope(prefix, year)
	last := ""
	for _, inv := range s.data.invoices {
		if !strings.HasPrefix(inv.Number, scope) {
			continue
		}
		if len(inv.Number) > len(last) || (len(inv.Number) == len(last) && inv.Number > last) {
			last = inv.Number
		}
	}
	return last, nil
}

func (s *Store) InsertInvoice(_ context.Context, inv *core.Invoice) (int, error) {
	defer s.lock()()
	if _, ok := s.data.clients[inv.ClientID]; !ok {
		return 0, core.NotFoundError(core.ErrClientNotFound, "client", inv.ClientID)
	}
	for _, existing := range s.data.invoices {
		if existing.Number == inv.Number {
			return 0, core.NumberTakenError(inv.Number)
		}
		if inv.IdempotencyKey != nil && existing.IdempotencyKey != nil && *existing.IdempotencyKey == *inv.IdempotencyKey {
			return 0, core.DuplicateCycleError(*inv.IdempotencyKey)
		}
	}
	stored := cloneInvoice(*inv)
	stored.ID = s.data.nextID("invoices")
	stored.ClientName = ""
	stored.AmountPaid = decimal.Zero
	s.data.invoices[stored.ID] = stored
	return stored.ID, nil
}

func (s *Store) GetInvoice(_ context.Context, id int) (*core.Invoice, error) {
	defer s.lock()()
	inv, ok := s.data.invoices[id]
	if !ok {
		return nil, core.NotFoundError(core.ErrInvoiceNotFound, "invoice", id)
	}
	out := s.hydrate(inv)
	return &out, nil
}

func (s *Store) LockInvoice(_ context.Context, id int) error {
	defer s.lock()()
	if _, ok := s.data.invoices[id]; !ok {
		return core.NotFoundError(core.ErrInvoiceNotFound, "invoice", id)
	}
	return nil
}

func (s *Store) ListInvoices(_ context.Context, f core.InvoiceFilter) ([]core.Invoice, error) {
	defer s.lock()()
	out := make([]core.Invoice, 0)
	for _, inv := range s.data.invoices {
		switch {
		case f.ClientID > 0 && inv.ClientID != f.ClientID,
			f.SubscriptionID > 0 && (inv.SubscriptionID == nil || *inv.SubscriptionID != f.SubscriptionID),
			f.Status != "" && inv.Status != f.Status,
			!f.From.IsZero() && inv.IssueDate.Before(core.Date(f.From)),
			!f.To.IsZero() && inv.IssueDate.After(core.Date(f.To)),
			f.UnpaidOnly && inv.Status == core.InvoiceStatusPaid:
			continue
		}
		h := s.hydrate(inv)
		h.Items = nil
		out = append(out, h)
	}
	slices.SortFunc(out, func(a, b core.Invoice) int {
		if c := b.IssueDate.Compare(a.IssueDate); c != 0 {
			return c
		}
		return b.ID - a.ID
	})
	return out, nil
}

func (s *Store) UpdateInvoiceStatus(_ context.Context, id int, status core.InvoiceStatus, sentAt *time.Time) error {
	defer s.lock()()
	inv, ok := s.data.invoices[id]
	if !ok {
		return core.NotFoundError(core.ErrInvoiceNotFound, "invoice", id)
	}
	inv.Status = status
	inv.SentAt = clonePtr(sentAt)
	inv.UpdatedAt = time.Now()
	s.data.invoices[id] = inv
	return nil
}

// ── Payments ─────────────────────────────────────────────────────────────────

func (s *Store) InsertPayment(_ context.Context, p *core.Payment) (int, error) {
	defer s.lock()()
	if _, ok := s.data.invoices[p.InvoiceID]; !ok {
		return 0, core.NotFoundError(core.ErrInvoiceNotFound, "invoice", p.InvoiceID)
	}
	stored := *p
	stored.ID = s.data.nextID("payments")
	s.data.payments[stored.ID] = stored
	return stored.ID, nil
}

func (s *Store) GetPayment(_ context.Context, id int) (*core.Payment, error) {
	defer s.lock()()
	p, ok := s.data.payments[id]
	if !ok {
		return nil, core.NotFoundError(core.ErrPaymentNotFound, "payment", id)
	}
	return &p, nil
}

func (s *Store) DeletePayment(_ context.Context, id int) error {
	defer s.lock()()
	if _, ok := s.data.payments[id]; !ok {
		return core.NotFoundError(core.ErrPaymentNotFound, "payment", id)
	}
	delete(s.data.payments, id)
	return nil
}

func (s *Store) ListPayments(_ context.Context, invoiceID int) ([]core.Payment, error) {
	defer s.lock()()
	return s.paymentsFor(invoiceID), nil
}

func (s *Store) SumPayments(_ context.Context, invoiceID int) (decimal.Decimal, error) {
	defer s.lock()()
	return s.sumPayments(invoiceID), nil
}

// ── Subscriptions ────────────────────────────────────────────────────────────

func (s *Store) CreateSubscription(_ context.Context, sub *core.Subscription) error {
	defer s.lock()()
	if _, ok := s.data.clients[sub.ClientID]; !ok {
		return core.NotFoundError(core.ErrClientNotFound, "client", sub.ClientID)
	}
	sub.ID = s.data.nextID("subscriptions")
	s.data.subscriptions[sub.ID] = cloneSubscription(*sub)
	return nil
}

func (s *Store) GetSubscription(_ context.Context, id int) (*core.Subscription, error) {
	defer s.lock()()
	sub, ok := s.data.subscriptions[id]
	if !ok {
		return nil, core.NotFoundError(core.ErrSubscriptionNotFound, "subscription", id)
	}
	out := cloneSubscription(sub)
	return &out, nil
}

func (s *Store) ListSubscriptions(_ context.Context, activeOnly bool) ([]core.Subscription, error) {
	defer s.lock()()
	out := make([]core.Subscription, 0, len(s.data.subscriptions))
	for _, sub := range s.data.subscriptions {
		if activeOnly && !sub.Active {
			continue
		}
		out = append(out, cloneSubscription(sub))
	}
	slices.SortFunc(out, func(a, b core.Subscription) int { return a.ID - b.ID })
	return out, nil
}

func (s *Store) SetSubscriptionLastInvoiceDate(_ context.Context, id int, date time.Time) error {
	defer s.lock()()
	sub, ok := s.data.subscriptions[id]
	if !ok {
		return core.NotFoundError(core.ErrSubscriptionNotFound, "subscription", id)
	}
	d := core.Date(date)
	sub.LastInvoiceDate = &d
	sub.UpdatedAt = time.Now()
	s.data.subscriptions[id] = sub
	return nil
}

// ── Reports ──────────────────────────────────────────────────────────────────

func (s *Store) QueryInvoicesAndPayments(_ context.Context, r core.DateRange) (*core.ReportRows, error) {
	defer s.lock()()
	rows := &core.ReportRows{Invoices: []core.Invoice{}, Payments: []core.ReportPaymentRow{}}
	for _, inv := range s.data.invoices {
		if r.Contains(inv.IssueDate) {
			h := s.hydrate(inv)
			h.Items = nil
			rows.Invoices = append(rows.Invoices, h)
		}
	}
	for _, p := range s.data.payments {
		if !r.Contains(p.PaymentDate) {
			continue
		}
		inv := s.data.invoices[p.InvoiceID]
		rows.Payments = append(rows.Payments, core.ReportPaymentRow{
			Payment:       p,
			InvoiceNumber: inv.Number,
			ClientID:      inv.ClientID,
			ClientName:    s.clientName(inv.ClientID),
		})
	}
	slices.SortFunc(rows.Invoices, func(a, b core.Invoice) int {
		if c := a.IssueDate.Compare(b.IssueDate); c != 0 {
			return c
		}
		return a.ID - b.ID
	})
	slices.SortFunc(rows.Payments, func(a, b core.ReportPaymentRow) int {
		if c := a.PaymentDate.Compare(b.PaymentDate); c != 0 {
			return c
		}
		return a.ID - b.ID
	})
	return rows, nil
}

// ── helpers (callers hold the lock) ──────────────────────────────────────────

func (s *Store) hydrate(inv core.Invoice) core.Invoice {
	out := cloneInvoice(inv)
	out.ClientName = s.clientName(inv.ClientID)
	out.AmountPaid = s.sumPayments(inv.ID)
	return out
}

func (s *Store) clientName(id int) string {
	c, ok := s.data.clients[id]
	if !ok {
		return ""
	}
	return c.DisplayName()
}

func (s *Store) paymentsFor(invoiceID int) []core.Payment {
	out := lo.Filter(lo.Values(s.data.payments), func(p core.Payment, _ int) bool {
		return p.InvoiceID == invoiceID
	})
	slices.SortFunc(out, func(a, b core.Payment) int {
		if c := a.PaymentDate.Compare(b.PaymentDate); c != 0 {
			return c
		}
		return a.ID - b.ID
	})
	return out
}

func (s *Store) sumPayments(invoiceID int) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range s.data.payments {
		if p.InvoiceID == invoiceID {
			sum = sum.Add(p.Amount)
		}
	}
	return sum
}

func cloneInvoice(inv core.Invoice) core.Invoice {
	inv.Items = slices.Clone(inv.Items)
	inv.SentAt = clonePtr(inv.SentAt)
	inv.SubscriptionID = clonePtr(inv.SubscriptionID)
	inv.IdempotencyKey = clonePtr(inv.IdempotencyKey)
	return inv
}

func cloneSubscription(sub core.Subscription) core.Subscription {
	sub.LastInvoiceDate = clonePtr(sub.LastInvoiceDate)
	return sub
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
