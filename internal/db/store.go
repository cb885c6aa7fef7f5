package db

import (
	"context"
	"strings"

	"agency-billing/internal/core"
	ierr "agency-billing/internal/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"

	constraintInvoiceNumber  = "invoices_invoice_number_key"
	constraintIdempotencyKey = "invoices_idempotency_key_key"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, enabling shared query helpers.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Store is the PostgreSQL implementation of core.Store.
type Store struct {
	pool *pgxpool.Pool
	q    querier
	tx   bool
}

var _ core.Store = (*Store)(nil)

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, q: pool}
}

// InTx runs fn in one transaction. Calls made on a transaction-bound Store
// join the outer transaction.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, repo core.Repository) error) error {
	if s.tx {
		return fn(ctx, s)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return dbError(err, "begin transaction")
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, &Store{pool: s.pool, q: tx, tx: true}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return dbError(err, "commit transaction")
	}
	return nil
}

// ── Business profile ─────────────────────────────────────────────────────────

func (s *Store) GetBusinessProfile(ctx context.Context) (*core.BusinessProfile, error) {
	var p core.BusinessProfile
	err := s.q.QueryRow(ctx, `
		SELECT name, address_line1, address_line2, city, state_code, postal_code,
		       tax_registration_number, bank_name, bank_account_name, bank_account_number,
		       bank_ifsc, invoice_prefix, default_tax_rate, updated_at
		FROM business_profile WHERE id = 1
	`).Scan(&p.Name, &p.AddressLine1, &p.AddressLine2, &p.City, &p.StateCode, &p.PostalCode,
		&p.TaxRegistrationNumber, &p.BankName, &p.BankAccountName, &p.BankAccountNumber,
		&p.BankIFSC, &p.InvoicePrefix, &p.DefaultTaxRate, &p.UpdatedAt)
	if err != nil {
		if ierr.Is(err, pgx.ErrNoRows) {
			return nil, ierr.NewError("business profile not found").Mark(ierr.ErrNotFound)
		}
		return nil, dbError(err, "get business profile")
	}
	return &p, nil
}

func (s *Store) SaveBusinessProfile(ctx context.Context, p *core.BusinessProfile) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO business_profile (id, name, address_line1, address_line2, city, state_code,
			postal_code, tax_registration_number, bank_name, bank_account_name, bank_account_number,
			bank_ifsc, invoice_prefix, default_tax_rate, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			address_line1 = EXCLUDED.address_line1,
			address_line2 = EXCLUDED.address_line2,
			city = EXCLUDED.city,
			state_code = EXCLUDED.state_code,
			postal_code = EXCLUDED.postal_code,
			tax_registration_number = EXCLUDED.tax_registration_number,
			bank_name = EXCLUDED.bank_name,
			bank_account_name = EXCLUDED.bank_account_name,
			bank_account_number = EXCLUDED.bank_account_number,
			bank_ifsc = EXCLUDED.bank_ifsc,
			invoice_prefix = EXCLUDED.invoice_prefix,
			default_tax_rate = EXCLUDED.default_tax_rate,
			updated_at = EXCLUDED.updated_at
	`, p.Name, p.AddressLine1, p.AddressLine2, p.City, p.StateCode, p.PostalCode,
		p.TaxRegistrationNumber, p.BankName, p.BankAccountName, p.BankAccountNumber,
		p.BankIFSC, p.InvoicePrefix, p.DefaultTaxRate, p.UpdatedAt)
	if err != nil {
		return dbError(err, "save business profile")
	}
	return nil
}

// ── Clients ──────────────────────────────────────────────────────────────────

const clientColumns = `id, name, company_name, address_line1, address_line2, city, state_code,
	postal_code, email, phone, tax_id, created_at, updated_at`

func scanClient(row pgx.Row) (core.Client, error) {
	var c core.Client
	err := row.Scan(&c.ID, &c.Name, &c.CompanyName, &c.AddressLine1, &c.AddressLine2, &c.City,
		&c.StateCode, &c.PostalCode, &c.Email, &c.Phone, &c.TaxID, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (s *Store) CreateClient(ctx context.Context, c *core.Client) error {
	err := s.q.QueryRow(ctx, `
		INSERT INTO clients (name, company_name, address_line1, address_line2, city, state_code,
			postal_code, email, phone, tax_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`, c.Name, c.CompanyName, c.AddressLine1, c.AddressLine2, c.City, c.StateCode,
		c.PostalCode, c.Email, c.Phone, c.TaxID, c.CreatedAt, c.UpdatedAt).Scan(&c.ID)
	if err != nil {
		return dbError(err, "create client")
	}
	return nil
}

func (s *Store) GetClient(ctx context.Context, id int) (*core.Client, error) {
	c, err := scanClient(s.q.QueryRow(ctx, "SELECT "+clientColumns+" FROM clients WHERE id = $1", id))
	if err != nil {
		if ierr.Is(err, pgx.ErrNoRows) {
			return nil, core.NotFoundError(core.ErrClientNotFound, "client", id)
		}
		return nil, dbError(err, "get client")
	}
	return &c, nil
}

func (s *Store) ListClients(ctx context.Context) ([]core.Client, error) {
	rows, err := s.q.Query(ctx, "SELECT "+clientColumns+" FROM clients ORDER BY name, id")
	if err != nil {
		return nil, dbError(err, "list clients")
	}
	clients, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.Client, error) {
		return scanClient(row)
	})
	if err != nil {
		return nil, dbError(err, "scan clients")
	}
	return clients, nil
}

func (s *Store) RenameClient(ctx context.Context, id int, name, companyName string) error {
	tag, err := s.q.Exec(ctx,
		"UPDATE clients SET name = $2, company_name = $3, updated_at = now() WHERE id = $1",
		id, name, companyName)
	if err != nil {
		return dbError(err, "rename client")
	}
	if tag.RowsAffected() == 0 {
		return core.NotFoundError(core.ErrClientNotFound, "client", id)
	}
	return nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

func dbError(err error, op string) error {
	return ierr.WithError(err).
		WithMessage(op).
		WithHint("A database error occurred").
		Mark(ierr.ErrDatabase)
}

func pgErrorCode(err error) (code, constraint string) {
	var pgErr *pgconn.PgError
	if ierr.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName
	}
	return "", ""
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePrefix builds a LIKE pattern matching values that start with prefix.
func likePrefix(prefix string) string {
	return likeEscaper.Replace(prefix) + "%"
}
