package cli

import (
	"strconv"

	"agency-billing/internal/app"
	"agency-billing/internal/core"
	ierr "agency-billing/internal/errors"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// ── Profile ──────────────────────────────────────────────────────────────────

func newProfileCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{Use: "profile", Short: "Show or set the business profile"}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the business profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := rt.service(cmd.Context())
			if err != nil {
				return err
			}
			p, err := svc.GetProfile(cmd.Context())
			if err != nil {
				return err
			}
			return rt.printJSON(p)
		},
	}

	var req app.UpdateProfileRequest
	var taxRate string
	set := &cobra.Command{
		Use:   "set",
		Short: "Create or replace the business profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rate, err := parseDecimal("tax-rate", taxRate)
			if err != nil {
				return err
			}
			req.DefaultTaxRate = rate
			svc, err := rt.service(cmd.Context())
			if err != nil {
				return err
			}
			p, err := svc.UpdateProfile(cmd.Context(), req)
			if err != nil {
				return err
			}
			return rt.printJSON(p)
		},
	}
	f := set.Flags()
	f.StringVar(&req.Name, "name", "", "business name")
	f.StringVar(&req.AddressLine1, "address1", "", "address line 1")
	f.StringVar(&req.AddressLine2, "address2", "", "address line 2")
	f.StringVar(&req.City, "city", "", "city")
	f.StringVar(&req.StateCode, "state", "", "state code (decides CGST+SGST vs IGST)")
	f.StringVar(&req.PostalCode, "postal-code", "", "postal code")
	f.StringVar(&req.TaxRegistrationNumber, "gstin", "", "tax registration number")
	f.StringVar(&req.BankName, "bank", "", "bank name")
	f.StringVar(&req.BankAccountName, "account-name", "", "bank account name")
	f.StringVar(&req.BankAccountNumber, "account-number", "", "bank account number")
	f.StringVar(&req.BankIFSC, "ifsc", "", "bank IFSC")
	f.StringVar(&req.InvoicePrefix, "prefix", "INV", "invoice number prefix")
	f.StringVar(&taxRate, "tax-rate", "18", "default GST rate in percent")
	_ = set.MarkFlagRequired("name")
	_ = set.MarkFlagRequired("state")

	cmd.AddCommand(show, set)
	return cmd
}

// ── Clients ──────────────────────────────────────────────────────────────────

func newClientCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{Use: "client", Short: "Manage clients"}

	var req app.CreateClientRequest
	add := &cobra.Command{
		Use:   "add",
		Short: "Register a client",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := rt.service(cmd.Context())
			if err != nil {
				return err
			}
			c, err := svc.CreateClient(cmd.Context(), req)
			if err != nil {
				return err
			}
			return rt.printJSON(c)
		},
	}
	f := add.Flags()
	f.StringVar(&req.Name, "name", "", "contact name")
	f.StringVar(&req.CompanyName, "company", "", "company name")
	f.StringVar(&req.AddressLine1, "address1", "", "address line 1")
	f.StringVar(&req.AddressLine2, "address2", "", "address line 2")
	f.StringVar(&req.City, "city", "", "city")
	f.StringVar(&req.StateCode, "state", "", "state code")
	f.StringVar(&req.PostalCode, "postal-code", "", "postal code")
	f.StringVar(&req.Email, "email", "", "email")
	f.StringVar(&req.Phone, "phone", "", "phone")
	f.StringVar(&req.TaxID, "gstin", "", "client GSTIN")

	list := &cobra.Command{
		Use:   "list",
		Short: "List clients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := rt.service(cmd.Context())
			if err != nil {
				return err
			}
			res, err := svc.ListClients(cmd.Context())
			if err != nil {
				return err
			}
			return rt.printJSON(res)
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}

// ── Subscriptions ────────────────────────────────────────────────────────────

func newSubscriptionCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{Use: "subscription", Aliases: []string{"sub"}, Short: "Manage recurring subscriptions"}

	var req app.CreateSubscriptionRequest
	var rate string
	add := &cobra.Command{
		Use:   "add",
		Short: "Create a monthly subscription",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := parseDecimal("rate", rate)
			if err != nil {
				return err
			}
			req.MonthlyRate = r
			svc, err := rt.service(cmd.Context())
			if err != nil {
				return err
			}
			sub, err := svc.CreateSubscription(cmd.Context(), req)
			if err != nil {
				return err
			}
			return rt.printJSON(sub)
		},
	}
	add.Flags().IntVar(&req.ClientID, "client", 0, "client ID")
	add.Flags().StringVar(&req.ServiceName, "service", "", "service name printed on invoices")
	add.Flags().StringVar(&rate, "rate", "", "monthly rate")
	add.Flags().IntVar(&req.BillingCycleDay, "cycle-day", 1, "billing cycle day (1-31)")

	var activeOnly bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List subscriptions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := rt.service(cmd.Context())
			if err != nil {
				return err
			}
			res, err := svc.ListSubscriptions(cmd.Context(), activeOnly)
			if err != nil {
				return err
			}
			return rt.printJSON(res)
		},
	}
	list.Flags().BoolVar(&activeOnly, "active", false, "only active subscriptions")

	generate := &cobra.Command{
		Use:   "generate <subscription-id>",
		Short: "Invoice the subscription's current billing cycle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("subscription-id", args[0])
			if err != nil {
				return err
			}
			svc, err := rt.service(cmd.Context())
			if err != nil {
				return err
			}
			res, err := svc.GenerateSubscriptionInvoice(cmd.Context(), id)
			if err != nil {
				return err
			}
			return rt.printJSON(res)
		},
	}

	generateDue := &cobra.Command{
		Use:   "generate-due",
		Short: "Invoice every subscription whose current cycle is still open",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := rt.service(cmd.Context())
			if err != nil {
				return err
			}
			res, err := svc.GenerateDueInvoices(cmd.Context())
			if err != nil {
				return err
			}
			return rt.printJSON(res)
		},
	}

	cmd.AddCommand(add, list, generate, generateDue)
	return cmd
}

// ── Invoices ─────────────────────────────────────────────────────────────────

func newInvoiceCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{Use: "invoice", Aliases: []string{"inv"}, Short: "Create and inspect invoices"}

	var (
		req        app.CreateInvoiceRequest
		items      []string
		taxRate    string
		interState string
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an invoice with the next sequential number",
		Example: `  billing invoice create --client 3 --item "Website maintenance:1:25000" --item "Hosting:12:500"
  billing invoice create --client 3 --item "Audit:1:10000" --tax-rate 12 --finalize`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lines, err := parseItems(items)
			if err != nil {
				return err
			}
			req.Items = lines
			if taxRate != "" {
				r, err := parseDecimal("tax-rate", taxRate)
				if err != nil {
					return err
				}
				req.TaxRate = &r
			}
			if interState != "" {
				b, err := strconv.ParseBool(interState)
				if err != nil {
					return flagError("inter-state", interState, "must be true or false")
				}
				req.InterState = &b
			}
			svc, err := rt.service(cmd.Context())
			if err != nil {
				return err
			}
			res, err := svc.CreateInvoice(cmd.Context(), req)
			if err != nil {
				return err
			}
			return rt.printJSON(res)
		},
	}
	f := create.Flags()
	f.IntVar(&req.ClientID, "client", 0, "client ID")
	f.StringArrayVar(&items, "item", nil, `line item as "description:quantity:rate" (repeatable)`)
	f.StringVar(&req.IssueDate, "issue", "", "issue date YYYY-MM-DD (default today)")
	f.StringVar(&req.DueDate, "due", "", "due date YYYY-MM-DD (default issue + INVOICE_DUE_DAYS)")
	f.StringVar(&taxRate, "tax-rate", "", "GST rate in percent (default from profile)")
	f.StringVar(&interState, "inter-state", "", "force IGST (true) or CGST+SGST (false)")
	f.StringVar(&req.Notes, "notes", "", "notes printed on the invoice")
	f.BoolVar(&req.Finalize, "finalize", false, "issue immediately instead of saving a draft")

	show := &cobra.Command{
		Use:   "show <invoice-id>",
		Short: "Show an invoice with its payments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("invoice-id", args[0])
			if err != nil {
				return err
			}
			svc, err := rt.service(cmd.Context())
			if err != nil {
				return err
			}
			res, err := svc.GetInvoice(cmd.Context(), id)
			if err != nil {
				return err
			}
			return rt.printJSON(res)
		},
	}

	var filter app.ListInvoicesRequest
	list := &cobra.Command{
		Use:   "list",
		Short: "List invoices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := rt.service(cmd.Context())
			if err != nil {
				return err
			}
			res, err := svc.ListInvoices(cmd.Context(), filter)
			if err != nil {
				return err
			}
			return rt.printJSON(res)
		},
	}
	lf := list.Flags()
	lf.IntVar(&filter.ClientID, "client", 0, "filter by client ID")
	lf.IntVar(&filter.SubscriptionID, "subscription", 0, "filter by subscription ID")
	lf.StringVar(&filter.Status, "status", "", "filter by status")
	lf.StringVar(&filter.From, "from", "", "issued on or after YYYY-MM-DD")
	lf.StringVar(&filter.To, "to", "", "issued on or before YYYY-MM-DD")
	lf.BoolVar(&filter.UnpaidOnly, "unpaid", false, "exclude paid invoices")

	finalize := &cobra.Command{
		Use:   "finalize <invoice-id>",
		Short: "Issue a draft invoice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("invoice-id", args[0])
			if err != nil {
				return err
			}
			svc, err := rt.service(cmd.Context())
			if err != nil {
				return err
			}
			res, err := svc.FinalizeInvoice(cmd.Context(), id)
			if err != nil {
				return err
			}
			return rt.printJSON(res)
		},
	}

	refresh := &cobra.Command{
		Use:   "refresh",
		Short: "Re-evaluate the status of every unpaid invoice",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := rt.service(cmd.Context())
			if err != nil {
				return err
			}
			res, err := svc.RefreshInvoiceStatuses(cmd.Context())
			if err != nil {
				return err
			}
			return rt.printJSON(res)
		},
	}

	cmd.AddCommand(create, show, list, finalize, refresh)
	return cmd
}

// ── Payments ─────────────────────────────────────────────────────────────────

func newPaymentCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{Use: "payment", Aliases: []string{"pay"}, Short: "Record and manage payments"}

	var (
		req    app.RecordPaymentRequest
		amount string
	)
	record := &cobra.Command{
		Use:   "record <invoice-id>",
		Short: "Record a payment against an invoice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("invoice-id", args[0])
			if err != nil {
				return err
			}
			amt, err := parseDecimal("amount", amount)
			if err != nil {
				return err
			}
			req.InvoiceID, req.Amount = id, amt
			svc, err := rt.service(cmd.Context())
			if err != nil {
				return err
			}
			res, err := svc.RecordPayment(cmd.Context(), req)
			if err != nil {
				return err
			}
			return rt.printJSON(res)
		},
	}
	record.Flags().StringVar(&amount, "amount", "", "amount received")
	record.Flags().StringVar(&req.PaymentDate, "date", "", "payment date YYYY-MM-DD (default today)")
	record.Flags().StringVar(&req.Method, "method", string(core.PaymentMethodBankTransfer), "cash, bank_transfer, upi, card, cheque or other")
	record.Flags().StringVar(&req.Reference, "reference", "", "transaction reference")
	_ = record.MarkFlagRequired("amount")

	del := &cobra.Command{
		Use:   "delete <payment-id>",
		Short: "Delete a payment and re-evaluate its invoice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("payment-id", args[0])
			if err != nil {
				return err
			}
			svc, err := rt.service(cmd.Context())
			if err != nil {
				return err
			}
			res, err := svc.DeletePayment(cmd.Context(), id)
			if err != nil {
				return err
			}
			return rt.printJSON(res)
		},
	}

	list := &cobra.Command{
		Use:   "list <invoice-id>",
		Short: "List an invoice's payments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("invoice-id", args[0])
			if err != nil {
				return err
			}
			svc, err := rt.service(cmd.Context())
			if err != nil {
				return err
			}
			res, err := svc.ListPayments(cmd.Context(), id)
			if err != nil {
				return err
			}
			return rt.printJSON(res)
		},
	}

	cmd.AddCommand(record, del, list)
	return cmd
}

// ── Reports ──────────────────────────────────────────────────────────────────

func newReportCommand(rt *runtime) *cobra.Command {
	var (
		req   app.ReportRequest
		asCSV bool
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize invoicing and collections over a date window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := rt.service(cmd.Context())
			if err != nil {
				return err
			}
			data, err := svc.GenerateReport(cmd.Context(), req)
			if err != nil {
				return err
			}
			if asCSV {
				return core.FormatReportCSV(rt.out, data)
			}
			return rt.printJSON(data)
		},
	}
	cmd.Flags().StringVar(&req.From, "from", "", "window start YYYY-MM-DD (inclusive)")
	cmd.Flags().StringVar(&req.To, "to", "", "window end YYYY-MM-DD (inclusive)")
	cmd.Flags().BoolVar(&asCSV, "csv", false, "print the per-client breakdown as CSV")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

// ── flag parsing ─────────────────────────────────────────────────────────────

func parseID(name, raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, flagError(name, raw, "must be a positive integer")
	}
	return id, nil
}

func parseDecimal(name, raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, flagError(name, raw, "must be a decimal number")
	}
	return d, nil
}

func flagError(name, raw, msg string) error {
	return ierr.NewErrorf("invalid --%s %q: %s", name, raw, msg).
		WithHintf("--%s %s", name, msg).
		Mark(ierr.ErrValidation)
}
