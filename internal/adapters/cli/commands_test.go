package cli_test

import (
	"bytes"
	"encoding/json"
	"strconv"
	"testing"

	"agency-billing/internal/adapters/cli"
	"agency-billing/internal/app"
	"agency-billing/internal/core"
	"agency-billing/internal/db/memory"
	ierr "agency-billing/internal/errors"
	"agency-billing/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	svc app.ApplicationService
}

func newHarness() *harness {
	return &harness{svc: app.NewAppService(memory.NewStore(), core.BillingConfig{InvoiceDueDays: 15}, logger.Nop())}
}

func (h *harness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := cli.NewRootCommand(cli.WithService(h.svc), cli.WithOutput(&out))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func runJSON[T any](t *testing.T, h *harness, args ...string) T {
	t.Helper()
	out, err := h.run(t, args...)
	require.NoError(t, err)
	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}

func TestCLI_InvoiceWorkflow(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	h := newHarness()

	profile := runJSON[core.BusinessProfile](t, h, "profile", "set", "--name", "Acme Digital", "--state", "KA", "--prefix", "AD")
	assert.Equal(t, "AD", profile.InvoicePrefix)
	assert.Equal(t, "18", profile.DefaultTaxRate.String())

	client := runJSON[core.Client](t, h, "client", "add", "--name", "Meera", "--state", "MH")
	clientID := strconv.Itoa(client.ID)

	created := runJSON[app.InvoiceResult](t, h, "invoice", "create",
		"--client", clientID,
		"--issue", "2024-03-01",
		"--item", "Landing page:1:20000",
		"--item", "Copy:4:1500",
		"--finalize",
	)
	assert.Equal(t, "AD/2024/0001", created.Invoice.Number)
	assert.True(t, created.Invoice.InterState)
	assert.Equal(t, "30680", created.Invoice.GrandTotal.String())

	invoiceID := strconv.Itoa(created.Invoice.ID)
	paid := runJSON[app.PaymentResult](t, h, "payment", "record", invoiceID, "--amount", "30680", "--date", "2024-03-02", "--method", "upi")
	assert.Equal(t, core.InvoiceStatusPaid, paid.Invoice.Invoice.Status)

	list := runJSON[app.InvoiceListResult](t, h, "invoice", "list", "--client", clientID)
	require.Len(t, list.Invoices, 1)

	out, err := h.run(t, "report", "--from", "2024-03-01", "--to", "2024-03-31", "--csv")
	require.NoError(t, err)
	assert.Contains(t, out, "Client ID,Client,Invoices,Invoiced,Collected\n")
	assert.Contains(t, out, ",Total,1,30680.00,30680.00\n")
}

func TestCLI_Errors(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	h := newHarness()

	_, err := h.run(t, "invoice", "show", "abc")
	require.Error(t, err)
	assert.True(t, ierr.IsValidation(err))

	_, err = h.run(t, "invoice", "show", "7")
	require.Error(t, err)
	assert.True(t, ierr.IsNotFound(err))

	_, err = h.run(t, "invoice", "create", "--client", "1", "--item", "broken")
	require.Error(t, err)
	assert.True(t, ierr.IsValidation(err))

	_, err = h.run(t, "profile", "show")
	require.Error(t, err)
	assert.True(t, ierr.IsConfiguration(err))

	_, err = h.run(t, "report", "--from", "2024-03-01")
	assert.Error(t, err, "--to is required")
}

func TestCLI_SeedIsIdempotent(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	h := newHarness()

	first := runJSON[map[string]any](t, h, "seed")
	assert.Equal(t, true, first["profile_created"])
	assert.Equal(t, float64(2), first["clients_created"])

	second := runJSON[map[string]any](t, h, "seed")
	assert.Equal(t, false, second["profile_created"])
	assert.Equal(t, float64(0), second["clients_created"])

	clients := runJSON[app.ClientListResult](t, h, "client", "list")
	assert.Len(t, clients.Clients, 2)
}
