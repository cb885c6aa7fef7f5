package core_test

import (
	"testing"

	"agency-billing/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeTax(t *testing.T) {
	tests := []struct {
		name       string
		subtotal   string
		rate       string
		interState bool
		cgst       string
		sgst       string
		igst       string
		total      string
	}{
		{"intrastate splits evenly", "10000", "18", false, "900", "900", "0", "1800"},
		{"interstate is all IGST", "10000", "18", true, "0", "0", "1800", "1800"},
		{"zero rate", "10000", "0", false, "0", "0", "0", "0"},
		{"zero subtotal", "0", "18", true, "0", "0", "0", "0"},
		{"halves rounded independently", "100.05", "18", false, "9.00", "9.00", "0", "18.01"},
		{"fractional rate", "999.99", "5", true, "0", "0", "50.00", "50.00"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := core.ComputeTax(d(tc.subtotal), d(tc.rate), tc.interState)
			assert.True(t, d(tc.cgst).Equal(got.CentralTax), "cgst: got %s", got.CentralTax)
			assert.True(t, d(tc.sgst).Equal(got.StateTax), "sgst: got %s", got.StateTax)
			assert.True(t, d(tc.igst).Equal(got.IntegratedTax), "igst: got %s", got.IntegratedTax)
			assert.True(t, d(tc.total).Equal(got.TotalTax), "total: got %s", got.TotalTax)
		})
	}
}

func TestComputeTax_TotalIndependentOfJurisdiction(t *testing.T) {
	for _, sub := range []string{"1", "33.33", "100.05", "12345.67"} {
		for _, rate := range []string{"5", "12", "18", "28"} {
			intra := core.ComputeTax(d(sub), d(rate), false)
			inter := core.ComputeTax(d(sub), d(rate), true)
			assert.True(t, intra.TotalTax.Equal(inter.TotalTax), "%s @ %s%%", sub, rate)

			// halves may drift from the total by at most one minor unit
			drift := intra.CentralTax.Add(intra.StateTax).Sub(intra.TotalTax).Abs()
			assert.True(t, drift.LessThanOrEqual(d("0.01")), "%s @ %s%% drift %s", sub, rate, drift)
		}
	}
}

func TestIsInterState(t *testing.T) {
	assert.False(t, core.IsInterState("KA", "KA"))
	assert.False(t, core.IsInterState(" ka ", "KA"))
	assert.True(t, core.IsInterState("MH", "KA"))
	assert.True(t, core.IsInterState("", "KA"))
}
