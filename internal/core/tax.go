package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// moneyPlaces is the minor-unit precision of the reporting currency.
const moneyPlaces = 2

// Stored precisions; inputs finer than these are rejected, not rounded.
const (
	ratePlaces     = 2
	quantityPlaces = 4
)

var (
	hundred = decimal.NewFromInt(100)
	two     = decimal.NewFromInt(2)
)

// MaxTaxRate caps a GST rate in percent.
var MaxTaxRate = hundred

// fitsScale reports whether d has no significant digits beyond places.
func fitsScale(d decimal.Decimal, places int32) bool {
	return d.Equal(d.Truncate(places))
}

// validTaxRate reports whether rate is within [0, MaxTaxRate] at rate precision.
func validTaxRate(rate decimal.Decimal) bool {
	return !rate.IsNegative() && rate.LessThanOrEqual(MaxTaxRate) && fitsScale(rate, ratePlaces)
}

// RoundMoney rounds to the currency's minor unit.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyPlaces)
}

// ComputeTax splits GST on subtotal at ratePercent.
//
// Interstate supplies carry only IGST; intrastate supplies split the same tax
// equally into CGST and SGST. Each stored figure is rounded on its own from the
// full-precision amount, so CGST+SGST may differ from TotalTax by one minor unit.
func ComputeTax(subtotal, ratePercent decimal.Decimal, interState bool) TaxBreakdown {
	if ratePercent.IsZero() || subtotal.IsZero() {
		return TaxBreakdown{
			CentralTax:    decimal.Zero,
			StateTax:      decimal.Zero,
			IntegratedTax: decimal.Zero,
			TotalTax:      decimal.Zero,
		}
	}

	tax := subtotal.Mul(ratePercent).Div(hundred)
	if interState {
		return TaxBreakdown{
			CentralTax:    decimal.Zero,
			StateTax:      decimal.Zero,
			IntegratedTax: RoundMoney(tax),
			TotalTax:      RoundMoney(tax),
		}
	}

	half := RoundMoney(tax.Div(two))
	return TaxBreakdown{
		CentralTax:    half,
		StateTax:      half,
		IntegratedTax: decimal.Zero,
		TotalTax:      RoundMoney(tax),
	}
}

// IsInterState reports whether a supply crosses state lines.
func IsInterState(clientState, businessState string) bool {
	return !strings.EqualFold(strings.TrimSpace(clientState), strings.TrimSpace(businessState))
}
