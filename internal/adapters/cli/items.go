package cli

import (
	"strings"

	"agency-billing/internal/app"
)

// parseItems reads "description:quantity:rate" flags. The description may
// itself contain colons; quantity and rate are taken from the right.
func parseItems(raw []string) ([]app.InvoiceLineRequest, error) {
	out := make([]app.InvoiceLineRequest, 0, len(raw))
	for _, item := range raw {
		rest, rate, ok := cutLast(item, ":")
		if !ok {
			return nil, flagError("item", item, `must look like "description:quantity:rate"`)
		}
		desc, qty, ok := cutLast(rest, ":")
		if !ok {
			return nil, flagError("item", item, `must look like "description:quantity:rate"`)
		}
		q, err := parseDecimal("item quantity", strings.TrimSpace(qty))
		if err != nil {
			return nil, err
		}
		r, err := parseDecimal("item rate", strings.TrimSpace(rate))
		if err != nil {
			return nil, err
		}
		out = append(out, app.InvoiceLineRequest{
			Description: strings.TrimSpace(desc),
			Quantity:    q,
			Rate:        r,
		})
	}
	return out, nil
}

func cutLast(s, sep string) (before, after string, found bool) {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+len(sep):], true
}
