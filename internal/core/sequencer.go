package core

import (
	"fmt"
	"strconv"
	"strings"
)

// NextInvoiceNumber returns the number following last in the (prefix, year) scope,
// formatted as {prefix}/{year}/{seq:04d}.
//
// An empty last, a last from another prefix or year, or a malformed trailing
// sequence all restart numbering at 0001. Prefix changes and year rollover
// therefore both reset the sequence.
func NextInvoiceNumber(last, prefix string, year int) string {
	scope := InvoiceNumberScope(prefix, year)
	seq := 1
	if last != "" && strings.HasPrefix(last, scope) {
		tail := last[strings.LastIndex(last, "/")+1:]
		if n, err := strconv.Atoi(tail); err == nil && n >= 0 {
			seq = n + 1
		}
	}
	return fmt.Sprintf("%s%04d", scope, seq)
}

// InvoiceNumberScope is the "{prefix}/{year}/" stem shared by every number in a scope.
func InvoiceNumberScope(prefix string, year int) string {
	return fmt.Sprintf("%s/%d/", prefix, year)
}
