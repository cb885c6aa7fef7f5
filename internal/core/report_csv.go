package core

import (
	"encoding/csv"
	"io"
	"strconv"
)

// FormatReportCSV writes the per-client breakdown followed by a totals row.
func FormatReportCSV(w io.Writer, data *ReportData) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"Client ID", "Client", "Invoices", "Invoiced", "Collected"})
	for _, c := range data.Clients {
		_ = cw.Write([]string{
			strconv.Itoa(c.ClientID),
			csvSafe(c.ClientName),
			strconv.Itoa(c.InvoiceCount),
			c.Invoiced.StringFixed(2),
			c.Collected.StringFixed(2),
		})
	}
	_ = cw.Write([]string{
		"",
		"Total",
		strconv.Itoa(data.InvoiceCount),
		data.TotalInvoiced.StringFixed(2),
		data.TotalCollected.StringFixed(2),
	})
	cw.Flush()
	return cw.Error()
}

// csvSafe prevents CSV formula injection by prefixing cells that begin with a
// formula-triggering character with a single quote.
func csvSafe(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}
