package web

import (
	"net/http"

	"agency-billing/internal/app"
	"agency-billing/internal/core"
)

// reportSummary handles GET /api/reports/summary?from=YYYY-MM-DD&to=YYYY-MM-DD.
// When format=csv, streams the per-client breakdown as CSV instead of JSON.
func (h *Handler) reportSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := app.ReportRequest{From: q.Get("from"), To: q.Get("to")}

	data, err := h.svc.GenerateReport(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	if q.Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition",
			`attachment; filename="billing-report-`+req.From+`-to-`+req.To+`.csv"`)
		if err := core.FormatReportCSV(w, data); err != nil {
			h.logger.Error().Err(err).Msg("report csv write failed")
		}
		return
	}
	writeJSON(w, http.StatusOK, data)
}
