package web

import (
	"encoding/json"
	"net/http"
	"strings"

	ierr "agency-billing/internal/errors"
)

type errorResponse struct {
	Error     string         `json:"error"`
	Code      string         `json:"code"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	writeErrorResponse(w, r, status, errorResponse{Error: message, Code: code})
}

// writeServiceError maps a core or app error to its HTTP status. Only hints and
// reportable details reach the caller; the full chain is logged for 5xx.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := ierr.HTTPStatusFromErr(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error().Err(err).
			Str("request_id", requestIDFromContext(r.Context())).
			Str("path", r.URL.Path).
			Msg("request failed")
	}

	resp := errorResponse{
		Error: ierr.DisplayMessage(err, http.StatusText(status)),
		Code:  strings.ToUpper(ierr.CodeFromErr(err)),
	}
	if status < http.StatusInternalServerError {
		if details := ierr.Details(err); len(details) > 0 {
			resp.Details = details
		}
	}
	writeErrorResponse(w, r, status, resp)
}

func writeErrorResponse(w http.ResponseWriter, r *http.Request, status int, resp errorResponse) {
	resp.RequestID = requestIDFromContext(r.Context())
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
