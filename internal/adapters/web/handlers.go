package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"agency-billing/internal/app"
	ierr "agency-billing/internal/errors"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Config carries the adapter settings read from the environment.
type Config struct {
	AllowedOrigins []string
	JWTSecret      string
	// MaxBodyBytes caps JSON request bodies; zero means 1 MB.
	MaxBodyBytes int64
}

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc       app.ApplicationService
	router    chi.Router
	jwtSecret string
	logger    zerolog.Logger
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, cfg Config, logger zerolog.Logger) http.Handler {
	h := &Handler{
		svc:       svc,
		jwtSecret: cfg.JWTSecret,
		logger:    logger.With().Str("component", "http").Logger(),
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 1 << 20
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(h.logger))
	r.Use(Recoverer(h.logger))
	r.Use(CORS(cfg.AllowedOrigins))

	// ── Public ───────────────────────────────────────────────────────────────
	r.Get("/api/health", h.health)
	r.Get("/api/schema/{name}", h.schema)

	// ── Protected API routes (return 401 JSON if unauthenticated) ────────────
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Use(RequestBodyLimit(maxBody))

		r.Get("/api/profile", h.getProfile)
		r.Put("/api/profile", h.updateProfile)

		r.Get("/api/clients", h.listClients)
		r.Post("/api/clients", h.createClient)
		r.Get("/api/clients/{id}", h.getClient)
		r.Patch("/api/clients/{id}", h.renameClient)

		r.Get("/api/subscriptions", h.listSubscriptions)
		r.Post("/api/subscriptions", h.createSubscription)
		r.Post("/api/subscriptions/generate-due", h.generateDue)
		r.Get("/api/subscriptions/{id}", h.getSubscription)
		r.Post("/api/subscriptions/{id}/generate", h.generateSubscriptionInvoice)

		r.Get("/api/invoices", h.listInvoices)
		r.Post("/api/invoices", h.createInvoice)
		r.Post("/api/invoices/refresh", h.refreshInvoices)
		r.Get("/api/invoices/{id}", h.getInvoice)
		r.Post("/api/invoices/{id}/finalize", h.finalizeInvoice)
		r.Get("/api/invoices/{id}/payments", h.listPayments)
		r.Post("/api/invoices/{id}/payments", h.recordPayment)

		r.Delete("/api/payments/{id}", h.deletePayment)

		r.Get("/api/reports/summary", h.reportSummary)
	})

	h.router = r
	return r
}

// health reports liveness and whether the business profile is configured.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status     string `json:"status"`
		Configured bool   `json:"configured"`
	}
	_, err := h.svc.GetProfile(r.Context())
	writeJSON(w, http.StatusOK, response{Status: "ok", Configured: err == nil})
}

// idParam parses a positive integer URL parameter.
func idParam(r *http.Request, name string) (int, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, ierr.NewErrorf("invalid %s %q", name, raw).
			WithHintf("%s must be a positive integer", name).
			WithReportableDetails(map[string]any{name: raw}).
			Mark(ierr.ErrValidation)
	}
	return id, nil
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
