package web

import (
	"net/http"
	"reflect"

	"agency-billing/internal/app"

	"github.com/go-chi/chi/v5"
	"github.com/invopop/jsonschema"
	"github.com/shopspring/decimal"
)

// requestSchemas lists the request bodies published at /api/schema/{name}.
var requestSchemas = map[string]any{
	"profile":      &app.UpdateProfileRequest{},
	"client":       &app.CreateClientRequest{},
	"subscription": &app.CreateSubscriptionRequest{},
	"invoice":      &app.CreateInvoiceRequest{},
	"payment":      &app.RecordPaymentRequest{},
}

// RequestSchema reflects the JSON schema of a named request type.
func RequestSchema(name string) (*jsonschema.Schema, bool) {
	v, ok := requestSchemas[name]
	if !ok {
		return nil, false
	}
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		Mapper:                    mapDecimal,
	}
	return reflector.Reflect(v), true
}

// mapDecimal publishes money and quantities as decimal strings.
func mapDecimal(t reflect.Type) *jsonschema.Schema {
	if t == reflect.TypeOf(decimal.Decimal{}) {
		return &jsonschema.Schema{Type: "string", Pattern: `^-?[0-9]+(\.[0-9]+)?$`}
	}
	return nil
}

// schema serves the JSON schema of a request body so form builders and
// scripted clients can validate before submitting.
func (h *Handler) schema(w http.ResponseWriter, r *http.Request) {
	s, ok := RequestSchema(chi.URLParam(r, "name"))
	if !ok {
		writeError(w, r, "unknown schema", "NOT_FOUND", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, s)
}
