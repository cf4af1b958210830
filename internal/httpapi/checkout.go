package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	checkoutapp "github.com/gocommerce/commerce-backend/internal/checkout/application"
	"github.com/gocommerce/commerce-backend/pkg/idempotency"
)

type CheckoutHandler struct {
	log     *slog.Logger
	service *checkoutapp.Service
	idem    *idempotency.Store
	tracer  trace.Tracer
}

func NewCheckoutHandler(log *slog.Logger, service *checkoutapp.Service, idem *idempotency.Store) *CheckoutHandler {
	return &CheckoutHandler{
		log:     log,
		service: service,
		idem:    idem,
		tracer:  otel.Tracer("checkout-http"),
	}
}

type checkoutReq struct {
	AddressID string                  `json:"address_id"`
	Lines     []checkoutapp.LineInput `json:"lines,omitempty"`
}

func (h *CheckoutHandler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/", h.checkout)
	r.Post("/direct", h.direct)

	return r
}

func (h *CheckoutHandler) checkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "Checkout")
	defer span.End()

	var req checkoutReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if !h.fresh(w, r, "checkout") {
		return
	}

	o, err := h.service.FromCart(ctx, PrincipalFrom(ctx), req.AddressID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (h *CheckoutHandler) direct(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "DirectOrder")
	defer span.End()

	var req checkoutReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if !h.fresh(w, r, "checkout-direct") {
		return
	}

	o, err := h.service.FromLines(ctx, PrincipalFrom(ctx), req.AddressID, req.Lines)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

// fresh enforces the Idempotency-Key header when present: a replayed key is
// rejected with 409 before the order is attempted.
func (h *CheckoutHandler) fresh(w http.ResponseWriter, r *http.Request, operation string) bool {
	clientKey := r.Header.Get("Idempotency-Key")
	if clientKey == "" {
		return true
	}

	p := PrincipalFrom(r.Context())
	seen, err := h.idem.Seen(r.Context(), h.idem.Key(p.ID, operation, clientKey))
	if err != nil {
		h.log.Error("idempotency check failed", "err", err)
		writeError(w, err)
		return false
	}
	if seen {
		writeJSON(w, http.StatusConflict, errorBody{Error: "duplicate request"})
		return false
	}
	return true
}
