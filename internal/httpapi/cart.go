package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	cartapp "github.com/gocommerce/commerce-backend/internal/cart/application"
)

type CartHandler struct {
	log     *slog.Logger
	service *cartapp.Service
	tracer  trace.Tracer
}

func NewCartHandler(log *slog.Logger, service *cartapp.Service) *CartHandler {
	return &CartHandler{
		log:     log,
		service: service,
		tracer:  otel.Tracer("cart-http"),
	}
}

func (h *CartHandler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.view)
	r.Delete("/", h.clear)
	r.Post("/lines", h.addLine)
	r.Patch("/lines/{id}", h.updateLine)
	r.Delete("/lines/{id}", h.removeLine)

	return r
}

func (h *CartHandler) view(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ViewCart")
	defer span.End()

	view, err := h.service.View(ctx, PrincipalFrom(ctx))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type addLineReq struct {
	ItemID string `json:"item_id"`
	Qty    int    `json:"qty"`
}

func (h *CartHandler) addLine(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "AddCartLine")
	defer span.End()

	var req addLineReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	line, err := h.service.AddLine(ctx, PrincipalFrom(ctx), req.ItemID, req.Qty)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, line)
}

type updateLineReq struct {
	Qty int `json:"qty"`
}

func (h *CartHandler) updateLine(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UpdateCartLine")
	defer span.End()

	var req updateLineReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	line, err := h.service.UpdateLine(ctx, PrincipalFrom(ctx), chi.URLParam(r, "id"), req.Qty)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, line)
}

func (h *CartHandler) removeLine(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RemoveCartLine")
	defer span.End()

	if err := h.service.RemoveLine(ctx, PrincipalFrom(ctx), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) clear(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ClearCart")
	defer span.End()

	if err := h.service.Clear(ctx, PrincipalFrom(ctx)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
