package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	orderapp "github.com/gocommerce/commerce-backend/internal/order/application"
	"github.com/gocommerce/commerce-backend/internal/order/domain"
	"github.com/gocommerce/commerce-backend/pkg/tracing"
)

type OrderHandler struct {
	log     *slog.Logger
	service *orderapp.Service
	tracer  trace.Tracer
}

func NewOrderHandler(log *slog.Logger, service *orderapp.Service) *OrderHandler {
	return &OrderHandler{
		log:     log,
		service: service,
		tracer:  otel.Tracer("order-http"),
	}
}

func (h *OrderHandler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.listMine)
	r.Get("/all", h.listAll)
	r.Get("/{id}", h.get)
	r.Post("/{id}/status", h.setStatus)

	return r
}

func (h *OrderHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetOrder")
	defer span.End()

	o, err := h.service.Get(ctx, PrincipalFrom(ctx), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) listMine(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ListMyOrders")
	defer span.End()

	limit, offset := pageParams(r)
	orders, err := h.service.ListMine(ctx, PrincipalFrom(ctx), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) listAll(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ListAllOrders")
	defer span.End()

	limit, offset := pageParams(r)
	orders, err := h.service.ListAll(ctx, PrincipalFrom(ctx), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

type setStatusReq struct {
	Status string `json:"status"`
}

func (h *OrderHandler) setStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "SetOrderStatus")
	defer span.End()

	var req setStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	traceparent := r.Header.Get("traceparent")
	if traceparent == "" {
		traceparent = tracing.Traceparent(ctx)
	}

	o, err := h.service.SetStatus(ctx, PrincipalFrom(ctx), chi.URLParam(r, "id"), domain.OrderStatus(req.Status), traceparent)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func pageParams(r *http.Request) (limit, offset int) {
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	return limit, offset
}
