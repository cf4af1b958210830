package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	addressapp "github.com/gocommerce/commerce-backend/internal/address/application"
)

type AddressHandler struct {
	log     *slog.Logger
	service *addressapp.Service
	tracer  trace.Tracer
}

func NewAddressHandler(log *slog.Logger, service *addressapp.Service) *AddressHandler {
	return &AddressHandler{
		log:     log,
		service: service,
		tracer:  otel.Tracer("address-http"),
	}
}

func (h *AddressHandler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)

	return r
}

type addressReq struct {
	City         *string `json:"city"`
	District     *string `json:"district"`
	Neighborhood *string `json:"neighborhood"`
	FullAddress  *string `json:"full_address"`
	PostalCode   *string `json:"postal_code"`
}

func (h *AddressHandler) create(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateAddress")
	defer span.End()

	var req addressReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	params := addressapp.CreateParams{}
	if req.City != nil {
		params.City = *req.City
	}
	if req.District != nil {
		params.District = *req.District
	}
	if req.Neighborhood != nil {
		params.Neighborhood = *req.Neighborhood
	}
	if req.FullAddress != nil {
		params.FullAddress = *req.FullAddress
	}
	if req.PostalCode != nil {
		params.PostalCode = *req.PostalCode
	}

	a, err := h.service.Create(ctx, PrincipalFrom(ctx), params)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (h *AddressHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetAddress")
	defer span.End()

	a, err := h.service.Get(ctx, PrincipalFrom(ctx), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *AddressHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ListAddresses")
	defer span.End()

	addrs, err := h.service.ListMine(ctx, PrincipalFrom(ctx))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, addrs)
}

func (h *AddressHandler) update(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UpdateAddress")
	defer span.End()

	var req addressReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	a, err := h.service.Update(ctx, PrincipalFrom(ctx), chi.URLParam(r, "id"), addressapp.UpdateParams{
		City:         req.City,
		District:     req.District,
		Neighborhood: req.Neighborhood,
		FullAddress:  req.FullAddress,
		PostalCode:   req.PostalCode,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *AddressHandler) delete(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "DeleteAddress")
	defer span.End()

	if err := h.service.Delete(ctx, PrincipalFrom(ctx), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
