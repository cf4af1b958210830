package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	reviewapp "github.com/gocommerce/commerce-backend/internal/review/application"
)

type ReviewHandler struct {
	log     *slog.Logger
	service *reviewapp.Service
	tracer  trace.Tracer
}

func NewReviewHandler(log *slog.Logger, service *reviewapp.Service) *ReviewHandler {
	return &ReviewHandler{
		log:     log,
		service: service,
		tracer:  otel.Tracer("review-http"),
	}
}

func (h *ReviewHandler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.listMine)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)

	return r
}

func (h *ReviewHandler) listMine(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ListMyReviews")
	defer span.End()

	revs, err := h.service.ListMine(ctx, PrincipalFrom(ctx))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, revs)
}

type updateReviewReq struct {
	Content *string `json:"content"`
	Rating  *int    `json:"rating"`
}

func (h *ReviewHandler) update(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UpdateReview")
	defer span.End()

	var req updateReviewReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	rev, err := h.service.Update(ctx, PrincipalFrom(ctx), chi.URLParam(r, "id"), reviewapp.UpdateParams{
		Content: req.Content,
		Rating:  req.Rating,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rev)
}

func (h *ReviewHandler) delete(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "DeleteReview")
	defer span.End()

	if err := h.service.Delete(ctx, PrincipalFrom(ctx), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
