package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	catalogapp "github.com/gocommerce/commerce-backend/internal/catalog/application"
	reviewapp "github.com/gocommerce/commerce-backend/internal/review/application"
)

type CatalogHandler struct {
	log     *slog.Logger
	service *catalogapp.Service
	reviews *reviewapp.Service
	tracer  trace.Tracer
}

func NewCatalogHandler(log *slog.Logger, service *catalogapp.Service, reviews *reviewapp.Service) *CatalogHandler {
	return &CatalogHandler{
		log:     log,
		service: service,
		reviews: reviews,
		tracer:  otel.Tracer("catalog-http"),
	}
}

func (h *CatalogHandler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/products", h.listProducts)
	r.Post("/products", h.createProduct)
	r.Get("/products/slug/{slug}", h.getProductBySlug)
	r.Get("/products/{id}", h.getProduct)
	r.Patch("/products/{id}", h.updateProduct)
	r.Delete("/products/{id}", h.deleteProduct)
	r.Get("/products/{id}/items", h.listItems)
	r.Get("/products/{id}/reviews", h.listReviews)
	r.Post("/products/{id}/reviews", h.createReview)
	r.Get("/products/{id}/rating", h.productRating)
	r.Post("/items", h.createItem)
	r.Get("/items/{id}", h.getItem)
	r.Get("/items/{id}/options", h.itemOptions)
	r.Patch("/items/{id}", h.updateItem)
	r.Delete("/items/{id}", h.deleteItem)
	r.Get("/categories", h.listCategories)
	r.Post("/categories", h.createCategory)
	r.Get("/categories/{id}", h.getCategory)
	r.Patch("/categories/{id}", h.updateCategory)
	r.Delete("/categories/{id}", h.deleteCategory)

	return r
}

func (h *CatalogHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ListProducts")
	defer span.End()

	q := r.URL.Query()
	f := catalogapp.ProductFilter{
		NameContains: q.Get("name"),
		CategorySlug: q.Get("category"),
	}
	f.Limit, _ = strconv.Atoi(q.Get("limit"))
	f.Offset, _ = strconv.Atoi(q.Get("offset"))
	if v := q.Get("active"); v != "" {
		active := v == "true"
		f.Active = &active
	}

	products, err := h.service.ListProducts(ctx, PrincipalFrom(ctx), f)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *CatalogHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetProduct")
	defer span.End()

	p, err := h.service.GetProduct(ctx, PrincipalFrom(ctx), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *CatalogHandler) getProductBySlug(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetProductBySlug")
	defer span.End()

	p, err := h.service.GetProductBySlug(ctx, PrincipalFrom(ctx), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type createProductReq struct {
	CategoryID  string `json:"category_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Slug        string `json:"slug"`
}

func (h *CatalogHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateProduct")
	defer span.End()

	var req createProductReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	p, err := h.service.CreateProduct(ctx, PrincipalFrom(ctx), catalogapp.CreateProductParams{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		Slug:        req.Slug,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

type updateProductReq struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Slug        *string `json:"slug"`
	CategoryID  *string `json:"category_id"`
	Active      *bool   `json:"active"`
}

func (h *CatalogHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UpdateProduct")
	defer span.End()

	var req updateProductReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	p, err := h.service.UpdateProduct(ctx, PrincipalFrom(ctx), chi.URLParam(r, "id"), catalogapp.UpdateProductParams{
		Name:        req.Name,
		Description: req.Description,
		Slug:        req.Slug,
		CategoryID:  req.CategoryID,
		Active:      req.Active,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *CatalogHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "DeleteProduct")
	defer span.End()

	if err := h.service.DeleteProduct(ctx, PrincipalFrom(ctx), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) listItems(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ListItems")
	defer span.End()

	items, err := h.service.ListItems(ctx, PrincipalFrom(ctx), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

type createItemReq struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
}

func (h *CatalogHandler) createItem(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateItem")
	defer span.End()

	var req createItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	it, err := h.service.CreateItem(ctx, PrincipalFrom(ctx), catalogapp.CreateItemParams{
		ProductID: req.ProductID,
		Name:      req.Name,
		SKU:       req.SKU,
		Price:     req.Price,
		Stock:     req.Stock,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, it)
}

func (h *CatalogHandler) getItem(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetItem")
	defer span.End()

	it, err := h.service.GetSellableItem(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (h *CatalogHandler) itemOptions(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ItemOptions")
	defer span.End()

	if _, err := h.service.GetSellableItem(ctx, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	opts, err := h.service.ItemOptions(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

type updateItemReq struct {
	Name   *string          `json:"name"`
	Price  *decimal.Decimal `json:"price"`
	Stock  *int             `json:"stock"`
	Active *bool            `json:"active"`
}

func (h *CatalogHandler) updateItem(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UpdateItem")
	defer span.End()

	var req updateItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	it, err := h.service.UpdateItem(ctx, PrincipalFrom(ctx), chi.URLParam(r, "id"), catalogapp.UpdateItemParams{
		Name:   req.Name,
		Price:  req.Price,
		Stock:  req.Stock,
		Active: req.Active,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (h *CatalogHandler) deleteItem(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "DeleteItem")
	defer span.End()

	if err := h.service.DeleteItem(ctx, PrincipalFrom(ctx), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) listCategories(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ListCategories")
	defer span.End()

	cats, err := h.service.ListCategories(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

func (h *CatalogHandler) getCategory(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetCategory")
	defer span.End()

	c, err := h.service.GetCategory(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type categoryReq struct {
	Name     *string `json:"name"`
	Slug     *string `json:"slug"`
	ParentID *string `json:"parent_id"`
	ImageURL *string `json:"image_url"`
}

func (h *CatalogHandler) createCategory(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateCategory")
	defer span.End()

	var req categoryReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	params := catalogapp.CreateCategoryParams{ParentID: req.ParentID, ImageURL: req.ImageURL}
	if req.Name != nil {
		params.Name = *req.Name
	}
	if req.Slug != nil {
		params.Slug = *req.Slug
	}

	c, err := h.service.CreateCategory(ctx, PrincipalFrom(ctx), params)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *CatalogHandler) updateCategory(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UpdateCategory")
	defer span.End()

	var req categoryReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	c, err := h.service.UpdateCategory(ctx, PrincipalFrom(ctx), chi.URLParam(r, "id"), catalogapp.UpdateCategoryParams{
		Name:     req.Name,
		Slug:     req.Slug,
		ParentID: req.ParentID,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CatalogHandler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "DeleteCategory")
	defer span.End()

	if err := h.service.DeleteCategory(ctx, PrincipalFrom(ctx), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type createReviewReq struct {
	Content string `json:"content"`
	Rating  int    `json:"rating"`
}

func (h *CatalogHandler) createReview(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateReview")
	defer span.End()

	var req createReviewReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	rev, err := h.reviews.Create(ctx, PrincipalFrom(ctx), chi.URLParam(r, "id"), req.Content, req.Rating)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rev)
}

func (h *CatalogHandler) listReviews(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ListReviews")
	defer span.End()

	revs, err := h.reviews.ListByProduct(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, revs)
}

func (h *CatalogHandler) productRating(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ProductRating")
	defer span.End()

	sum, err := h.reviews.ProductRating(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}
