package application

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gocommerce/commerce-backend/internal/apperror"
	"github.com/gocommerce/commerce-backend/internal/catalog/domain"
	identity "github.com/gocommerce/commerce-backend/internal/identity/domain"
)

type Service struct {
	log  *slog.Logger
	repo CatalogRepository
}

func NewService(log *slog.Logger, repo CatalogRepository) *Service {
	return &Service{log: log, repo: repo}
}

// ListProducts hides inactive products from non-staff callers regardless of
// the requested filter.
func (s *Service) ListProducts(ctx context.Context, p identity.Principal, f ProductFilter) ([]domain.Product, error) {
	if !p.Staff {
		active := true
		f.Active = &active
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}
	return s.repo.ListProducts(ctx, f)
}

func (s *Service) GetProduct(ctx context.Context, p identity.Principal, id string) (domain.Product, error) {
	prod, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	if !prod.Active && !p.Staff {
		return domain.Product{}, apperror.ErrNotFound
	}
	return prod, nil
}

func (s *Service) GetProductBySlug(ctx context.Context, p identity.Principal, slug string) (domain.Product, error) {
	prod, err := s.repo.GetProductBySlug(ctx, slug)
	if err != nil {
		return domain.Product{}, err
	}
	if !prod.Active && !p.Staff {
		return domain.Product{}, apperror.ErrNotFound
	}
	return prod, nil
}

func (s *Service) ListItems(ctx context.Context, p identity.Principal, productID string) ([]domain.SellableItem, error) {
	items, err := s.repo.ListItems(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p.Staff {
		return items, nil
	}
	visible := items[:0]
	for _, it := range items {
		if it.Active {
			visible = append(visible, it)
		}
	}
	return visible, nil
}

// ItemOptions lists the variation options attached to an item. Visibility
// follows the item itself; callers fetch the item first.
func (s *Service) ItemOptions(ctx context.Context, itemID string) ([]domain.ItemOption, error) {
	return s.repo.ListItemOptions(ctx, itemID)
}

// GetSellableItem is the lookup the cart and checkout core consume.
func (s *Service) GetSellableItem(ctx context.Context, id string) (domain.SellableItem, error) {
	return s.repo.GetItem(ctx, id)
}

func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *Service) GetCategory(ctx context.Context, id string) (domain.Category, error) {
	return s.repo.GetCategory(ctx, id)
}

type CreateProductParams struct {
	CategoryID  string
	Name        string
	Description string
	Slug        string
}

func (s *Service) CreateProduct(ctx context.Context, p identity.Principal, params CreateProductParams) (domain.Product, error) {
	if err := identity.RequireStaff(p); err != nil {
		return domain.Product{}, err
	}
	if params.Name == "" || params.CategoryID == "" {
		return domain.Product{}, apperror.Invalid("name and category are required")
	}
	if params.Slug == "" {
		params.Slug = slugify(params.Name)
	}
	now := time.Now().UTC()
	prod := domain.Product{
		ID:          uuid.NewString(),
		CategoryID:  params.CategoryID,
		Name:        params.Name,
		Description: params.Description,
		Slug:        params.Slug,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateProduct(ctx, prod); err != nil {
		return domain.Product{}, err
	}
	return prod, nil
}

// UpdateProductParams carries only the fields to change; nil means leave
// unchanged.
type UpdateProductParams struct {
	Name        *string
	Description *string
	Slug        *string
	CategoryID  *string
	Active      *bool
}

func (s *Service) UpdateProduct(ctx context.Context, p identity.Principal, id string, params UpdateProductParams) (domain.Product, error) {
	if err := identity.RequireStaff(p); err != nil {
		return domain.Product{}, err
	}
	prod, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	if params.Name != nil {
		prod.Name = *params.Name
	}
	if params.Description != nil {
		prod.Description = *params.Description
	}
	if params.Slug != nil {
		prod.Slug = *params.Slug
	}
	if params.CategoryID != nil {
		prod.CategoryID = *params.CategoryID
	}
	if params.Active != nil {
		prod.Active = *params.Active
	}
	prod.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateProduct(ctx, prod); err != nil {
		return domain.Product{}, err
	}
	return prod, nil
}

func (s *Service) DeleteProduct(ctx context.Context, p identity.Principal, id string) error {
	if err := identity.RequireStaff(p); err != nil {
		return err
	}
	return s.repo.DeleteProduct(ctx, id)
}

type CreateItemParams struct {
	ProductID string
	Name      string
	SKU       string
	Price     decimal.Decimal
	Stock     int
}

func (s *Service) CreateItem(ctx context.Context, p identity.Principal, params CreateItemParams) (domain.SellableItem, error) {
	if err := identity.RequireStaff(p); err != nil {
		return domain.SellableItem{}, err
	}
	if params.SKU == "" {
		return domain.SellableItem{}, apperror.Invalid("sku is required")
	}
	if params.Price.IsNegative() || params.Stock < 0 {
		return domain.SellableItem{}, apperror.Invalid("price and stock must be non-negative")
	}
	it := domain.SellableItem{
		ID:        uuid.NewString(),
		ProductID: params.ProductID,
		Name:      params.Name,
		SKU:       params.SKU,
		Price:     params.Price,
		Stock:     params.Stock,
		Active:    true,
	}
	if err := s.repo.CreateItem(ctx, it); err != nil {
		return domain.SellableItem{}, err
	}
	return it, nil
}

type UpdateItemParams struct {
	Name   *string
	Price  *decimal.Decimal
	Stock  *int
	Active *bool
}

func (s *Service) UpdateItem(ctx context.Context, p identity.Principal, id string, params UpdateItemParams) (domain.SellableItem, error) {
	if err := identity.RequireStaff(p); err != nil {
		return domain.SellableItem{}, err
	}
	it, err := s.repo.GetItem(ctx, id)
	if err != nil {
		return domain.SellableItem{}, err
	}
	if params.Name != nil {
		it.Name = *params.Name
	}
	if params.Price != nil {
		if params.Price.IsNegative() {
			return domain.SellableItem{}, apperror.Invalid("price must be non-negative")
		}
		it.Price = *params.Price
	}
	if params.Stock != nil {
		if *params.Stock < 0 {
			return domain.SellableItem{}, apperror.Invalid("stock must be non-negative")
		}
		it.Stock = *params.Stock
	}
	if params.Active != nil {
		it.Active = *params.Active
	}
	if err := s.repo.UpdateItem(ctx, it); err != nil {
		return domain.SellableItem{}, err
	}
	return it, nil
}

func (s *Service) DeleteItem(ctx context.Context, p identity.Principal, id string) error {
	if err := identity.RequireStaff(p); err != nil {
		return err
	}
	return s.repo.DeleteItem(ctx, id)
}

type CreateCategoryParams struct {
	Name     string
	Slug     string
	ParentID *string
	ImageURL *string
}

func (s *Service) CreateCategory(ctx context.Context, p identity.Principal, params CreateCategoryParams) (domain.Category, error) {
	if err := identity.RequireStaff(p); err != nil {
		return domain.Category{}, err
	}
	if params.Name == "" {
		return domain.Category{}, apperror.Invalid("name is required")
	}
	if params.Slug == "" {
		params.Slug = slugify(params.Name)
	}
	c := domain.Category{
		ID:       uuid.NewString(),
		Name:     params.Name,
		Slug:     params.Slug,
		ParentID: params.ParentID,
		ImageURL: params.ImageURL,
	}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return domain.Category{}, err
	}
	return c, nil
}

type UpdateCategoryParams struct {
	Name     *string
	Slug     *string
	ParentID *string
	ImageURL *string
}

func (s *Service) UpdateCategory(ctx context.Context, p identity.Principal, id string, params UpdateCategoryParams) (domain.Category, error) {
	if err := identity.RequireStaff(p); err != nil {
		return domain.Category{}, err
	}
	c, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return domain.Category{}, err
	}
	if params.Name != nil {
		c.Name = *params.Name
	}
	if params.Slug != nil {
		c.Slug = *params.Slug
	}
	if params.ParentID != nil {
		c.ParentID = params.ParentID
	}
	if params.ImageURL != nil {
		c.ImageURL = params.ImageURL
	}
	if err := s.repo.UpdateCategory(ctx, c); err != nil {
		return domain.Category{}, err
	}
	return c, nil
}

func (s *Service) DeleteCategory(ctx context.Context, p identity.Principal, id string) error {
	if err := identity.RequireStaff(p); err != nil {
		return err
	}
	return s.repo.DeleteCategory(ctx, id)
}

func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ' || r == '-' || r == '_':
			return '-'
		default:
			return -1
		}
	}, slug)
	return strings.Trim(slug, "-")
}
