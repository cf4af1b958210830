package application

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gocommerce/commerce-backend/internal/apperror"
	"github.com/gocommerce/commerce-backend/internal/catalog/domain"
	identity "github.com/gocommerce/commerce-backend/internal/identity/domain"
)

type fakeCatalogRepo struct {
	categories map[string]domain.Category
	products   map[string]domain.Product
	items      map[string]domain.SellableItem
	lastFilter ProductFilter
}

func newFakeCatalogRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{
		categories: map[string]domain.Category{},
		products:   map[string]domain.Product{},
		items:      map[string]domain.SellableItem{},
	}
}

func (f *fakeCatalogRepo) ListCategories(_ context.Context) ([]domain.Category, error) {
	var out []domain.Category
	for _, c := range f.categories {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeCatalogRepo) GetCategory(_ context.Context, id string) (domain.Category, error) {
	if c, ok := f.categories[id]; ok {
		return c, nil
	}
	return domain.Category{}, apperror.ErrNotFound
}

func (f *fakeCatalogRepo) CreateCategory(_ context.Context, c domain.Category) error {
	f.categories[c.ID] = c
	return nil
}

func (f *fakeCatalogRepo) UpdateCategory(_ context.Context, c domain.Category) error {
	f.categories[c.ID] = c
	return nil
}

func (f *fakeCatalogRepo) DeleteCategory(_ context.Context, id string) error {
	delete(f.categories, id)
	return nil
}

func (f *fakeCatalogRepo) ListProducts(_ context.Context, filter ProductFilter) ([]domain.Product, error) {
	f.lastFilter = filter
	var out []domain.Product
	for _, p := range f.products {
		if filter.Active != nil && p.Active != *filter.Active {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeCatalogRepo) GetProduct(_ context.Context, id string) (domain.Product, error) {
	if p, ok := f.products[id]; ok {
		return p, nil
	}
	return domain.Product{}, apperror.ErrNotFound
}

func (f *fakeCatalogRepo) GetProductBySlug(_ context.Context, slug string) (domain.Product, error) {
	for _, p := range f.products {
		if p.Slug == slug {
			return p, nil
		}
	}
	return domain.Product{}, apperror.ErrNotFound
}

func (f *fakeCatalogRepo) CreateProduct(_ context.Context, p domain.Product) error {
	f.products[p.ID] = p
	return nil
}

func (f *fakeCatalogRepo) UpdateProduct(_ context.Context, p domain.Product) error {
	f.products[p.ID] = p
	return nil
}

func (f *fakeCatalogRepo) DeleteProduct(_ context.Context, id string) error {
	delete(f.products, id)
	return nil
}

func (f *fakeCatalogRepo) ListItems(_ context.Context, productID string) ([]domain.SellableItem, error) {
	var out []domain.SellableItem
	for _, it := range f.items {
		if it.ProductID == productID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeCatalogRepo) ListItemOptions(_ context.Context, _ string) ([]domain.ItemOption, error) {
	return nil, nil
}

func (f *fakeCatalogRepo) GetItem(_ context.Context, id string) (domain.SellableItem, error) {
	if it, ok := f.items[id]; ok {
		return it, nil
	}
	return domain.SellableItem{}, apperror.ErrNotFound
}

func (f *fakeCatalogRepo) CreateItem(_ context.Context, it domain.SellableItem) error {
	f.items[it.ID] = it
	return nil
}

func (f *fakeCatalogRepo) UpdateItem(_ context.Context, it domain.SellableItem) error {
	f.items[it.ID] = it
	return nil
}

func (f *fakeCatalogRepo) DeleteItem(_ context.Context, id string) error {
	delete(f.items, id)
	return nil
}

var (
	shopper = identity.Principal{ID: "user-1"}
	admin   = identity.Principal{ID: "user-9", Staff: true}
)

func newCatalogService() (*Service, *fakeCatalogRepo) {
	repo := newFakeCatalogRepo()
	repo.products["p-live"] = domain.Product{ID: "p-live", Name: "Live", Active: true}
	repo.products["p-hidden"] = domain.Product{ID: "p-hidden", Name: "Hidden", Active: false}
	repo.items["i-live"] = domain.SellableItem{ID: "i-live", ProductID: "p-live", SKU: "SKU-1", Active: true}
	repo.items["i-hidden"] = domain.SellableItem{ID: "i-hidden", ProductID: "p-live", SKU: "SKU-2", Active: false}
	return NewService(slog.New(slog.NewTextHandler(io.Discard, nil)), repo), repo
}

func TestListProductsForcesActiveForNonStaff(t *testing.T) {
	svc, repo := newCatalogService()
	ctx := context.Background()

	products, err := svc.ListProducts(ctx, shopper, ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, products, 1)
	require.NotNil(t, repo.lastFilter.Active)
	assert.True(t, *repo.lastFilter.Active)

	products, err = svc.ListProducts(ctx, admin, ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, products, 2)
	assert.Nil(t, repo.lastFilter.Active)
}

func TestListProductsClampsLimit(t *testing.T) {
	svc, repo := newCatalogService()
	ctx := context.Background()

	_, err := svc.ListProducts(ctx, shopper, ProductFilter{Limit: 0})
	require.NoError(t, err)
	assert.Equal(t, 50, repo.lastFilter.Limit)

	_, err = svc.ListProducts(ctx, shopper, ProductFilter{Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, 50, repo.lastFilter.Limit)

	_, err = svc.ListProducts(ctx, shopper, ProductFilter{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 10, repo.lastFilter.Limit)
}

func TestGetProductHidesInactive(t *testing.T) {
	svc, _ := newCatalogService()
	ctx := context.Background()

	_, err := svc.GetProduct(ctx, shopper, "p-hidden")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	p, err := svc.GetProduct(ctx, admin, "p-hidden")
	require.NoError(t, err)
	assert.Equal(t, "p-hidden", p.ID)
}

func TestListItemsFiltersInactive(t *testing.T) {
	svc, _ := newCatalogService()
	ctx := context.Background()

	items, err := svc.ListItems(ctx, shopper, "p-live")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "i-live", items[0].ID)

	items, err = svc.ListItems(ctx, admin, "p-live")
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestWritesNeedStaff(t *testing.T) {
	svc, _ := newCatalogService()
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, shopper, CreateProductParams{Name: "X", CategoryID: "c-1"})
	assert.ErrorIs(t, err, apperror.ErrNotAuthorized)

	_, err = svc.CreateProduct(ctx, identity.Principal{}, CreateProductParams{Name: "X", CategoryID: "c-1"})
	assert.ErrorIs(t, err, apperror.ErrNotAuthenticated)

	err = svc.DeleteItem(ctx, shopper, "i-live")
	assert.ErrorIs(t, err, apperror.ErrNotAuthorized)
}

func TestCreateProductSlugDefaults(t *testing.T) {
	svc, _ := newCatalogService()

	p, err := svc.CreateProduct(context.Background(), admin, CreateProductParams{
		Name: "Blue Suede Shoes!", CategoryID: "c-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "blue-suede-shoes", p.Slug)
	assert.True(t, p.Active)
}

func TestCreateItemValidates(t *testing.T) {
	svc, _ := newCatalogService()
	ctx := context.Background()

	_, err := svc.CreateItem(ctx, admin, CreateItemParams{ProductID: "p-live"})
	assert.ErrorIs(t, err, apperror.ErrInvalidArgument)

	_, err = svc.CreateItem(ctx, admin, CreateItemParams{
		ProductID: "p-live", SKU: "SKU-3", Price: decimal.NewFromInt(-1),
	})
	assert.ErrorIs(t, err, apperror.ErrInvalidArgument)
}

func TestUpdateItemPartial(t *testing.T) {
	svc, _ := newCatalogService()

	stock := 7
	it, err := svc.UpdateItem(context.Background(), admin, "i-live", UpdateItemParams{Stock: &stock})
	require.NoError(t, err)
	assert.Equal(t, 7, it.Stock)
	assert.Equal(t, "SKU-1", it.SKU)
}
