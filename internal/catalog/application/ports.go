package application

import (
	"context"

	"github.com/gocommerce/commerce-backend/internal/catalog/domain"
)

// ProductFilter narrows product listings. Zero values mean "no constraint";
// Active uses a pointer so "only inactive" remains expressible.
type ProductFilter struct {
	NameContains string
	Active       *bool
	CategorySlug string
	Limit        int
	Offset       int
}

type CatalogRepository interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	GetCategory(ctx context.Context, id string) (domain.Category, error)
	CreateCategory(ctx context.Context, c domain.Category) error
	UpdateCategory(ctx context.Context, c domain.Category) error
	DeleteCategory(ctx context.Context, id string) error

	ListProducts(ctx context.Context, f ProductFilter) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (domain.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (domain.Product, error)
	CreateProduct(ctx context.Context, p domain.Product) error
	UpdateProduct(ctx context.Context, p domain.Product) error
	DeleteProduct(ctx context.Context, id string) error

	ListItems(ctx context.Context, productID string) ([]domain.SellableItem, error)
	ListItemOptions(ctx context.Context, itemID string) ([]domain.ItemOption, error)
	GetItem(ctx context.Context, id string) (domain.SellableItem, error)
	CreateItem(ctx context.Context, it domain.SellableItem) error
	UpdateItem(ctx context.Context, it domain.SellableItem) error
	DeleteItem(ctx context.Context, id string) error
}
