package application

import (
	"context"
	"errors"

	catalog "github.com/gocommerce/commerce-backend/internal/catalog/domain"
	"github.com/gocommerce/commerce-backend/internal/cart/domain"
)

type CartRepository interface {
	// GetOrCreate returns the user's cart, creating an empty one on first
	// access.
	GetOrCreate(ctx context.Context, userID string) (domain.Cart, error)
	// Get returns apperror.ErrNotFound when the user has no cart yet.
	Get(ctx context.Context, userID string) (domain.Cart, error)
	// GetLine is owner-scoped: lines of other users' carts read as absent.
	GetLine(ctx context.Context, lineID, userID string) (domain.CartLine, error)
	// InsertOrAccumulateLine adds qty to an existing line for the item, or
	// inserts a new line. Atomic per (cart, item).
	InsertOrAccumulateLine(ctx context.Context, cartID, itemID string, qty int) (domain.CartLine, error)
	SetLineQuantity(ctx context.Context, lineID string, qty int) error
	DeleteLine(ctx context.Context, lineID string) error
	Clear(ctx context.Context, cartID string) error
}

// Catalog is the read-only collaborator the cart validates against.
type Catalog interface {
	GetSellableItem(ctx context.Context, id string) (catalog.SellableItem, error)
}

var ErrCacheMiss = errors.New("cart not in cache")

type Cache interface {
	Get(ctx context.Context, userID string) (*CartView, error)
	Set(ctx context.Context, userID string, view *CartView) error
	Delete(ctx context.Context, userID string) error
}
