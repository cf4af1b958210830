package application

import (
	"context"

	catalog "github.com/gocommerce/commerce-backend/internal/catalog/domain"
	order "github.com/gocommerce/commerce-backend/internal/order/domain"
	"github.com/gocommerce/commerce-backend/pkg/outbox"
)

// Store opens checkout transactions. Everything a checkout writes happens
// inside one Tx so a failed validation leaves no trace.
type Store interface {
	Begin(ctx context.Context) (Tx, error)
}

// Tx is a single checkout transaction. LockItems must return the items in
// ascending ID order and hold row locks on them until Commit or Rollback;
// callers lock in that same order to avoid deadlocks between concurrent
// checkouts.
type Tx interface {
	CartLines(ctx context.Context, userID string) (map[string]int, error)
	LockItems(ctx context.Context, ids []string) ([]catalog.SellableItem, error)
	DecrementStock(ctx context.Context, itemID string, qty int) error
	InsertOrder(ctx context.Context, o order.Order) error
	AppendEvent(ctx context.Context, ev outbox.Event) error
	ClearCart(ctx context.Context, userID string) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// AddressBook answers whether the shipping address belongs to the buyer.
type AddressBook interface {
	Owns(ctx context.Context, addressID, userID string) (bool, error)
}

// CartInvalidator drops the buyer's cached cart view after a checkout
// empties the cart.
type CartInvalidator interface {
	Invalidate(userID string)
}
