package application

import (
	"context"

	"github.com/gocommerce/commerce-backend/internal/address/domain"
)

type AddressRepository interface {
	Create(ctx context.Context, a domain.Address) error
	// Get is owner-scoped: another user's address reads as absent.
	Get(ctx context.Context, id, userID string) (domain.Address, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Address, error)
	Update(ctx context.Context, a domain.Address) error
	Delete(ctx context.Context, id string) error
	// InActiveOrder reports whether any non-terminal order ships to this
	// address.
	InActiveOrder(ctx context.Context, id string) (bool, error)
}
