package application

import (
	"context"

	"github.com/gocommerce/commerce-backend/internal/review/domain"
)

type ReviewRepository interface {
	Create(ctx context.Context, r domain.Review) error
	Get(ctx context.Context, id, userID string) (domain.Review, error)
	ListByProduct(ctx context.Context, productID string) ([]domain.Review, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Review, error)
	Update(ctx context.Context, r domain.Review) error
	Delete(ctx context.Context, id string) error
	Summary(ctx context.Context, productID string) (domain.RatingSummary, error)
}

// ProductChecker verifies the reviewed product exists.
type ProductChecker interface {
	ProductExists(ctx context.Context, productID string) (bool, error)
}
