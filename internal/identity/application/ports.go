package application

import (
	"context"

	"github.com/gocommerce/commerce-backend/internal/identity/domain"
)

type UserRepository interface {
	Create(ctx context.Context, u domain.User) error
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByID(ctx context.Context, id string) (domain.User, error)
}
