package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/gocommerce/commerce-backend/internal/apperror"
	identity "github.com/gocommerce/commerce-backend/internal/identity/domain"
	"github.com/gocommerce/commerce-backend/internal/review/domain"
)

type Service struct {
	log      *slog.Logger
	repo     ReviewRepository
	products ProductChecker
}

func NewService(log *slog.Logger, repo ReviewRepository, products ProductChecker) *Service {
	return &Service{log: log, repo: repo, products: products}
}

func (s *Service) Create(ctx context.Context, p identity.Principal, productID, content string, rating int) (domain.Review, error) {
	if err := identity.RequireUser(p); err != nil {
		return domain.Review{}, err
	}
	if rating < 1 || rating > 5 {
		return domain.Review{}, apperror.Invalid("rating must be between 1 and 5")
	}
	exists, err := s.products.ProductExists(ctx, productID)
	if err != nil {
		return domain.Review{}, err
	}
	if !exists {
		return domain.Review{}, apperror.ErrNotFound
	}

	r := domain.Review{
		ID:        uuid.NewString(),
		UserID:    p.ID,
		ProductID: productID,
		Content:   content,
		Rating:    rating,
		CreatedAt: time.Now().UTC(),
	}
	// The unique (user, product) index turns a second review into Conflict.
	if err := s.repo.Create(ctx, r); err != nil {
		return domain.Review{}, err
	}
	return r, nil
}

type UpdateParams struct {
	Content *string
	Rating  *int
}

func (s *Service) Update(ctx context.Context, p identity.Principal, id string, params UpdateParams) (domain.Review, error) {
	if err := identity.RequireUser(p); err != nil {
		return domain.Review{}, err
	}
	r, err := s.repo.Get(ctx, id, p.ID)
	if err != nil {
		return domain.Review{}, err
	}
	if params.Rating != nil {
		if *params.Rating < 1 || *params.Rating > 5 {
			return domain.Review{}, apperror.Invalid("rating must be between 1 and 5")
		}
		r.Rating = *params.Rating
	}
	if params.Content != nil {
		r.Content = *params.Content
	}
	if err := s.repo.Update(ctx, r); err != nil {
		return domain.Review{}, err
	}
	return r, nil
}

func (s *Service) Delete(ctx context.Context, p identity.Principal, id string) error {
	if err := identity.RequireUser(p); err != nil {
		return err
	}
	r, err := s.repo.Get(ctx, id, p.ID)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, r.ID)
}

func (s *Service) ListByProduct(ctx context.Context, productID string) ([]domain.Review, error) {
	return s.repo.ListByProduct(ctx, productID)
}

func (s *Service) ListMine(ctx context.Context, p identity.Principal) ([]domain.Review, error) {
	if err := identity.RequireUser(p); err != nil {
		return nil, err
	}
	return s.repo.ListByUser(ctx, p.ID)
}

func (s *Service) ProductRating(ctx context.Context, productID string) (domain.RatingSummary, error) {
	exists, err := s.products.ProductExists(ctx, productID)
	if err != nil {
		return domain.RatingSummary{}, err
	}
	if !exists {
		return domain.RatingSummary{}, apperror.ErrNotFound
	}
	return s.repo.Summary(ctx, productID)
}
