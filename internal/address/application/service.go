package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/gocommerce/commerce-backend/internal/address/domain"
	"github.com/gocommerce/commerce-backend/internal/apperror"
	identity "github.com/gocommerce/commerce-backend/internal/identity/domain"
)

type Service struct {
	log  *slog.Logger
	repo AddressRepository
}

func NewService(log *slog.Logger, repo AddressRepository) *Service {
	return &Service{log: log, repo: repo}
}

type CreateParams struct {
	City         string
	District     string
	Neighborhood string
	FullAddress  string
	PostalCode   string
}

func (s *Service) Create(ctx context.Context, p identity.Principal, params CreateParams) (domain.Address, error) {
	if err := identity.RequireUser(p); err != nil {
		return domain.Address{}, err
	}
	if params.City == "" || params.FullAddress == "" {
		return domain.Address{}, apperror.Invalid("city and full address are required")
	}
	now := time.Now().UTC()
	a := domain.Address{
		ID:           uuid.NewString(),
		UserID:       p.ID,
		City:         params.City,
		District:     params.District,
		Neighborhood: params.Neighborhood,
		FullAddress:  params.FullAddress,
		PostalCode:   params.PostalCode,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return domain.Address{}, err
	}
	return a, nil
}

// UpdateParams carries only the fields to change; nil leaves a field
// untouched, so an empty string can still be set deliberately.
type UpdateParams struct {
	City         *string
	District     *string
	Neighborhood *string
	FullAddress  *string
	PostalCode   *string
}

func (s *Service) Update(ctx context.Context, p identity.Principal, id string, params UpdateParams) (domain.Address, error) {
	if err := identity.RequireUser(p); err != nil {
		return domain.Address{}, err
	}
	a, err := s.repo.Get(ctx, id, p.ID)
	if err != nil {
		return domain.Address{}, err
	}
	if params.City != nil {
		a.City = *params.City
	}
	if params.District != nil {
		a.District = *params.District
	}
	if params.Neighborhood != nil {
		a.Neighborhood = *params.Neighborhood
	}
	if params.FullAddress != nil {
		a.FullAddress = *params.FullAddress
	}
	if params.PostalCode != nil {
		a.PostalCode = *params.PostalCode
	}
	a.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, a); err != nil {
		return domain.Address{}, err
	}
	return a, nil
}

// Delete refuses to remove an address still referenced by a pending,
// processing or shipped order. Orders in a terminal state do not block the
// delete; they keep their captured lines and simply lose the address link.
func (s *Service) Delete(ctx context.Context, p identity.Principal, id string) error {
	if err := identity.RequireUser(p); err != nil {
		return err
	}
	a, err := s.repo.Get(ctx, id, p.ID)
	if err != nil {
		return err
	}
	active, err := s.repo.InActiveOrder(ctx, a.ID)
	if err != nil {
		return err
	}
	if active {
		return fmt.Errorf("%w: address is used in active orders", apperror.ErrConflict)
	}
	return s.repo.Delete(ctx, a.ID)
}

func (s *Service) Get(ctx context.Context, p identity.Principal, id string) (domain.Address, error) {
	if err := identity.RequireUser(p); err != nil {
		return domain.Address{}, err
	}
	return s.repo.Get(ctx, id, p.ID)
}

func (s *Service) ListMine(ctx context.Context, p identity.Principal) ([]domain.Address, error) {
	if err := identity.RequireUser(p); err != nil {
		return nil, err
	}
	return s.repo.ListByUser(ctx, p.ID)
}
