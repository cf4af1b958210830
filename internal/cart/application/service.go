package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/gocommerce/commerce-backend/internal/apperror"
	"github.com/gocommerce/commerce-backend/internal/cart/domain"
	identity "github.com/gocommerce/commerce-backend/internal/identity/domain"
)

// CartView is a cart priced against the current catalog. Cart totals are not
// frozen; only order totals are.
type CartView struct {
	Cart  domain.Cart     `json:"cart"`
	Lines []LineView      `json:"lines"`
	Total decimal.Decimal `json:"total"`
}

type LineView struct {
	Line      domain.CartLine `json:"line"`
	ItemName  string          `json:"item_name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type Service struct {
	log     *slog.Logger
	repo    CartRepository
	catalog Catalog
	cache   Cache
	sfg     singleflight.Group
}

func NewService(log *slog.Logger, repo CartRepository, catalog Catalog, cache Cache) *Service {
	return &Service{log: log, repo: repo, catalog: catalog, cache: cache}
}

// View returns the priced cart, read through the cache. Singleflight keeps a
// burst of misses for one user down to a single rebuild.
func (s *Service) View(ctx context.Context, p identity.Principal) (*CartView, error) {
	if err := identity.RequireUser(p); err != nil {
		return nil, err
	}

	v, err, _ := s.sfg.Do(p.ID, func() (any, error) {
		if view, err := s.cache.Get(ctx, p.ID); err == nil {
			return view, nil
		} else if !errors.Is(err, ErrCacheMiss) {
			s.log.Warn("cart cache get failed", "err", err)
		}

		view, err := s.buildView(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(ctx, p.ID, view); err != nil {
			s.log.Warn("cart cache set failed", "err", err)
		}
		return view, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*CartView), nil
}

func (s *Service) buildView(ctx context.Context, userID string) (*CartView, error) {
	cart, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := &CartView{Cart: cart, Total: decimal.Zero}
	for _, line := range cart.Lines {
		item, err := s.catalog.GetSellableItem(ctx, line.ItemID)
		if err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				continue
			}
			return nil, err
		}
		sub := item.Price.Mul(decimal.NewFromInt(int64(line.Qty)))
		view.Lines = append(view.Lines, LineView{
			Line:      line,
			ItemName:  item.Name,
			UnitPrice: item.Price,
			Subtotal:  sub,
		})
		view.Total = view.Total.Add(sub)
	}
	return view, nil
}

func (s *Service) AddLine(ctx context.Context, p identity.Principal, itemID string, qty int) (domain.CartLine, error) {
	if err := identity.RequireUser(p); err != nil {
		return domain.CartLine{}, err
	}
	if qty <= 0 {
		return domain.CartLine{}, apperror.Invalid("quantity must be greater than 0")
	}

	item, err := s.catalog.GetSellableItem(ctx, itemID)
	if err != nil {
		return domain.CartLine{}, err
	}
	if !item.Active {
		return domain.CartLine{}, apperror.ErrItemUnavailable
	}
	// Optimistic check only; checkout re-validates authoritatively.
	if item.Stock < qty {
		return domain.CartLine{}, &apperror.InsufficientStockError{ItemID: itemID, Available: item.Stock}
	}

	cart, err := s.repo.GetOrCreate(ctx, p.ID)
	if err != nil {
		return domain.CartLine{}, err
	}
	line, err := s.repo.InsertOrAccumulateLine(ctx, cart.ID, itemID, qty)
	if err != nil {
		return domain.CartLine{}, err
	}
	s.invalidate(p.ID)
	return line, nil
}

// UpdateLine replaces the line's quantity. A quantity of zero or less removes
// the line and returns an empty line with no error.
func (s *Service) UpdateLine(ctx context.Context, p identity.Principal, lineID string, qty int) (domain.CartLine, error) {
	if err := identity.RequireUser(p); err != nil {
		return domain.CartLine{}, err
	}

	line, err := s.repo.GetLine(ctx, lineID, p.ID)
	if err != nil {
		return domain.CartLine{}, err
	}

	if qty <= 0 {
		if err := s.repo.DeleteLine(ctx, line.ID); err != nil {
			return domain.CartLine{}, err
		}
		s.invalidate(p.ID)
		return domain.CartLine{}, nil
	}

	item, err := s.catalog.GetSellableItem(ctx, line.ItemID)
	if err != nil {
		return domain.CartLine{}, err
	}
	if item.Stock < qty {
		return domain.CartLine{}, &apperror.InsufficientStockError{ItemID: line.ItemID, Available: item.Stock}
	}

	if err := s.repo.SetLineQuantity(ctx, line.ID, qty); err != nil {
		return domain.CartLine{}, err
	}
	s.invalidate(p.ID)
	line.Qty = qty
	return line, nil
}

// RemoveLine is idempotent: removing an absent line succeeds.
func (s *Service) RemoveLine(ctx context.Context, p identity.Principal, lineID string) error {
	if err := identity.RequireUser(p); err != nil {
		return err
	}
	line, err := s.repo.GetLine(ctx, lineID, p.ID)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.repo.DeleteLine(ctx, line.ID); err != nil {
		return err
	}
	s.invalidate(p.ID)
	return nil
}

// Clear is idempotent: clearing a missing or empty cart succeeds.
func (s *Service) Clear(ctx context.Context, p identity.Principal) error {
	if err := identity.RequireUser(p); err != nil {
		return err
	}
	cart, err := s.repo.Get(ctx, p.ID)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.repo.Clear(ctx, cart.ID); err != nil {
		return err
	}
	s.invalidate(p.ID)
	return nil
}

// Invalidate drops the cached view, e.g. after checkout emptied the cart.
func (s *Service) Invalidate(userID string) { s.invalidate(userID) }

func (s *Service) invalidate(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		s.log.Warn("cart cache invalidate failed", "err", err)
	}
}
