package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/gocommerce/commerce-backend/internal/apperror"
	identity "github.com/gocommerce/commerce-backend/internal/identity/domain"
	inventory "github.com/gocommerce/commerce-backend/internal/inventory/application"
	"github.com/gocommerce/commerce-backend/internal/order/domain"
)

type Service struct {
	log    *slog.Logger
	repo   OrderRepository
	ledger inventory.Ledger
}

func NewService(log *slog.Logger, repo OrderRepository, ledger inventory.Ledger) *Service {
	return &Service{log: log, repo: repo, ledger: ledger}
}

// Get returns NotFound rather than NotAuthorized for orders the caller does
// not own, so order ids cannot be probed for existence.
func (s *Service) Get(ctx context.Context, p identity.Principal, id string) (domain.Order, error) {
	if err := identity.RequireUser(p); err != nil {
		return domain.Order{}, err
	}
	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if !p.Staff && o.UserID != p.ID {
		return domain.Order{}, apperror.ErrNotFound
	}
	return o, nil
}

func (s *Service) ListMine(ctx context.Context, p identity.Principal, limit, offset int) ([]domain.Order, error) {
	if err := identity.RequireUser(p); err != nil {
		return nil, err
	}
	return s.repo.ListByUser(ctx, p.ID, clampLimit(limit), offset)
}

func (s *Service) ListAll(ctx context.Context, p identity.Principal, limit, offset int) ([]domain.Order, error) {
	if err := identity.RequireStaff(p); err != nil {
		return nil, err
	}
	return s.repo.ListAll(ctx, clampLimit(limit), offset)
}

// SetStatus accepts any recognized status value; it does not enforce
// forward-only ordering. The first transition into CANCELLED releases the
// order's stock back to the ledger; the repository decides that under the
// order's row lock so re-cancelling, even after an intervening un-cancel,
// never releases twice.
func (s *Service) SetStatus(ctx context.Context, p identity.Principal, orderID string, status domain.OrderStatus, traceparent string) (domain.Order, error) {
	if err := identity.RequireStaff(p); err != nil {
		return domain.Order{}, err
	}
	if !domain.Recognized(status) {
		return domain.Order{}, apperror.Invalid(fmt.Sprintf("unrecognized status %q", status))
	}

	o, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}

	payload, err := json.Marshal(domain.OrderStatusChangedEvent{
		OrderID:   o.ID,
		OldStatus: string(o.Status),
		NewStatus: string(status),
	})
	if err != nil {
		return domain.Order{}, err
	}
	restock, err := s.repo.SetStatusWithOutbox(ctx, o.ID, status, payload, traceparent)
	if err != nil {
		return domain.Order{}, err
	}

	if restock {
		for _, l := range o.Lines {
			if err := s.ledger.Release(ctx, l.ItemID, l.Qty); err != nil {
				s.log.Error("restock after cancel failed", "order_id", o.ID, "item_id", l.ItemID, "err", err)
			}
		}
	}

	o.Status = status
	return o, nil
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 50
	}
	return limit
}
