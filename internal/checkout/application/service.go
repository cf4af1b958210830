package application

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/gocommerce/commerce-backend/internal/apperror"
	identity "github.com/gocommerce/commerce-backend/internal/identity/domain"
	order "github.com/gocommerce/commerce-backend/internal/order/domain"
	"github.com/gocommerce/commerce-backend/pkg/metrics"
	"github.com/gocommerce/commerce-backend/pkg/outbox"
	"github.com/gocommerce/commerce-backend/pkg/tracing"
)

// LineInput is one requested item for a direct order.
type LineInput struct {
	ItemID string `json:"item_id"`
	Qty    int    `json:"qty"`
}

type Service struct {
	log       *slog.Logger
	store     Store
	addresses AddressBook
	carts     CartInvalidator
	metrics   *metrics.ServerMetrics
}

func NewService(log *slog.Logger, store Store, addresses AddressBook, carts CartInvalidator, m *metrics.ServerMetrics) *Service {
	return &Service{log: log, store: store, addresses: addresses, carts: carts, metrics: m}
}

// FromCart converts the buyer's cart into a pending order, decrementing
// stock and clearing the cart in the same transaction. Validation failures
// leave stock, cart and orders untouched.
func (s *Service) FromCart(ctx context.Context, p identity.Principal, addressID string) (order.Order, error) {
	if err := identity.RequireUser(p); err != nil {
		return order.Order{}, s.outcome(err)
	}
	if err := s.checkAddress(ctx, addressID, p.ID); err != nil {
		return order.Order{}, s.outcome(err)
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return order.Order{}, s.outcome(err)
	}
	defer tx.Rollback(ctx)

	want, err := tx.CartLines(ctx, p.ID)
	if err != nil {
		return order.Order{}, s.outcome(err)
	}
	if len(want) == 0 {
		return order.Order{}, s.outcome(apperror.ErrEmptyCart)
	}

	o, err := s.place(ctx, tx, p.ID, addressID, want)
	if err != nil {
		return order.Order{}, s.outcome(err)
	}
	if err := tx.ClearCart(ctx, p.ID); err != nil {
		return order.Order{}, s.outcome(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return order.Order{}, s.outcome(err)
	}

	s.carts.Invalidate(p.ID)
	s.outcome(nil)
	s.log.Info("order placed from cart", "order_id", o.ID, "user_id", p.ID, "total", o.Total.StringFixed(2))
	return o, nil
}

// FromLines places an order for the given items directly, without touching
// the buyer's cart. Duplicate item IDs accumulate.
func (s *Service) FromLines(ctx context.Context, p identity.Principal, addressID string, lines []LineInput) (order.Order, error) {
	if err := identity.RequireUser(p); err != nil {
		return order.Order{}, s.outcome(err)
	}
	if len(lines) == 0 {
		return order.Order{}, s.outcome(apperror.ErrEmptyCart)
	}
	want := make(map[string]int, len(lines))
	for _, l := range lines {
		if l.ItemID == "" {
			return order.Order{}, s.outcome(apperror.Invalid("item_id is required"))
		}
		if l.Qty <= 0 {
			return order.Order{}, s.outcome(apperror.Invalid("quantity must be positive"))
		}
		want[l.ItemID] += l.Qty
	}
	if err := s.checkAddress(ctx, addressID, p.ID); err != nil {
		return order.Order{}, s.outcome(err)
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return order.Order{}, s.outcome(err)
	}
	defer tx.Rollback(ctx)

	o, err := s.place(ctx, tx, p.ID, addressID, want)
	if err != nil {
		return order.Order{}, s.outcome(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return order.Order{}, s.outcome(err)
	}

	s.outcome(nil)
	s.log.Info("order placed", "order_id", o.ID, "user_id", p.ID, "total", o.Total.StringFixed(2))
	return o, nil
}

// place runs the locked validate-then-mutate core. Items are locked in
// ascending ID order and the first failing item, in that same order,
// determines the returned error.
func (s *Service) place(ctx context.Context, tx Tx, userID, addressID string, want map[string]int) (order.Order, error) {
	ids := make([]string, 0, len(want))
	for id := range want {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	items, err := tx.LockItems(ctx, ids)
	if err != nil {
		return order.Order{}, err
	}
	byID := make(map[string]int, len(items))
	for i, it := range items {
		byID[it.ID] = i
	}

	lines := make([]order.OrderLine, 0, len(ids))
	for _, id := range ids {
		i, ok := byID[id]
		if !ok {
			return order.Order{}, apperror.ErrNotFound
		}
		it := items[i]
		if !it.Active {
			return order.Order{}, apperror.ErrItemUnavailable
		}
		qty := want[id]
		if it.Stock < qty {
			return order.Order{}, &apperror.InsufficientStockError{ItemID: id, Available: it.Stock}
		}
		lines = append(lines, order.OrderLine{ItemID: id, Qty: qty, PriceAtTime: it.Price})
	}

	o := order.NewOrder(uuid.NewString(), userID, addressID, lines)
	if err := tx.InsertOrder(ctx, o); err != nil {
		return order.Order{}, err
	}
	for _, l := range lines {
		if err := tx.DecrementStock(ctx, l.ItemID, l.Qty); err != nil {
			return order.Order{}, err
		}
	}

	payload, err := json.Marshal(order.NewOrderCreatedEvent(o))
	if err != nil {
		return order.Order{}, err
	}
	ev := outbox.Event{
		AggregateType: "order",
		AggregateID:   o.ID,
		Type:          "OrderCreated",
		Payload:       payload,
		Traceparent:   tracing.Traceparent(ctx),
		CreatedAt:     time.Now().UTC(),
		Status:        outbox.StatusPending,
	}
	if err := tx.AppendEvent(ctx, ev); err != nil {
		return order.Order{}, err
	}
	return o, nil
}

func (s *Service) checkAddress(ctx context.Context, addressID, userID string) error {
	if addressID == "" {
		return apperror.Invalid("address_id is required")
	}
	owns, err := s.addresses.Owns(ctx, addressID, userID)
	if err != nil {
		return err
	}
	if !owns {
		return apperror.ErrNotFound
	}
	return nil
}

func (s *Service) outcome(err error) error {
	if s.metrics == nil {
		return err
	}
	label := "ok"
	if err != nil {
		label = "rejected"
	}
	s.metrics.Checkouts.WithLabelValues(label).Inc()
	return err
}
