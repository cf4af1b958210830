// Package memory provides an in-memory checkout store for tests. A single
// mutex stands in for row locks: transactions are serialized end to end,
// and staged writes apply only on Commit.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/gocommerce/commerce-backend/internal/checkout/application"
	catalog "github.com/gocommerce/commerce-backend/internal/catalog/domain"
	order "github.com/gocommerce/commerce-backend/internal/order/domain"
	"github.com/gocommerce/commerce-backend/pkg/outbox"
)

type Store struct {
	mu sync.Mutex

	Items  map[string]catalog.SellableItem
	Carts  map[string]map[string]int
	Orders map[string]order.Order
	Events []outbox.Event
}

func NewStore() *Store {
	return &Store{
		Items:  map[string]catalog.SellableItem{},
		Carts:  map[string]map[string]int{},
		Orders: map[string]order.Order{},
	}
}

func (s *Store) Begin(ctx context.Context) (application.Tx, error) {
	s.mu.Lock()
	return &memTx{store: s}, nil
}

type memTx struct {
	store *Store
	done  bool

	decrements map[string]int
	orders     []order.Order
	events     []outbox.Event
	clearCarts []string
}

func (t *memTx) CartLines(ctx context.Context, userID string) (map[string]int, error) {
	lines := map[string]int{}
	for id, qty := range t.store.Carts[userID] {
		lines[id] = qty
	}
	return lines, nil
}

func (t *memTx) LockItems(ctx context.Context, ids []string) ([]catalog.SellableItem, error) {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)

	var out []catalog.SellableItem
	for _, id := range sorted {
		if it, ok := t.store.Items[id]; ok {
			out = append(out, it)
		}
	}
	return out, nil
}

func (t *memTx) DecrementStock(ctx context.Context, itemID string, qty int) error {
	if t.decrements == nil {
		t.decrements = map[string]int{}
	}
	t.decrements[itemID] += qty
	return nil
}

func (t *memTx) InsertOrder(ctx context.Context, o order.Order) error {
	t.orders = append(t.orders, o)
	return nil
}

func (t *memTx) AppendEvent(ctx context.Context, ev outbox.Event) error {
	t.events = append(t.events, ev)
	return nil
}

func (t *memTx) ClearCart(ctx context.Context, userID string) error {
	t.clearCarts = append(t.clearCarts, userID)
	return nil
}

func (t *memTx) Commit(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	for id, qty := range t.decrements {
		it := t.store.Items[id]
		it.Stock -= qty
		t.store.Items[id] = it
	}
	for _, o := range t.orders {
		t.store.Orders[o.ID] = o
	}
	t.store.Events = append(t.store.Events, t.events...)
	for _, userID := range t.clearCarts {
		delete(t.store.Carts, userID)
	}
	t.store.mu.Unlock()
	return nil
}

func (t *memTx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.store.mu.Unlock()
	return nil
}
