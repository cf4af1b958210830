package application_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gocommerce/commerce-backend/internal/apperror"
	catalog "github.com/gocommerce/commerce-backend/internal/catalog/domain"
	"github.com/gocommerce/commerce-backend/internal/checkout/application"
	"github.com/gocommerce/commerce-backend/internal/checkout/infrastructure/memory"
	identity "github.com/gocommerce/commerce-backend/internal/identity/domain"
	order "github.com/gocommerce/commerce-backend/internal/order/domain"
	"github.com/gocommerce/commerce-backend/pkg/metrics"
)

type fakeAddressBook struct {
	owned map[string]string
}

func (f *fakeAddressBook) Owns(_ context.Context, addressID, userID string) (bool, error) {
	return f.owned[addressID] == userID, nil
}

type fakeInvalidator struct {
	mu    sync.Mutex
	users []string
}

func (f *fakeInvalidator) Invalidate(userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users = append(f.users, userID)
}

func price(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

var buyer = identity.Principal{ID: "user-1", Email: "buyer@example.com"}

func newCheckout() (*application.Service, *memory.Store, *fakeInvalidator) {
	store := memory.NewStore()
	store.Items["item-a"] = catalog.SellableItem{ID: "item-a", Name: "Widget", Price: price("10.00"), Stock: 5, Active: true}
	store.Items["item-b"] = catalog.SellableItem{ID: "item-b", Name: "Gadget", Price: price("5.00"), Stock: 5, Active: true}
	store.Items["item-x"] = catalog.SellableItem{ID: "item-x", Name: "Retired", Price: price("1.00"), Stock: 5, Active: false}

	addrs := &fakeAddressBook{owned: map[string]string{"addr-1": buyer.ID}}
	inv := &fakeInvalidator{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return application.NewService(log, store, addrs, inv, nil), store, inv
}

func TestFromCartPlacesOrder(t *testing.T) {
	svc, store, inv := newCheckout()
	store.Carts[buyer.ID] = map[string]int{"item-a": 2, "item-b": 1}

	o, err := svc.FromCart(context.Background(), buyer, "addr-1")
	require.NoError(t, err)

	assert.Equal(t, order.StatusPending, o.Status)
	assert.True(t, o.Total.Equal(price("25.00")), "total = %s", o.Total)
	require.Len(t, o.Lines, 2)
	assert.Equal(t, "item-a", o.Lines[0].ItemID)
	assert.True(t, o.Lines[0].PriceAtTime.Equal(price("10.00")))

	assert.Equal(t, 3, store.Items["item-a"].Stock)
	assert.Equal(t, 4, store.Items["item-b"].Stock)
	assert.Empty(t, store.Carts[buyer.ID])
	assert.Equal(t, []string{buyer.ID}, inv.users)

	require.Len(t, store.Events, 1)
	assert.Equal(t, "OrderCreated", store.Events[0].Type)
	assert.Equal(t, o.ID, store.Events[0].AggregateID)

	var ev order.OrderCreatedEvent
	require.NoError(t, json.Unmarshal(store.Events[0].Payload, &ev))
	assert.Equal(t, "25.00", ev.Total)
	assert.Len(t, ev.Lines, 2)
}

func TestFromCartEmptyCart(t *testing.T) {
	svc, _, _ := newCheckout()

	_, err := svc.FromCart(context.Background(), buyer, "addr-1")
	assert.ErrorIs(t, err, apperror.ErrEmptyCart)
}

func TestFromCartForeignAddress(t *testing.T) {
	svc, store, _ := newCheckout()
	store.Carts[buyer.ID] = map[string]int{"item-a": 1}

	_, err := svc.FromCart(context.Background(), buyer, "addr-unknown")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Equal(t, 5, store.Items["item-a"].Stock)
}

func TestFromCartInsufficientStockLeavesNoTrace(t *testing.T) {
	svc, store, inv := newCheckout()
	store.Carts[buyer.ID] = map[string]int{"item-a": 2, "item-b": 9}

	_, err := svc.FromCart(context.Background(), buyer, "addr-1")
	var stockErr *apperror.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "item-b", stockErr.ItemID)
	assert.Equal(t, 5, stockErr.Available)

	assert.Equal(t, 5, store.Items["item-a"].Stock)
	assert.Equal(t, 5, store.Items["item-b"].Stock)
	assert.Len(t, store.Carts[buyer.ID], 2)
	assert.Empty(t, store.Orders)
	assert.Empty(t, store.Events)
	assert.Empty(t, inv.users)
}

func TestFromCartFirstFailingItemWins(t *testing.T) {
	svc, store, _ := newCheckout()
	// both lines exceed stock; the lower item ID decides the error
	store.Carts[buyer.ID] = map[string]int{"item-b": 9, "item-a": 9}

	_, err := svc.FromCart(context.Background(), buyer, "addr-1")
	var stockErr *apperror.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "item-a", stockErr.ItemID)
}

func TestFromCartInactiveItem(t *testing.T) {
	svc, store, _ := newCheckout()
	store.Carts[buyer.ID] = map[string]int{"item-x": 1}

	_, err := svc.FromCart(context.Background(), buyer, "addr-1")
	assert.ErrorIs(t, err, apperror.ErrItemUnavailable)
}

func TestFromCartUnknownItem(t *testing.T) {
	svc, store, _ := newCheckout()
	store.Carts[buyer.ID] = map[string]int{"item-gone": 1}

	_, err := svc.FromCart(context.Background(), buyer, "addr-1")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestFromCartRequiresUser(t *testing.T) {
	svc, _, _ := newCheckout()

	_, err := svc.FromCart(context.Background(), identity.Principal{}, "addr-1")
	assert.ErrorIs(t, err, apperror.ErrNotAuthenticated)
}

func TestFromLinesMergesDuplicates(t *testing.T) {
	svc, store, inv := newCheckout()
	store.Carts[buyer.ID] = map[string]int{"item-b": 1}

	o, err := svc.FromLines(context.Background(), buyer, "addr-1", []application.LineInput{
		{ItemID: "item-a", Qty: 1},
		{ItemID: "item-a", Qty: 2},
	})
	require.NoError(t, err)

	require.Len(t, o.Lines, 1)
	assert.Equal(t, 3, o.Lines[0].Qty)
	assert.Equal(t, 2, store.Items["item-a"].Stock)

	// the cart is untouched by a direct order
	assert.Equal(t, map[string]int{"item-b": 1}, store.Carts[buyer.ID])
	assert.Empty(t, inv.users)
}

func TestFromLinesValidatesInput(t *testing.T) {
	svc, _, _ := newCheckout()
	ctx := context.Background()

	_, err := svc.FromLines(ctx, buyer, "addr-1", nil)
	assert.ErrorIs(t, err, apperror.ErrEmptyCart)

	_, err = svc.FromLines(ctx, buyer, "addr-1", []application.LineInput{{ItemID: "item-a", Qty: 0}})
	assert.ErrorIs(t, err, apperror.ErrInvalidArgument)

	_, err = svc.FromLines(ctx, buyer, "addr-1", []application.LineInput{{Qty: 1}})
	assert.ErrorIs(t, err, apperror.ErrInvalidArgument)
}

func TestConcurrentCheckoutsLastUnit(t *testing.T) {
	svc, store, _ := newCheckout()
	it := store.Items["item-a"]
	it.Stock = 1
	store.Items["item-a"] = it

	addrs := map[string]string{}
	users := []identity.Principal{
		{ID: "user-1"}, {ID: "user-2"}, {ID: "user-3"}, {ID: "user-4"},
	}
	for _, u := range users {
		addrs["addr-"+u.ID] = u.ID
	}
	svcAddrs := &fakeAddressBook{owned: addrs}
	svc = application.NewService(slog.New(slog.NewTextHandler(io.Discard, nil)), store, svcAddrs, &fakeInvalidator{}, nil)

	var wg sync.WaitGroup
	errs := make([]error, len(users))
	for i, u := range users {
		wg.Add(1)
		go func(i int, u identity.Principal) {
			defer wg.Done()
			_, errs[i] = svc.FromLines(context.Background(), u, "addr-"+u.ID, []application.LineInput{{ItemID: "item-a", Qty: 1}})
		}(i, u)
	}
	wg.Wait()

	var ok, rejected int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		var stockErr *apperror.InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		assert.Equal(t, 0, stockErr.Available)
		rejected++
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, len(users)-1, rejected)
	assert.Equal(t, 0, store.Items["item-a"].Stock)
	assert.Len(t, store.Orders, 1)
}

func TestOutcomeCounterCoversValidationFailures(t *testing.T) {
	store := memory.NewStore()
	store.Items["item-a"] = catalog.SellableItem{ID: "item-a", Name: "Widget", Price: price("10.00"), Stock: 5, Active: true}
	addrs := &fakeAddressBook{owned: map[string]string{"addr-1": buyer.ID}}
	m := &metrics.ServerMetrics{
		Checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{Name: "checkouts_total"}, []string{"outcome"}),
	}
	svc := application.NewService(slog.New(slog.NewTextHandler(io.Discard, nil)), store, addrs, &fakeInvalidator{}, m)
	ctx := context.Background()

	_, err := svc.FromLines(ctx, buyer, "addr-1", nil)
	require.ErrorIs(t, err, apperror.ErrEmptyCart)

	_, err = svc.FromLines(ctx, buyer, "addr-1", []application.LineInput{{ItemID: "item-a", Qty: 0}})
	require.ErrorIs(t, err, apperror.ErrInvalidArgument)

	_, err = svc.FromLines(ctx, buyer, "addr-9", []application.LineInput{{ItemID: "item-a", Qty: 1}})
	require.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = svc.FromCart(ctx, identity.Principal{}, "addr-1")
	require.ErrorIs(t, err, apperror.ErrNotAuthenticated)

	assert.Equal(t, 4.0, testutil.ToFloat64(m.Checkouts.WithLabelValues("rejected")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Checkouts.WithLabelValues("ok")))
}
