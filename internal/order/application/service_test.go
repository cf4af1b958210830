package application

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gocommerce/commerce-backend/internal/apperror"
	identity "github.com/gocommerce/commerce-backend/internal/identity/domain"
	"github.com/gocommerce/commerce-backend/internal/order/domain"
)

type fakeOrderRepo struct {
	orders    map[string]domain.Order
	restocked map[string]bool
	events    []string
}

func (f *fakeOrderRepo) Get(_ context.Context, id string) (domain.Order, error) {
	if o, ok := f.orders[id]; ok {
		return o, nil
	}
	return domain.Order{}, apperror.ErrNotFound
}

func (f *fakeOrderRepo) ListByUser(_ context.Context, userID string, _, _ int) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) ListAll(_ context.Context, _, _ int) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range f.orders {
		out = append(out, o)
	}
	return out, nil
}

func (f *fakeOrderRepo) SetStatusWithOutbox(_ context.Context, orderID string, status domain.OrderStatus, _ []byte, _ string) (bool, error) {
	o, ok := f.orders[orderID]
	if !ok {
		return false, apperror.ErrNotFound
	}
	if f.restocked == nil {
		f.restocked = map[string]bool{}
	}
	restock := status == domain.StatusCancelled && !f.restocked[orderID]
	if restock {
		f.restocked[orderID] = true
	}
	o.Status = status
	f.orders[orderID] = o
	f.events = append(f.events, string(status))
	return restock, nil
}

type fakeLedger struct {
	released map[string]int
}

func (f *fakeLedger) Reserve(_ context.Context, _ string, _ int) error { return nil }

func (f *fakeLedger) Release(_ context.Context, itemID string, qty int) error {
	if f.released == nil {
		f.released = map[string]int{}
	}
	f.released[itemID] += qty
	return nil
}

var (
	owner = identity.Principal{ID: "user-1"}
	staff = identity.Principal{ID: "user-9", Staff: true}
)

func newOrderService() (*Service, *fakeOrderRepo, *fakeLedger) {
	repo := &fakeOrderRepo{orders: map[string]domain.Order{
		"o-1": {
			ID:     "o-1",
			UserID: owner.ID,
			Status: domain.StatusPending,
			Lines: []domain.OrderLine{
				{ItemID: "item-a", Qty: 2, PriceAtTime: decimal.New(1000, -2)},
			},
		},
	}}
	ledger := &fakeLedger{}
	return NewService(slog.New(slog.NewTextHandler(io.Discard, nil)), repo, ledger), repo, ledger
}

func TestGetHidesForeignOrders(t *testing.T) {
	svc, _, _ := newOrderService()
	ctx := context.Background()

	_, err := svc.Get(ctx, owner, "o-1")
	require.NoError(t, err)

	_, err = svc.Get(ctx, identity.Principal{ID: "user-2"}, "o-1")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = svc.Get(ctx, staff, "o-1")
	assert.NoError(t, err)
}

func TestListAllNeedsStaff(t *testing.T) {
	svc, _, _ := newOrderService()

	_, err := svc.ListAll(context.Background(), owner, 0, 0)
	assert.ErrorIs(t, err, apperror.ErrNotAuthorized)

	orders, err := svc.ListAll(context.Background(), staff, 0, 0)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestSetStatusNeedsStaff(t *testing.T) {
	svc, _, _ := newOrderService()

	_, err := svc.SetStatus(context.Background(), owner, "o-1", domain.StatusShipped, "")
	assert.ErrorIs(t, err, apperror.ErrNotAuthorized)
}

func TestSetStatusRejectsUnrecognized(t *testing.T) {
	svc, _, _ := newOrderService()

	_, err := svc.SetStatus(context.Background(), staff, "o-1", "REFUNDED", "")
	assert.ErrorIs(t, err, apperror.ErrInvalidArgument)
}

func TestSetStatusAllowsAnyRecognizedTransition(t *testing.T) {
	svc, repo, _ := newOrderService()
	ctx := context.Background()

	o, err := svc.SetStatus(ctx, staff, "o-1", domain.StatusDelivered, "")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, o.Status)

	// backwards transitions are permitted
	o, err = svc.SetStatus(ctx, staff, "o-1", domain.StatusPending, "")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, o.Status)

	assert.Equal(t, []string{"DELIVERED", "PENDING"}, repo.events)
}

func TestCancelRestocks(t *testing.T) {
	svc, _, ledger := newOrderService()

	_, err := svc.SetStatus(context.Background(), staff, "o-1", domain.StatusCancelled, "")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"item-a": 2}, ledger.released)
}

func TestCancelTwiceRestocksOnce(t *testing.T) {
	svc, _, ledger := newOrderService()
	ctx := context.Background()

	_, err := svc.SetStatus(ctx, staff, "o-1", domain.StatusCancelled, "")
	require.NoError(t, err)
	_, err = svc.SetStatus(ctx, staff, "o-1", domain.StatusCancelled, "")
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"item-a": 2}, ledger.released)
}

func TestCancelUncancelCancelRestocksOnce(t *testing.T) {
	svc, _, ledger := newOrderService()
	ctx := context.Background()

	_, err := svc.SetStatus(ctx, staff, "o-1", domain.StatusCancelled, "")
	require.NoError(t, err)
	_, err = svc.SetStatus(ctx, staff, "o-1", domain.StatusPending, "")
	require.NoError(t, err)
	_, err = svc.SetStatus(ctx, staff, "o-1", domain.StatusCancelled, "")
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"item-a": 2}, ledger.released)
}
