package application

import (
	"context"

	"github.com/gocommerce/commerce-backend/internal/order/domain"
)

type OrderRepository interface {
	Get(ctx context.Context, id string) (domain.Order, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Order, error)
	ListAll(ctx context.Context, limit, offset int) ([]domain.Order, error)
	// SetStatusWithOutbox updates the status and appends the status-changed
	// event to the outbox in one transaction. When the new status is
	// CANCELLED it marks the order restocked under the same row lock and
	// reports restock=true exactly once per order, no matter how often or
	// concurrently the order is cancelled.
	SetStatusWithOutbox(ctx context.Context, orderID string, status domain.OrderStatus, payload []byte, traceparent string) (restock bool, err error)
}
