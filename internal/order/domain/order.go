package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "PENDING"
	StatusProcessing OrderStatus = "PROCESSING"
	StatusShipped    OrderStatus = "SHIPPED"
	StatusDelivered  OrderStatus = "DELIVERED"
	StatusCancelled  OrderStatus = "CANCELLED"
)

// Recognized reports whether s is one of the five order statuses. The status
// guard intentionally checks membership only, not ordering.
func Recognized(s OrderStatus) bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// ActiveStatuses are the states in which an order still pins its shipping
// address against deletion.
var ActiveStatuses = []OrderStatus{StatusPending, StatusProcessing, StatusShipped}

// OrderLine is immutable once created. PriceAtTime is the catalog price
// captured at order creation and never recomputed.
type OrderLine struct {
	ItemID      string          `json:"item_id"`
	Qty         int             `json:"qty"`
	PriceAtTime decimal.Decimal `json:"price_at_time"`
}

func (l OrderLine) Subtotal() decimal.Decimal {
	return l.PriceAtTime.Mul(decimal.NewFromInt(int64(l.Qty)))
}

type Order struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	AddressID string          `json:"address_id,omitempty"`
	Lines     []OrderLine     `json:"lines"`
	Status    OrderStatus     `json:"status"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewOrder snapshots the given lines into a pending order. Total is the sum
// of line subtotals at creation time.
func NewOrder(id, userID, addressID string, lines []OrderLine) Order {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	now := time.Now().UTC()
	return Order{
		ID:        id,
		UserID:    userID,
		AddressID: addressID,
		Lines:     lines,
		Status:    StatusPending,
		Total:     total,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
