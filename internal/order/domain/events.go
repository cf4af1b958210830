package domain

type OrderCreatedEvent struct {
	OrderID string      `json:"order_id"`
	UserID  string      `json:"user_id"`
	Total   string      `json:"total"`
	Lines   []LineEvent `json:"lines"`
}

type LineEvent struct {
	ItemID      string `json:"item_id"`
	Qty         int    `json:"qty"`
	PriceAtTime string `json:"price_at_time"`
}

type OrderStatusChangedEvent struct {
	OrderID   string `json:"order_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}

func NewOrderCreatedEvent(o Order) OrderCreatedEvent {
	ev := OrderCreatedEvent{
		OrderID: o.ID,
		UserID:  o.UserID,
		Total:   o.Total.StringFixed(2),
	}
	for _, l := range o.Lines {
		ev.Lines = append(ev.Lines, LineEvent{
			ItemID:      l.ItemID,
			Qty:         l.Qty,
			PriceAtTime: l.PriceAtTime.StringFixed(2),
		})
	}
	return ev
}
