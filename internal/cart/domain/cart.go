package domain

import "time"

// Cart is the mutable per-user collection of lines. Exactly one cart exists
// per user, created lazily on first access.
type Cart struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Lines     []CartLine `json:"-"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CartLine holds a sellable item reference and a quantity that is always at
// least 1; a line driven to zero is deleted, never stored.
type CartLine struct {
	ID     string `json:"id"`
	CartID string `json:"cart_id"`
	ItemID string `json:"item_id"`
	Qty    int    `json:"qty"`
}

func (c Cart) Empty() bool { return len(c.Lines) == 0 }

func (c Cart) FindLineByItem(itemID string) (CartLine, bool) {
	for _, l := range c.Lines {
		if l.ItemID == itemID {
			return l, true
		}
	}
	return CartLine{}, false
}
