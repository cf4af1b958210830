package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Slug     string  `json:"slug"`
	ParentID *string `json:"parent_id,omitempty"`
	ImageURL *string `json:"image_url,omitempty"`
}

type Product struct {
	ID          string    `json:"id"`
	CategoryID  string    `json:"category_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Slug        string    `json:"slug"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SellableItem is the purchasable variant of a product, with its own SKU,
// price and stock. The checkout core reads price and stock from here at
// decision time.
type SellableItem struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	Active    bool            `json:"active"`
}

type Variation struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type VariationOption struct {
	ID          string `json:"id"`
	VariationID string `json:"variation_id"`
	Name        string `json:"name"`
}

// ItemOption pairs a variation with the option an item carries for it,
// e.g. ("color", "navy").
type ItemOption struct {
	Variation string `json:"variation"`
	Option    string `json:"option"`
}
