package domain

import "time"

// Review is a user's rating and comment on a product. One review per
// (user, product).
type Review struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	Content   string    `json:"content"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

// RatingSummary aggregates a product's reviews. Distribution holds the count
// of 1-star through 5-star reviews, in that order.
type RatingSummary struct {
	Average      float64 `json:"average"`
	Total        int     `json:"total"`
	Distribution [5]int  `json:"distribution"`
}
