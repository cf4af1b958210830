package domain

import "time"

type Address struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	City         string    `json:"city"`
	District     string    `json:"district"`
	Neighborhood string    `json:"neighborhood"`
	FullAddress  string    `json:"full_address"`
	PostalCode   string    `json:"postal_code"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
