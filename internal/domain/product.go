package domain

import "time"

// Product is a catalog entry. Carts reference products by ID but never own
// them.
type Product struct {
	ID          string
	Title       string
	Description string
	Code        string
	Price       float64
	Status      bool
	Stock       int
	Category    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
