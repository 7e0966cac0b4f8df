package domain

import "time"

// CartLine is one (product, quantity) pair inside a cart. A cart holds at
// most one line per distinct product; adding an already-present product
// merges quantities instead of appending a second line.
type CartLine struct {
	ProductID string
	Quantity  int
}

// Cart is the aggregate root for a shopping cart. Lines keep insertion
// order; removing a line compacts the sequence without reordering the rest.
type Cart struct {
	ID        string
	Lines     []CartLine
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CartMutation is the result of a line-level cart operation. Both existence
// conditions are checked independently so callers can report a missing cart
// and a missing product as distinct failures from the same response shape.
// When either flag is false no mutation took place and Cart carries the
// unmodified state (nil when the cart itself is missing).
type CartMutation struct {
	Cart          *Cart
	CartExists    bool
	ProductExists bool
}
