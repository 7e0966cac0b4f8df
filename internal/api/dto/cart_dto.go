package dto

import "github.com/spec-kit/storefront-service/internal/domain"

// CartLineRequest is one line in a cart replace payload.
type CartLineRequest struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
}

// CartReplaceRequest payload for wholesale line replacement.
type CartReplaceRequest struct {
	Products []CartLineRequest `json:"products"`
}

// SetQuantityRequest payload for line quantity updates.
type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// CartLineResponse is one (product, quantity) pair in a cart response.
type CartLineResponse struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
}

// CartResponse is the client-facing cart shape.
type CartResponse struct {
	ID       string             `json:"id"`
	Products []CartLineResponse `json:"products"`
}

// NewCartResponse maps a domain cart, preserving line order.
func NewCartResponse(cart *domain.Cart) CartResponse {
	lines := make([]CartLineResponse, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		lines = append(lines, CartLineResponse{Product: line.ProductID, Quantity: line.Quantity})
	}
	return CartResponse{ID: cart.ID, Products: lines}
}

// Lines converts a replace payload into domain lines, preserving order.
func (r CartReplaceRequest) Lines() []domain.CartLine {
	lines := make([]domain.CartLine, 0, len(r.Products))
	for _, line := range r.Products {
		lines = append(lines, domain.CartLine{ProductID: line.Product, Quantity: line.Quantity})
	}
	return lines
}
