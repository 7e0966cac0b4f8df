package dto

import "github.com/spec-kit/storefront-service/internal/domain"

// ProductRequest payload for product create/update.
type ProductRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Code        string  `json:"code"`
	Price       float64 `json:"price"`
	Status      bool    `json:"status"`
	Stock       int     `json:"stock"`
	Category    string  `json:"category"`
}

// ProductResponse is the client-facing product shape.
type ProductResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Code        string  `json:"code"`
	Price       float64 `json:"price"`
	Status      bool    `json:"status"`
	Stock       int     `json:"stock"`
	Category    string  `json:"category"`
}

// NewProductResponse maps a domain product.
func NewProductResponse(product *domain.Product) ProductResponse {
	return ProductResponse{
		ID:          product.ID,
		Title:       product.Title,
		Description: product.Description,
		Code:        product.Code,
		Price:       product.Price,
		Status:      product.Status,
		Stock:       product.Stock,
		Category:    product.Category,
	}
}

// NewProductListResponse maps a product slice.
func NewProductListResponse(products []domain.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, NewProductResponse(&products[i]))
	}
	return out
}
