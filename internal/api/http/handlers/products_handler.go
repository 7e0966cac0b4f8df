package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/storefront-service/internal/api/dto"
	"github.com/spec-kit/storefront-service/internal/service"
	apperrors "github.com/spec-kit/storefront-service/pkg/util"
)

// ProductsHandler exposes catalog endpoints.
type ProductsHandler struct {
	catalog *service.CatalogService
}

// NewProductsHandler constructs handler.
func NewProductsHandler(catalog *service.CatalogService) *ProductsHandler {
	return &ProductsHandler{catalog: catalog}
}

// List handles GET /api/products.
func (h *ProductsHandler) List(c *fiber.Ctx) error {
	input := service.ListInput{
		Sort:     c.Query("sort"),
		Category: c.Query("category"),
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil {
		input.Limit = limit
	}
	if page, err := strconv.Atoi(c.Query("page")); err == nil {
		input.Page = page
	}
	if raw := c.Query("status"); raw != "" {
		status, err := strconv.ParseBool(raw)
		if err != nil {
			return apperrors.NewValidationError("status must be a boolean", nil)
		}
		input.Status = &status
	}

	products, err := h.catalog.List(c.UserContext(), input)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, dto.NewProductListResponse(products))
}

// Get handles GET /api/products/:pid.
func (h *ProductsHandler) Get(c *fiber.Ctx) error {
	product, err := h.catalog.Get(c.UserContext(), c.Params("pid"))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, dto.NewProductResponse(product))
}

// Create handles POST /api/products.
func (h *ProductsHandler) Create(c *fiber.Ctx) error {
	var req dto.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	product, err := h.catalog.Create(c.UserContext(), productInput(req))
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, dto.NewProductResponse(product))
}

// Update handles PUT /api/products/:pid.
func (h *ProductsHandler) Update(c *fiber.Ctx) error {
	var req dto.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	product, err := h.catalog.Update(c.UserContext(), c.Params("pid"), productInput(req))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, dto.NewProductResponse(product))
}

// Delete handles DELETE /api/products/:pid.
func (h *ProductsHandler) Delete(c *fiber.Ctx) error {
	pid := c.Params("pid")
	if err := h.catalog.Delete(c.UserContext(), pid); err != nil {
		return err
	}
	return successMessage(c, http.StatusOK, "product "+pid+" deleted")
}

func productInput(req dto.ProductRequest) service.ProductInput {
	return service.ProductInput{
		Title:       req.Title,
		Description: req.Description,
		Code:        req.Code,
		Price:       req.Price,
		Status:      req.Status,
		Stock:       req.Stock,
		Category:    req.Category,
	}
}
