package handlers

import (
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/storefront-service/internal/api/dto"
	"github.com/spec-kit/storefront-service/internal/domain"
	"github.com/spec-kit/storefront-service/internal/service"
	apperrors "github.com/spec-kit/storefront-service/pkg/util"
)

// CartsHandler exposes cart aggregate endpoints.
type CartsHandler struct {
	carts *service.CartService
}

// NewCartsHandler constructs handler.
func NewCartsHandler(carts *service.CartService) *CartsHandler {
	return &CartsHandler{carts: carts}
}

// Create handles POST /api/carts.
func (h *CartsHandler) Create(c *fiber.Ctx) error {
	cart, err := h.carts.Create(c.UserContext())
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, dto.NewCartResponse(cart))
}

// Get handles GET /api/carts/:cid.
func (h *CartsHandler) Get(c *fiber.Ctx) error {
	cart, err := h.carts.GetByID(c.UserContext(), c.Params("cid"))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, dto.NewCartResponse(cart))
}

// Replace handles PUT /api/carts/:cid.
func (h *CartsHandler) Replace(c *fiber.Ctx) error {
	var req dto.CartReplaceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	cart, err := h.carts.Replace(c.UserContext(), c.Params("cid"), req.Lines())
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, dto.NewCartResponse(cart))
}

// AddProduct handles POST /api/carts/:cid/product/:pid.
func (h *CartsHandler) AddProduct(c *fiber.Ctx) error {
	mutation, err := h.carts.AddProduct(c.UserContext(), c.Params("cid"), c.Params("pid"))
	if err != nil {
		return err
	}
	if err := h.mutationFailure(c, mutation); err != nil {
		return err
	}
	return success(c, http.StatusCreated, dto.NewCartResponse(mutation.Cart))
}

// SetQuantity handles PUT /api/carts/:cid/product/:pid.
func (h *CartsHandler) SetQuantity(c *fiber.Ctx) error {
	var req dto.SetQuantityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	mutation, err := h.carts.SetQuantity(c.UserContext(), c.Params("cid"), c.Params("pid"), req.Quantity)
	if err != nil {
		return err
	}
	if err := h.mutationFailure(c, mutation); err != nil {
		return err
	}
	return success(c, http.StatusOK, dto.NewCartResponse(mutation.Cart))
}

// RemoveProduct handles DELETE /api/carts/:cid/product/:pid.
func (h *CartsHandler) RemoveProduct(c *fiber.Ctx) error {
	mutation, err := h.carts.RemoveProduct(c.UserContext(), c.Params("cid"), c.Params("pid"))
	if err != nil {
		return err
	}
	if err := h.mutationFailure(c, mutation); err != nil {
		return err
	}
	return success(c, http.StatusOK, dto.NewCartResponse(mutation.Cart))
}

// Clear handles DELETE /api/carts/:cid.
func (h *CartsHandler) Clear(c *fiber.Ctx) error {
	cart, err := h.carts.ClearAll(c.UserContext(), c.Params("cid"))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, dto.NewCartResponse(cart))
}

// mutationFailure translates tri-flag results into 404s, reporting the
// missing product before the missing cart.
func (h *CartsHandler) mutationFailure(c *fiber.Ctx, mutation *domain.CartMutation) error {
	if !mutation.ProductExists {
		return apperrors.NewNotFound(
			fmt.Sprintf("product with ID %s", c.Params("pid")),
			map[string]any{"product_id": c.Params("pid")},
		)
	}
	if !mutation.CartExists {
		return apperrors.NewNotFound(
			fmt.Sprintf("cart with ID %s", c.Params("cid")),
			map[string]any{"cart_id": c.Params("cid")},
		)
	}
	return nil
}
