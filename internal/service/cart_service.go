package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/storefront-service/internal/domain"
	"github.com/spec-kit/storefront-service/internal/events"
	"github.com/spec-kit/storefront-service/internal/repository"
	apperrors "github.com/spec-kit/storefront-service/pkg/util"
)

// CartService owns the invariants of a cart's line collection. Line-level
// operations check cart and product existence independently before mutating
// and report both through the CartMutation tri-flag result.
type CartService struct {
	carts      repository.CartRepository
	products   repository.ProductRepository
	dispatcher events.Dispatcher
}

// CartDependencies bundles requirements for cart service.
type CartDependencies struct {
	CartRepo    repository.CartRepository
	ProductRepo repository.ProductRepository
	Dispatcher  events.Dispatcher
}

// NewCartService constructs the service.
func NewCartService(deps CartDependencies) *CartService {
	return &CartService{
		carts:      deps.CartRepo,
		products:   deps.ProductRepo,
		dispatcher: deps.Dispatcher,
	}
}

// Create returns a new empty cart with a freshly assigned identifier.
func (s *CartService) Create(ctx context.Context) (*domain.Cart, error) {
	cart := &domain.Cart{}
	if err := s.carts.Create(ctx, cart); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, events.EventCartCreated, cart.ID, nil)
	return cart, nil
}

// GetByID fetches a cart with its lines in insertion order.
func (s *CartService) GetByID(ctx context.Context, id string) (*domain.Cart, error) {
	cart, err := s.carts.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("cart", map[string]any{"cart_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return cart, nil
}

// Replace performs a wholesale replacement of the line collection. Replacing
// with an identical collection is a successful no-op. Duplicate product
// references in the input are merged to keep the one-line-per-product
// invariant.
func (s *CartService) Replace(ctx context.Context, id string, lines []domain.CartLine) (*domain.Cart, error) {
	merged, err := mergeLines(lines)
	if err != nil {
		return nil, err
	}

	if err := s.carts.ReplaceLines(ctx, id, merged); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("cart", map[string]any{"cart_id": id})
		}
		return nil, apperrors.MapError(err)
	}

	cart, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.EventCartReplaced, id, events.CartLinePayload{LineCount: events.CartLines(cart)})
	return cart, nil
}

// AddProduct merges the product into the cart: an existing line for the
// product has its quantity incremented by one, otherwise a quantity-1 line is
// appended. The increment-or-insert is a single storage statement, so
// concurrent adds never lose an update.
func (s *CartService) AddProduct(ctx context.Context, cartID, productID string) (*domain.CartMutation, error) {
	mutation, err := s.checkExistence(ctx, cartID, productID)
	if err != nil {
		return nil, err
	}
	if !mutation.CartExists || !mutation.ProductExists {
		return mutation, nil
	}

	if err := s.carts.UpsertLine(ctx, cartID, productID); err != nil {
		return nil, apperrors.MapError(err)
	}

	cart, err := s.GetByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	mutation.Cart = cart
	s.publish(ctx, events.EventCartLineAdded, cartID, events.CartLinePayload{
		ProductID: productID,
		LineCount: events.CartLines(cart),
	})
	return mutation, nil
}

// SetQuantity sets the line quantity for the product. A non-positive quantity
// is rejected; removing a line is RemoveProduct's job, not a zero quantity.
func (s *CartService) SetQuantity(ctx context.Context, cartID, productID string, quantity int) (*domain.CartMutation, error) {
	if quantity < 1 {
		return nil, apperrors.NewValidationError("quantity must be a positive integer", map[string]any{"quantity": quantity})
	}

	mutation, err := s.checkExistence(ctx, cartID, productID)
	if err != nil {
		return nil, err
	}
	if !mutation.CartExists || !mutation.ProductExists {
		return mutation, nil
	}

	if err := s.carts.SetLineQuantity(ctx, cartID, productID, quantity); err != nil {
		return nil, apperrors.MapError(err)
	}

	cart, err := s.GetByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	mutation.Cart = cart
	s.publish(ctx, events.EventCartLineUpdated, cartID, events.CartLinePayload{
		ProductID: productID,
		Quantity:  quantity,
		LineCount: events.CartLines(cart),
	})
	return mutation, nil
}

// RemoveProduct removes the matching line. Removing a product that is not in
// the cart leaves the cart unchanged and still succeeds.
func (s *CartService) RemoveProduct(ctx context.Context, cartID, productID string) (*domain.CartMutation, error) {
	mutation, err := s.checkExistence(ctx, cartID, productID)
	if err != nil {
		return nil, err
	}
	if !mutation.CartExists || !mutation.ProductExists {
		return mutation, nil
	}

	if err := s.carts.RemoveLine(ctx, cartID, productID); err != nil {
		return nil, apperrors.MapError(err)
	}

	cart, err := s.GetByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	mutation.Cart = cart
	s.publish(ctx, events.EventCartLineRemoved, cartID, events.CartLinePayload{
		ProductID: productID,
		LineCount: events.CartLines(cart),
	})
	return mutation, nil
}

// ClearAll empties the line collection and returns the now-empty cart.
// Clearing an already-empty cart is a successful no-op.
func (s *CartService) ClearAll(ctx context.Context, cartID string) (*domain.Cart, error) {
	exists, err := s.carts.Exists(ctx, cartID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !exists {
		return nil, apperrors.NewNotFound("cart", map[string]any{"cart_id": cartID})
	}

	if err := s.carts.ClearLines(ctx, cartID); err != nil {
		return nil, apperrors.MapError(err)
	}

	cart, err := s.GetByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.EventCartCleared, cartID, nil)
	return cart, nil
}

// checkExistence verifies both operands independently. When either is missing
// no mutation happens; the unchanged cart is attached when it exists so the
// caller can report precise state.
func (s *CartService) checkExistence(ctx context.Context, cartID, productID string) (*domain.CartMutation, error) {
	productExists, err := s.products.Exists(ctx, productID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	cartExists, err := s.carts.Exists(ctx, cartID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	mutation := &domain.CartMutation{CartExists: cartExists, ProductExists: productExists}
	if cartExists && !productExists {
		cart, err := s.GetByID(ctx, cartID)
		if err != nil {
			return nil, err
		}
		mutation.Cart = cart
	}
	return mutation, nil
}

func mergeLines(lines []domain.CartLine) ([]domain.CartLine, error) {
	index := make(map[string]int, len(lines))
	merged := make([]domain.CartLine, 0, len(lines))
	for _, line := range lines {
		if line.ProductID == "" {
			return nil, apperrors.NewValidationError("line product reference required", nil)
		}
		if line.Quantity < 1 {
			return nil, apperrors.NewValidationError("line quantity must be a positive integer", map[string]any{
				"product_id": line.ProductID,
				"quantity":   line.Quantity,
			})
		}
		if at, ok := index[line.ProductID]; ok {
			merged[at].Quantity += line.Quantity
			continue
		}
		index[line.ProductID] = len(merged)
		merged = append(merged, line)
	}
	return merged, nil
}

func (s *CartService) publish(ctx context.Context, eventType events.EventType, entityID string, payload any) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		EntityID:  entityID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
