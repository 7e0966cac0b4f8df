package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/storefront-service/internal/domain"
	"github.com/spec-kit/storefront-service/internal/events"
	"github.com/spec-kit/storefront-service/internal/repository"
	apperrors "github.com/spec-kit/storefront-service/pkg/util"
)

// CatalogService coordinates product catalog workflows.
type CatalogService struct {
	products        repository.ProductRepository
	cache           *ProductCache
	dispatcher      events.Dispatcher
	defaultPageSize int
}

// CatalogDependencies bundles requirements for catalog service.
type CatalogDependencies struct {
	ProductRepo     repository.ProductRepository
	Cache           *ProductCache
	Dispatcher      events.Dispatcher
	DefaultPageSize int
}

// NewCatalogService constructs the service.
func NewCatalogService(deps CatalogDependencies) *CatalogService {
	pageSize := deps.DefaultPageSize
	if pageSize <= 0 {
		pageSize = 10
	}
	return &CatalogService{
		products:        deps.ProductRepo,
		cache:           deps.Cache,
		dispatcher:      deps.Dispatcher,
		defaultPageSize: pageSize,
	}
}

// ListInput holds catalog query options taken from the request.
type ListInput struct {
	Limit    int
	Page     int
	Sort     string
	Category string
	Status   *bool
}

// List returns catalog entries, delegating pagination and sorting to storage.
func (s *CatalogService) List(ctx context.Context, input ListInput) ([]domain.Product, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = s.defaultPageSize
	}
	page := input.Page
	if page < 1 {
		page = 1
	}

	filter := repository.ProductFilter{
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
	if input.Category != "" {
		filter.Category = &input.Category
	}
	filter.Status = input.Status

	switch strings.ToLower(input.Sort) {
	case "asc":
		filter.PriceSort = "asc"
	case "desc":
		filter.PriceSort = "desc"
	}

	products, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return products, nil
}

// Get fetches a product, serving repeated reads from the cache.
func (s *CatalogService) Get(ctx context.Context, id string) (*domain.Product, error) {
	if cached, ok := s.cache.Get(ctx, id); ok {
		return cached, nil
	}

	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("product", map[string]any{"product_id": id})
		}
		return nil, apperrors.MapError(err)
	}

	s.cache.Set(ctx, product)
	return product, nil
}

// ProductInput describes a product create/update payload.
type ProductInput struct {
	Title       string
	Description string
	Code        string
	Price       float64
	Status      bool
	Stock       int
	Category    string
}

// Create adds a new catalog entry.
func (s *CatalogService) Create(ctx context.Context, input ProductInput) (*domain.Product, error) {
	if input.Title == "" || input.Code == "" {
		return nil, apperrors.NewValidationError("title and code are required", nil)
	}
	if input.Price < 0 {
		return nil, apperrors.NewValidationError("price must not be negative", nil)
	}

	product := &domain.Product{
		Title:       input.Title,
		Description: input.Description,
		Code:        input.Code,
		Price:       input.Price,
		Status:      input.Status,
		Stock:       input.Stock,
		Category:    input.Category,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.EventProductCreated, product.ID, events.ProductChangedPayload{
		Title:    product.Title,
		Category: product.Category,
	})
	return product, nil
}

// Update overwrites an existing catalog entry.
func (s *CatalogService) Update(ctx context.Context, id string, input ProductInput) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("product", map[string]any{"product_id": id})
		}
		return nil, apperrors.MapError(err)
	}

	product.Title = input.Title
	product.Description = input.Description
	product.Code = input.Code
	product.Price = input.Price
	product.Status = input.Status
	product.Stock = input.Stock
	product.Category = input.Category

	if err := s.products.Update(ctx, product); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("product", map[string]any{"product_id": id})
		}
		return nil, apperrors.MapError(err)
	}

	s.cache.Invalidate(ctx, id)
	s.publish(ctx, events.EventProductUpdated, id, events.ProductChangedPayload{
		Title:    product.Title,
		Category: product.Category,
	})
	return product, nil
}

// Delete removes a catalog entry.
func (s *CatalogService) Delete(ctx context.Context, id string) error {
	if err := s.products.Delete(ctx, id); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("product", map[string]any{"product_id": id})
		}
		return apperrors.MapError(err)
	}

	s.cache.Invalidate(ctx, id)
	s.publish(ctx, events.EventProductDeleted, id, nil)
	return nil
}

func (s *CatalogService) publish(ctx context.Context, eventType events.EventType, entityID string, payload any) {
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
