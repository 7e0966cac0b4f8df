package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/storefront-service/internal/domain"
	"github.com/spec-kit/storefront-service/internal/repository"
	apperrors "github.com/spec-kit/storefront-service/pkg/util"
)

type fakeCartRepo struct {
	carts     map[string][]domain.CartLine
	mutations int
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{carts: make(map[string][]domain.CartLine)}
}

func (f *fakeCartRepo) Create(_ context.Context, cart *domain.Cart) error {
	cart.ID = uuid.NewString()
	f.carts[cart.ID] = nil
	return nil
}

func (f *fakeCartRepo) GetByID(_ context.Context, id string) (*domain.Cart, error) {
	lines, ok := f.carts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &domain.Cart{ID: id, Lines: append([]domain.CartLine(nil), lines...)}, nil
}

func (f *fakeCartRepo) Exists(_ context.Context, id string) (bool, error) {
	_, ok := f.carts[id]
	return ok, nil
}

func (f *fakeCartRepo) ReplaceLines(_ context.Context, id string, lines []domain.CartLine) error {
	if _, ok := f.carts[id]; !ok {
		return pgx.ErrNoRows
	}
	f.mutations++
	f.carts[id] = append([]domain.CartLine(nil), lines...)
	return nil
}

func (f *fakeCartRepo) UpsertLine(_ context.Context, cartID, productID string) error {
	f.mutations++
	lines := f.carts[cartID]
	for i := range lines {
		if lines[i].ProductID == productID {
			lines[i].Quantity++
			return nil
		}
	}
	f.carts[cartID] = append(lines, domain.CartLine{ProductID: productID, Quantity: 1})
	return nil
}

func (f *fakeCartRepo) SetLineQuantity(_ context.Context, cartID, productID string, quantity int) error {
	f.mutations++
	lines := f.carts[cartID]
	for i := range lines {
		if lines[i].ProductID == productID {
			lines[i].Quantity = quantity
			return nil
		}
	}
	f.carts[cartID] = append(lines, domain.CartLine{ProductID: productID, Quantity: quantity})
	return nil
}

func (f *fakeCartRepo) RemoveLine(_ context.Context, cartID, productID string) error {
	f.mutations++
	lines := f.carts[cartID]
	for i := range lines {
		if lines[i].ProductID == productID {
			f.carts[cartID] = append(lines[:i:i], lines[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeCartRepo) ClearLines(_ context.Context, cartID string) error {
	f.mutations++
	f.carts[cartID] = nil
	return nil
}

type fakeProductRepo struct {
	products   map[string]domain.Product
	lastFilter repository.ProductFilter
	getCalls   int
}

func newFakeProductRepo(ids ...string) *fakeProductRepo {
	f := &fakeProductRepo{products: make(map[string]domain.Product)}
	for _, id := range ids {
		f.products[id] = domain.Product{ID: id, Title: id, Status: true}
	}
	return f
}

func (f *fakeProductRepo) Create(_ context.Context, product *domain.Product) error {
	product.ID = uuid.NewString()
	f.products[product.ID] = *product
	return nil
}

func (f *fakeProductRepo) Update(_ context.Context, product *domain.Product) error {
	if _, ok := f.products[product.ID]; !ok {
		return pgx.ErrNoRows
	}
	f.products[product.ID] = *product
	return nil
}

func (f *fakeProductRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.products[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.products, id)
	return nil
}

func (f *fakeProductRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	f.getCalls++
	product, ok := f.products[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &product, nil
}

func (f *fakeProductRepo) Exists(_ context.Context, id string) (bool, error) {
	_, ok := f.products[id]
	return ok, nil
}

func (f *fakeProductRepo) List(_ context.Context, filter repository.ProductFilter) ([]domain.Product, error) {
	f.lastFilter = filter
	out := make([]domain.Product, 0, len(f.products))
	for _, product := range f.products {
		out = append(out, product)
	}
	return out, nil
}

func newCartFixture(productIDs ...string) (*CartService, *fakeCartRepo, *fakeProductRepo) {
	carts := newFakeCartRepo()
	products := newFakeProductRepo(productIDs...)
	svc := NewCartService(CartDependencies{CartRepo: carts, ProductRepo: products})
	return svc, carts, products
}

func TestAddProductMergesDuplicate(t *testing.T) {
	svc, _, _ := newCartFixture("p1")
	ctx := context.Background()

	cart, err := svc.Create(ctx)
	require.NoError(t, err)
	require.Empty(t, cart.Lines)

	first, err := svc.AddProduct(ctx, cart.ID, "p1")
	require.NoError(t, err)
	require.True(t, first.CartExists)
	require.True(t, first.ProductExists)
	require.Equal(t, []domain.CartLine{{ProductID: "p1", Quantity: 1}}, first.Cart.Lines)

	second, err := svc.AddProduct(ctx, cart.ID, "p1")
	require.NoError(t, err)
	require.Equal(t, []domain.CartLine{{ProductID: "p1", Quantity: 2}}, second.Cart.Lines,
		"adding twice must merge into one line, never duplicate it")
}

func TestAddProductMissingCart(t *testing.T) {
	svc, carts, _ := newCartFixture("p1")

	mutation, err := svc.AddProduct(context.Background(), "missing-cart", "p1")
	require.NoError(t, err)
	require.False(t, mutation.CartExists)
	require.True(t, mutation.ProductExists)
	require.Nil(t, mutation.Cart)
	require.Zero(t, carts.mutations, "no mutation may happen when the cart is missing")
}

func TestAddProductMissingProduct(t *testing.T) {
	svc, carts, _ := newCartFixture()
	ctx := context.Background()

	cart, err := svc.Create(ctx)
	require.NoError(t, err)

	mutation, err := svc.AddProduct(ctx, cart.ID, "ghost")
	require.NoError(t, err)
	require.True(t, mutation.CartExists)
	require.False(t, mutation.ProductExists)
	require.NotNil(t, mutation.Cart)
	require.Empty(t, mutation.Cart.Lines)
	require.Zero(t, carts.mutations, "no mutation may happen when the product is missing")
}

func TestRemoveProductInvertsAdd(t *testing.T) {
	svc, _, _ := newCartFixture("p1", "p2")
	ctx := context.Background()

	cart, err := svc.Create(ctx)
	require.NoError(t, err)

	_, err = svc.AddProduct(ctx, cart.ID, "p1")
	require.NoError(t, err)
	added, err := svc.AddProduct(ctx, cart.ID, "p2")
	require.NoError(t, err)
	require.Len(t, added.Cart.Lines, 2)

	removed, err := svc.RemoveProduct(ctx, cart.ID, "p2")
	require.NoError(t, err)
	require.Equal(t, []domain.CartLine{{ProductID: "p1", Quantity: 1}}, removed.Cart.Lines)
}

func TestClearAll(t *testing.T) {
	svc, _, _ := newCartFixture("p1")
	ctx := context.Background()

	cart, err := svc.Create(ctx)
	require.NoError(t, err)
	_, err = svc.AddProduct(ctx, cart.ID, "p1")
	require.NoError(t, err)

	cleared, err := svc.ClearAll(ctx, cart.ID)
	require.NoError(t, err)
	require.Empty(t, cleared.Lines)

	// Clearing an already-empty cart is a successful no-op.
	cleared, err = svc.ClearAll(ctx, cart.ID)
	require.NoError(t, err)
	require.Empty(t, cleared.Lines)

	_, err = svc.ClearAll(ctx, "missing-cart")
	requireStatus(t, err, 404)
}

func TestSetQuantityRejectsNonPositive(t *testing.T) {
	svc, carts, _ := newCartFixture("p1")
	ctx := context.Background()

	cart, err := svc.Create(ctx)
	require.NoError(t, err)

	for _, quantity := range []int{0, -1} {
		_, err := svc.SetQuantity(ctx, cart.ID, "p1", quantity)
		requireStatus(t, err, 400)
	}
	require.Zero(t, carts.mutations)
}

func TestCartLifecycleScenario(t *testing.T) {
	svc, _, _ := newCartFixture("p1")
	ctx := context.Background()

	cart, err := svc.Create(ctx)
	require.NoError(t, err)
	require.Empty(t, cart.Lines)

	step, err := svc.AddProduct(ctx, cart.ID, "p1")
	require.NoError(t, err)
	require.Equal(t, []domain.CartLine{{ProductID: "p1", Quantity: 1}}, step.Cart.Lines)

	step, err = svc.AddProduct(ctx, cart.ID, "p1")
	require.NoError(t, err)
	require.Equal(t, []domain.CartLine{{ProductID: "p1", Quantity: 2}}, step.Cart.Lines)

	step, err = svc.SetQuantity(ctx, cart.ID, "p1", 5)
	require.NoError(t, err)
	require.Equal(t, []domain.CartLine{{ProductID: "p1", Quantity: 5}}, step.Cart.Lines)

	step, err = svc.RemoveProduct(ctx, cart.ID, "p1")
	require.NoError(t, err)
	require.Empty(t, step.Cart.Lines)
}

func TestReplace(t *testing.T) {
	svc, _, _ := newCartFixture("p1", "p2")
	ctx := context.Background()

	cart, err := svc.Create(ctx)
	require.NoError(t, err)

	replaced, err := svc.Replace(ctx, cart.ID, []domain.CartLine{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 1},
		{ProductID: "p1", Quantity: 3},
	})
	require.NoError(t, err)
	require.Equal(t, []domain.CartLine{
		{ProductID: "p1", Quantity: 5},
		{ProductID: "p2", Quantity: 1},
	}, replaced.Lines, "duplicate product references must merge")

	// Replacing with identical content is still a successful no-op.
	again, err := svc.Replace(ctx, cart.ID, replaced.Lines)
	require.NoError(t, err)
	require.Equal(t, replaced.Lines, again.Lines)

	_, err = svc.Replace(ctx, "missing-cart", nil)
	requireStatus(t, err, 404)

	_, err = svc.Replace(ctx, cart.ID, []domain.CartLine{{ProductID: "p1", Quantity: 0}})
	requireStatus(t, err, 400)
}

func TestLineOrderPreserved(t *testing.T) {
	svc, _, _ := newCartFixture("p1", "p2", "p3")
	ctx := context.Background()

	cart, err := svc.Create(ctx)
	require.NoError(t, err)

	for _, pid := range []string{"p1", "p2", "p3"} {
		_, err := svc.AddProduct(ctx, cart.ID, pid)
		require.NoError(t, err)
	}

	// Updating an early line must not reorder it.
	step, err := svc.SetQuantity(ctx, cart.ID, "p1", 9)
	require.NoError(t, err)
	require.Equal(t, []domain.CartLine{
		{ProductID: "p1", Quantity: 9},
		{ProductID: "p2", Quantity: 1},
		{ProductID: "p3", Quantity: 1},
	}, step.Cart.Lines)

	// Removal omits the slot without disturbing the rest.
	step, err = svc.RemoveProduct(ctx, cart.ID, "p2")
	require.NoError(t, err)
	require.Equal(t, []domain.CartLine{
		{ProductID: "p1", Quantity: 9},
		{ProductID: "p3", Quantity: 1},
	}, step.Cart.Lines)
}

func requireStatus(t *testing.T, err error, status int) {
	t.Helper()
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr))
	require.Equal(t, status, domainErr.HTTPStatus)
}
