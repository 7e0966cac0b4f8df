package http

import (
	"context"
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/storefront-service/internal/api/http/handlers"
	"github.com/spec-kit/storefront-service/internal/auth"
	"github.com/spec-kit/storefront-service/internal/config"
	"github.com/spec-kit/storefront-service/internal/domain"
	"github.com/spec-kit/storefront-service/internal/observability"
	"github.com/spec-kit/storefront-service/internal/repository"
	"github.com/spec-kit/storefront-service/internal/service"
)

type memUserRepo struct {
	users map[string]*domain.User
}

func (m *memUserRepo) Create(_ context.Context, user *domain.User) error {
	user.ID = "u-" + user.Email
	m.users[user.ID] = user
	return nil
}

func (m *memUserRepo) Update(_ context.Context, user *domain.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	if user, ok := m.users[id]; ok {
		return user, nil
	}
	return nil, pgx.ErrNoRows
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memUserRepo) GetByProvider(_ context.Context, provider, providerID string) (*domain.User, error) {
	for _, user := range m.users {
		if user.Provider != nil && *user.Provider == provider &&
			user.ProviderID != nil && *user.ProviderID == providerID {
			return user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type memCartRepo struct {
	carts map[string][]domain.CartLine
}

func (m *memCartRepo) Create(_ context.Context, cart *domain.Cart) error {
	cart.ID = "c1"
	m.carts[cart.ID] = nil
	return nil
}

func (m *memCartRepo) GetByID(_ context.Context, id string) (*domain.Cart, error) {
	lines, ok := m.carts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &domain.Cart{ID: id, Lines: append([]domain.CartLine(nil), lines...)}, nil
}

func (m *memCartRepo) Exists(_ context.Context, id string) (bool, error) {
	_, ok := m.carts[id]
	return ok, nil
}

func (m *memCartRepo) ReplaceLines(_ context.Context, id string, lines []domain.CartLine) error {
	if _, ok := m.carts[id]; !ok {
		return pgx.ErrNoRows
	}
	m.carts[id] = append([]domain.CartLine(nil), lines...)
	return nil
}

func (m *memCartRepo) UpsertLine(_ context.Context, cartID, productID string) error {
	lines := m.carts[cartID]
	for i := range lines {
		if lines[i].ProductID == productID {
			lines[i].Quantity++
			return nil
		}
	}
	m.carts[cartID] = append(lines, domain.CartLine{ProductID: productID, Quantity: 1})
	return nil
}

func (m *memCartRepo) SetLineQuantity(_ context.Context, cartID, productID string, quantity int) error {
	lines := m.carts[cartID]
	for i := range lines {
		if lines[i].ProductID == productID {
			lines[i].Quantity = quantity
			return nil
		}
	}
	m.carts[cartID] = append(lines, domain.CartLine{ProductID: productID, Quantity: quantity})
	return nil
}

func (m *memCartRepo) RemoveLine(_ context.Context, cartID, productID string) error {
	lines := m.carts[cartID]
	for i := range lines {
		if lines[i].ProductID == productID {
			m.carts[cartID] = append(lines[:i:i], lines[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *memCartRepo) ClearLines(_ context.Context, cartID string) error {
	m.carts[cartID] = nil
	return nil
}

type memProductRepo struct {
	products map[string]domain.Product
}

func (m *memProductRepo) Create(_ context.Context, product *domain.Product) error {
	product.ID = "p-" + product.Code
	m.products[product.ID] = *product
	return nil
}

func (m *memProductRepo) Update(_ context.Context, product *domain.Product) error {
	if _, ok := m.products[product.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.products[product.ID] = *product
	return nil
}

func (m *memProductRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.products[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.products, id)
	return nil
}

func (m *memProductRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	product, ok := m.products[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &product, nil
}

func (m *memProductRepo) Exists(_ context.Context, id string) (bool, error) {
	_, ok := m.products[id]
	return ok, nil
}

func (m *memProductRepo) List(_ context.Context, _ repository.ProductFilter) ([]domain.Product, error) {
	out := make([]domain.Product, 0, len(m.products))
	for _, product := range m.products {
		out = append(out, product)
	}
	return out, nil
}

type appFixture struct {
	app  *fiber.App
	auth *service.AuthService
}

func newAppFixture(t *testing.T) *appFixture {
	t.Helper()

	userRepo := &memUserRepo{users: make(map[string]*domain.User)}
	cartRepo := &memCartRepo{carts: make(map[string][]domain.CartLine)}
	productRepo := &memProductRepo{products: map[string]domain.Product{
		"p1": {ID: "p1", Title: "Widget", Code: "W1", Status: true},
	}}

	cfg := config.Config{}
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.TokenTTLHours = 1
	cfg.Auth.BcryptCost = 4
	cfg.Auth.CookieName = "token"

	authService := service.NewAuthService(cfg, service.AuthDependencies{UserRepo: userRepo})
	cartService := service.NewCartService(service.CartDependencies{CartRepo: cartRepo, ProductRepo: productRepo})
	catalogService := service.NewCatalogService(service.CatalogDependencies{ProductRepo: productRepo})

	logger := zap.NewNop()
	app := fiber.New()
	RegisterMiddlewares(app, logger, observability.NewMetrics(), 0)
	RegisterRoutes(app, RouteConfig{
		Sessions:       handlers.NewSessionsHandler(authService, cfg.Auth.CookieName),
		Carts:          handlers.NewCartsHandler(cartService),
		Products:       handlers.NewProductsHandler(catalogService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.Pipeline(), cfg.Auth.CookieName, logger),
		Health:         handlers.NewHealthHandler("test", "test", nil, nil),
	})

	return &appFixture{app: app, auth: authService}
}

func (f *appFixture) token(t *testing.T, role domain.Role) string {
	t.Helper()
	token, _, err := f.auth.TokenManager().Issue(&domain.User{ID: "u-test", Role: role})
	require.NoError(t, err)
	return token
}

func (f *appFixture) do(t *testing.T, method, path, token, body string) (*nethttp.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := f.app.Test(req, int(5*time.Second/time.Millisecond))
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var envelope map[string]any
	require.NoError(t, json.Unmarshal(raw, &envelope))
	return resp, envelope
}

func TestCartRoutesRequireBearerToken(t *testing.T) {
	f := newAppFixture(t)

	resp, envelope := f.do(t, "POST", "/api/carts/", "", "")
	require.Equal(t, 401, resp.StatusCode)
	require.Equal(t, float64(401), envelope["status"])
	require.NotEmpty(t, envelope["response"])
}

func TestCartRoutesRejectAdminRole(t *testing.T) {
	f := newAppFixture(t)

	resp, envelope := f.do(t, "POST", "/api/carts/", f.token(t, domain.RoleAdmin), "")
	require.Equal(t, 403, resp.StatusCode)
	require.Equal(t, float64(403), envelope["status"])
}

func TestCartFlowOverHTTP(t *testing.T) {
	f := newAppFixture(t)
	token := f.token(t, domain.RoleUser)

	resp, envelope := f.do(t, "POST", "/api/carts/", token, "")
	require.Equal(t, 201, resp.StatusCode)
	require.Equal(t, "success", envelope["status"])
	payload := envelope["payload"].(map[string]any)
	cartID := payload["id"].(string)
	require.Empty(t, payload["products"])

	resp, envelope = f.do(t, "POST", "/api/carts/"+cartID+"/product/p1", token, "")
	require.Equal(t, 201, resp.StatusCode)
	payload = envelope["payload"].(map[string]any)
	products := payload["products"].([]any)
	require.Len(t, products, 1)

	resp, envelope = f.do(t, "POST", "/api/carts/"+cartID+"/product/ghost", token, "")
	require.Equal(t, 404, resp.StatusCode)
	require.Contains(t, envelope["response"], "product")

	resp, envelope = f.do(t, "GET", "/api/carts/missing", token, "")
	require.Equal(t, 404, resp.StatusCode)
	require.Equal(t, float64(404), envelope["status"])
}

func TestCurrentSessionIsAdminOnly(t *testing.T) {
	f := newAppFixture(t)

	resp, _ := f.do(t, "GET", "/api/session/current", f.token(t, domain.RoleUser), "")
	require.Equal(t, 403, resp.StatusCode)

	resp, envelope := f.do(t, "GET", "/api/session/current", f.token(t, domain.RoleAdmin), "")
	require.Equal(t, 200, resp.StatusCode)
	payload := envelope["payload"].(map[string]any)
	require.Equal(t, "u-test", payload["id"])
	require.Equal(t, "admin", payload["role"])
}

func TestJWTLoginSetsHTTPOnlyCookie(t *testing.T) {
	f := newAppFixture(t)

	resp, _ := f.do(t, "POST", "/api/session/register", "",
		`{"name":"Ana","email":"ana@example.com","password":"s3cret"}`)
	require.Equal(t, 201, resp.StatusCode)

	resp, envelope := f.do(t, "POST", "/api/session/jwt", "",
		`{"email":"ana@example.com","password":"s3cret"}`)
	require.Equal(t, 200, resp.StatusCode)
	require.Equal(t, "success", envelope["status"])
	require.NotEmpty(t, envelope["token"])

	var cookie *nethttp.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "token" {
			cookie = c
		}
	}
	require.NotNil(t, cookie, "jwt login must set the token cookie")
	require.True(t, cookie.HttpOnly)
	require.Equal(t, envelope["token"], cookie.Value)

	claims, err := f.auth.TokenManager().Verify(cookie.Value)
	require.NoError(t, err)
	require.Equal(t, domain.RoleUser, claims.Role)
}

func TestInvalidLoginEnvelope(t *testing.T) {
	f := newAppFixture(t)

	resp, envelope := f.do(t, "POST", "/api/session/jwt", "",
		`{"email":"ghost@example.com","password":"nope"}`)
	require.Equal(t, 401, resp.StatusCode)
	require.Equal(t, float64(401), envelope["status"])
	require.Equal(t, "invalid email or password", envelope["response"])
}

func TestLogout(t *testing.T) {
	f := newAppFixture(t)

	resp, envelope := f.do(t, "GET", "/api/session/logout", "", "")
	require.Equal(t, 200, resp.StatusCode)
	require.Equal(t, "success", envelope["status"])
	require.Equal(t, "Session completed successfully", envelope["response"])
}

func TestProductWritesAreAdminOnly(t *testing.T) {
	f := newAppFixture(t)

	body := `{"title":"Gadget","code":"G1","price":9.5,"status":true}`

	resp, _ := f.do(t, "POST", "/api/products/", f.token(t, domain.RoleUser), body)
	require.Equal(t, 403, resp.StatusCode)

	resp, envelope := f.do(t, "POST", "/api/products/", f.token(t, domain.RoleAdmin), body)
	require.Equal(t, 201, resp.StatusCode)
	require.Equal(t, "success", envelope["status"])
}

func TestNonBearerAuthorizationFallsBackToCookie(t *testing.T) {
	f := newAppFixture(t)
	token := f.token(t, domain.RoleUser)

	req := httptest.NewRequest("POST", "/api/carts/", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	req.AddCookie(&nethttp.Cookie{Name: "token", Value: token})

	resp, err := f.app.Test(req, int(5*time.Second/time.Millisecond))
	require.NoError(t, err)
	require.Equal(t, 201, resp.StatusCode)
}
