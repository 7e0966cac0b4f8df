package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/storefront-service/internal/api/http/handlers"
	"github.com/spec-kit/storefront-service/internal/auth"
	"github.com/spec-kit/storefront-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Sessions       *handlers.SessionsHandler
	Carts          *handlers.CartsHandler
	Products       *handlers.ProductsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")

	session := api.Group("/session")
	session.Post("/register", cfg.Sessions.Register)
	session.Post("/login", cfg.Sessions.Login)
	session.Get("/google", cfg.Sessions.Google)
	session.Post("/jwt", cfg.Sessions.JWT)
	session.Get("/current", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin), cfg.Sessions.Current)
	session.Get("/logout", cfg.Sessions.Logout)

	products := api.Group("/products")
	products.Get("/", cfg.Products.List)
	products.Get("/:pid", cfg.Products.Get)

	productsAdmin := products.Group("", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin))
	productsAdmin.Post("/", cfg.Products.Create)
	productsAdmin.Put("/:pid", cfg.Products.Update)
	productsAdmin.Delete("/:pid", cfg.Products.Delete)

	carts := api.Group("/carts", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleUser))
	carts.Post("/", cfg.Carts.Create)
	carts.Get("/:cid", cfg.Carts.Get)
	carts.Put("/:cid", cfg.Carts.Replace)
	carts.Delete("/:cid", cfg.Carts.Clear)
	carts.Post("/:cid/product/:pid", cfg.Carts.AddProduct)
	carts.Put("/:cid/product/:pid", cfg.Carts.SetQuantity)
	carts.Delete("/:cid/product/:pid", cfg.Carts.RemoveProduct)
}
