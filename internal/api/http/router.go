package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bookstore-service/internal/api/http/handlers"
	"github.com/spec-kit/bookstore-service/internal/auth"
	"github.com/spec-kit/bookstore-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Products       *handlers.ProductsHandler
	Cart           *handlers.CartHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")

	api.Post("/users/create", cfg.Auth.Register)
	api.Post("/authentication", cfg.Auth.SignIn)
	api.Get("/logout", cfg.Auth.SignOut)
	api.Get("/token/refresh", cfg.Auth.Refresh)

	api.Get("/books", cfg.Products.List)
	api.Get("/books/:category", cfg.Products.ListByCategory)

	// product creation is privileged
	api.Post("/products", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin), cfg.Products.Create)

	cart := api.Group("/cart", cfg.AuthMiddleware.Handle)
	cart.Get("/", cfg.Cart.Get)
	cart.Post("/", cfg.Cart.Add)
	cart.Delete("/", cfg.Cart.Clear)
	cart.Put("/:id", cfg.Cart.Update)
	cart.Delete("/:id", cfg.Cart.Remove)
}
