package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/smartvegis/marketplace/internal/middleware"
	"github.com/smartvegis/marketplace/internal/models"
)

// RouterConfig carries the handlers and cross-cutting settings of the API
type RouterConfig struct {
	Health   *HealthHandler
	Products *ProductHandler
	Vendors  *VendorHandler
	Auth     *AuthHandler
	Cart     *CartHandler
	Orders   *OrderHandler
	Profiles *ProfileHandler

	Verifier       middleware.TokenVerifier
	RateLimiter    *middleware.RateLimiter // nil disables rate limiting
	AllowedOrigins []string
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

// NewRouter registers every API route on a chi router
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Apply middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(chimiddleware.Recoverer)
	if cfg.RequestTimeout > 0 {
		r.Use(chimiddleware.Timeout(cfg.RequestTimeout))
	}

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Register health check endpoint
	r.Get("/health", cfg.Health.ServeHTTP)

	// API routes
	r.Route("/api", func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Limit)
		}

		// Catalog and discovery endpoints
		r.Get("/product", cfg.Products.ListProducts)
		r.Get("/product/categories", cfg.Products.Categories)
		r.Get("/product/{productId}", cfg.Products.GetProduct)
		r.Get("/vendors", cfg.Vendors.ListVendors)
		r.Get("/location", cfg.Vendors.Locate)

		// Session endpoints
		r.Post("/auth/signup", cfg.Auth.SignUp)
		r.Post("/auth/signin", cfg.Auth.SignIn)
		r.Post("/auth/signout", cfg.Auth.SignOut)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(cfg.Verifier))

			// Vendor product management
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleVendor))
				r.Post("/product", cfg.Products.CreateProduct)
				r.Put("/product/{productId}", cfg.Products.UpdateProduct)
				r.Delete("/product/{productId}", cfg.Products.DeleteProduct)
			})

			// Cart and order endpoints
			r.Get("/cart", cfg.Cart.GetCart)
			r.Post("/cart/items", cfg.Cart.AddItem)
			r.Delete("/cart/items/{productId}", cfg.Cart.RemoveItem)
			r.Post("/cart/checkout", cfg.Cart.Checkout)
			r.Get("/orders", cfg.Orders.ListOrders)
			r.Get("/orders/{orderId}", cfg.Orders.GetOrder)

			// Profile endpoints
			r.Get("/profile", cfg.Profiles.GetProfile)
			r.Put("/profile", cfg.Profiles.UpdateProfile)
			r.Get("/profile/favorites", cfg.Profiles.Favorites)
			r.Put("/profile/favorites/{vendorName}", cfg.Profiles.AddFavorite)
			r.Delete("/profile/favorites/{vendorName}", cfg.Profiles.RemoveFavorite)
		})
	})

	return r
}
