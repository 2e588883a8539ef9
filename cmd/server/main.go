package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/smartvegis/marketplace/internal/auth"
	"github.com/smartvegis/marketplace/internal/cache"
	"github.com/smartvegis/marketplace/internal/cart"
	"github.com/smartvegis/marketplace/internal/config"
	"github.com/smartvegis/marketplace/internal/db"
	"github.com/smartvegis/marketplace/internal/geo"
	"github.com/smartvegis/marketplace/internal/handlers"
	"github.com/smartvegis/marketplace/internal/middleware"
	"github.com/smartvegis/marketplace/internal/repository"
	"github.com/smartvegis/marketplace/internal/seed"
	"github.com/smartvegis/marketplace/internal/service"
	"github.com/smartvegis/marketplace/pkg/logger"
)

// repositories groups the stores selected at startup
type repositories struct {
	products repository.ProductRepository
	profiles repository.ProfileRepository
	users    repository.UserRepository
	orders   repository.OrderRepository
}

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	// Prices and quantities are sent as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	log.Info("starting smartvegis marketplace api server",
		"port", cfg.Server.Port,
		"host", cfg.Server.Host,
		"log_level", cfg.LogLevel,
	)

	ctx := context.Background()
	checks := make(map[string]handlers.HealthCheck)

	// Initialize repositories
	var repos repositories
	if cfg.Database.URL != "" {
		pool, err := db.Connect(ctx, cfg.Database.URL)
		if err != nil {
			log.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		repos = postgresRepositories(pool)
		checks["postgres"] = pool.Ping
		log.Info("using postgres storage")
	} else {
		products, err := seedCatalog(ctx, cfg.Catalog.SeedSources, log)
		if err != nil {
			log.Error("failed to load catalog", "error", err)
			os.Exit(1)
		}
		repos = repositories{
			products: products,
			profiles: repository.NewInMemoryProfileRepository(),
			users:    repository.NewInMemoryUserRepository(),
			orders:   repository.NewInMemoryOrderRepository(),
		}
		log.Info("using in-memory storage")
	}

	// Optional redis for the catalog cache and token revocations
	var catalogCache service.CatalogCache
	var revocations auth.RevocationStore
	if cfg.Redis.URL != "" {
		client, err := cache.Connect(ctx, cfg.Redis.URL)
		if err != nil {
			log.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer client.Close()

		catalogCache = cache.NewCatalogCache(client, cfg.Redis.CatalogTTL)
		revocations = cache.NewRevocations(client)
		checks["redis"] = redisCheck(client)
		log.Info("redis cache enabled", "catalog_ttl", cfg.Redis.CatalogTTL.String())
	}

	fallback := geo.Point{Lat: cfg.Location.DefaultLat, Lng: cfg.Location.DefaultLng}
	carts := cart.NewStore()

	// Initialize services
	authService := auth.NewService(repos.users, repos.profiles, revocations, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authService.Subscribe(func(e auth.Event) {
		log.Info("session changed", "event", string(e.Type), "user_id", e.UserID, "role", string(e.Role))
		if e.Type == auth.SignedOut {
			carts.Drop(e.UserID)
		}
	})
	productService := service.NewProductService(repos.products, repos.profiles, catalogCache, log)
	vendorService := service.NewVendorService(productService)
	cartService := service.NewCartService(repos.products, carts, log)
	orderService := service.NewOrderService(repos.products, repos.orders, carts, catalogCache, log)
	profileService := service.NewProfileService(repos.profiles, repos.products, log)

	// Create router
	router := handlers.NewRouter(handlers.RouterConfig{
		Health:         handlers.NewHealthHandler(checks, log),
		Products:       handlers.NewProductHandler(productService, fallback, log),
		Vendors:        handlers.NewVendorHandler(vendorService, fallback, log),
		Auth:           handlers.NewAuthHandler(authService, log),
		Cart:           handlers.NewCartHandler(cartService, orderService, log),
		Orders:         handlers.NewOrderHandler(orderService, log),
		Profiles:       handlers.NewProfileHandler(profileService, log),
		Verifier:       authService,
		RateLimiter:    middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst),
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		RequestTimeout: time.Duration(cfg.Server.RequestTimeout) * time.Second,
		Logger:         log,
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		log.Error("server failed to start", "error", err)
		return
	}

	log.Info("shutting down server...")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		return
	}

	log.Info("server stopped gracefully")
}

func postgresRepositories(pool *pgxpool.Pool) repositories {
	return repositories{
		products: repository.NewPostgresProductRepository(pool),
		profiles: repository.NewPostgresProfileRepository(pool),
		users:    repository.NewPostgresUserRepository(pool),
		orders:   repository.NewPostgresOrderRepository(pool),
	}
}

// seedCatalog builds the in-memory catalog from the configured sources, or
// from the built-in demo products when none are configured
func seedCatalog(ctx context.Context, sources []string, log *slog.Logger) (*repository.InMemoryProductRepository, error) {
	if len(sources) == 0 {
		log.Info("no catalog sources configured, using demo catalog")
		return repository.NewInMemoryProductRepository(), nil
	}

	log.Info("loading catalog...", "sources", len(sources))
	result, err := seed.NewLoader().Load(ctx, sources)
	if err != nil {
		return nil, err
	}
	log.Info("catalog loaded successfully",
		"total_sources", result.Sources,
		"total_products", len(result.Products),
		"duplicates", result.Duplicates,
	)
	return repository.NewInMemoryProductRepositoryWith(result.Products), nil
}

func redisCheck(client *redis.Client) handlers.HealthCheck {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}
