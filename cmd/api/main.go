package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/bookstore-service/internal/api/http"
	"github.com/spec-kit/bookstore-service/internal/api/http/handlers"
	"github.com/spec-kit/bookstore-service/internal/auth"
	"github.com/spec-kit/bookstore-service/internal/config"
	"github.com/spec-kit/bookstore-service/internal/events"
	"github.com/spec-kit/bookstore-service/internal/observability"
	"github.com/spec-kit/bookstore-service/internal/payment"
	"github.com/spec-kit/bookstore-service/internal/persistence"
	"github.com/spec-kit/bookstore-service/internal/repository"
	"github.com/spec-kit/bookstore-service/internal/service"
	"github.com/spec-kit/bookstore-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	productRepo := repository.NewProductRepository(pool)

	var sessionRepo repository.SessionRepository
	var cartRepo repository.CartRepository
	if redis.Ping(ctx) == nil {
		sessionRepo = repository.NewRedisSessionRepository(redis.Client)
		cartRepo = repository.NewRedisCartRepository(redis.Client)
	} else {
		logger.Warn("redis unreachable; using in-memory session and cart stores")
		sessionRepo = repository.NewMemorySessionRepository()
		cartRepo = repository.NewMemoryCartRepository()
	}

	dispatcher := events.NewInMemoryDispatcher()
	processor := payment.NewHTTPClient(cfg.Payment)
	metrics := observability.NewMetrics()

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:    userRepo,
		SessionRepo: sessionRepo,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	catalogService := service.NewCatalogService(service.CatalogDependencies{
		ProductRepo: productRepo,
		Processor:   processor,
		Dispatcher:  dispatcher,
		Logger:      logger,
	}, cfg.Payment.LinkRetryBudget)
	cartService := service.NewCartService(cartRepo)

	authMiddleware := auth.NewMiddleware(authService.Codec())

	reconciler := worker.NewReconciliationWorker(catalogService, dispatcher, cfg.Reconcile, logger)
	go reconciler.Run(ctx)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Products:       handlers.NewProductsHandler(catalogService),
		Cart:           handlers.NewCartHandler(cartService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
