package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/gestar-hq/gestar-service/internal/api/http"
	"github.com/gestar-hq/gestar-service/internal/api/http/handlers"
	"github.com/gestar-hq/gestar-service/internal/auth"
	"github.com/gestar-hq/gestar-service/internal/cache"
	"github.com/gestar-hq/gestar-service/internal/config"
	"github.com/gestar-hq/gestar-service/internal/events"
	"github.com/gestar-hq/gestar-service/internal/observability"
	"github.com/gestar-hq/gestar-service/internal/persistence"
	"github.com/gestar-hq/gestar-service/internal/repository"
	"github.com/gestar-hq/gestar-service/internal/seed"
	"github.com/gestar-hq/gestar-service/internal/service"
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

	store := repository.NewStore(pg.PoolHandle())
	viewCache := cache.NewRedisViewCache(redis.Client, cfg.Cache.TTL())
	metrics := observability.NewMetrics()

	dispatcher := events.NewInMemoryDispatcher()
	registerEventLogging(dispatcher, logger)

	lifecycleService := service.NewLifecycleService(service.LifecycleDependencies{
		Store:      store,
		Cache:      viewCache,
		Dispatcher: dispatcher,
	})
	catalogService := service.NewCatalogService(service.CatalogDependencies{
		Store: store,
		Cache: viewCache,
	})
	userService := service.NewUserService(service.UserDependencies{
		Store:      store,
		Cache:      viewCache,
		BcryptCost: cfg.Auth.BcryptCost,
	})

	seeder := seed.NewSeeder(store, catalogService, userService, lifecycleService, logger)
	if cfg.Seed.Catalogs {
		if err := seeder.SeedCatalogs(ctx); err != nil {
			logger.Fatal("failed to seed catalogs", zap.Error(err))
		}
	}
	if cfg.Seed.SampleData {
		if err := seeder.SeedSampleData(ctx); err != nil {
			logger.Fatal("failed to seed sample data", zap.Error(err))
		}
	}

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewAuthMiddleware(tokenManager, store.Users())

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(userService, tokenManager),
		Tickets:        handlers.NewTicketsHandler(lifecycleService),
		Catalogs:       handlers.NewCatalogsHandler(catalogService),
		Users:          handlers.NewUsersHandler(userService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func registerEventLogging(dispatcher events.Dispatcher, logger *zap.Logger) {
	handler := func(_ context.Context, event events.Event) error {
		logger.Info("ticket event",
			zap.String("type", string(event.Type)),
			zap.Int64("ticket_id", event.TicketID),
			zap.String("actor", event.Actor),
		)
		return nil
	}
	for _, eventType := range []events.EventType{
		events.EventTicketCreated,
		events.EventTicketStatusChanged,
		events.EventTicketAssigned,
		events.EventTicketPriorityChanged,
		events.EventCommentPosted,
	} {
		dispatcher.Subscribe(eventType, handler)
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
