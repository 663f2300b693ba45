package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	httptransport "github.com/spiderqueue/spiderqueue/internal/api/http"
	"github.com/spiderqueue/spiderqueue/internal/api/http/handlers"
	"github.com/spiderqueue/spiderqueue/internal/auth"
	"github.com/spiderqueue/spiderqueue/internal/config"
	"github.com/spiderqueue/spiderqueue/internal/events"
	"github.com/spiderqueue/spiderqueue/internal/observability"
	"github.com/spiderqueue/spiderqueue/internal/persistence"
	"github.com/spiderqueue/spiderqueue/internal/repository"
	"github.com/spiderqueue/spiderqueue/internal/service"
	"github.com/spiderqueue/spiderqueue/internal/worker"
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

	var (
		pg           *persistence.Postgres
		rd           *persistence.Redis
		store        repository.WorkspaceStore
		profileStore repository.ProfileStore
	)

	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		pg, err = persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			logger.Fatal("failed to connect postgres", zap.Error(err))
		}
		defer pg.Close()

		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}

		rd = persistence.NewRedis(cfg.Redis, logger)
		defer rd.Close()

		store = repository.NewPostgresStore(pg.PoolHandle())
		profileStore = repository.NewPostgresProfileStore(pg.PoolHandle())
	default:
		logger.Info("using in-memory store")
		store = repository.NewMemoryStore()
		profileStore = repository.NewMemoryProfileStore()
	}

	cachedProfiles := repository.NewCachedProfileStore(profileStore, redisClientHandle(rd), logger)

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewMiddleware(tokens)

	profileService := service.NewProfileService(cachedProfiles)
	authService := service.NewAuthService(cachedProfiles, tokens, cfg.Auth.BcryptCost)
	workspaceService := service.NewWorkspaceService(store, profileService, dispatcher)
	boardService := service.NewBoardService(store, dispatcher, logger)

	notificationService := service.NewNotificationService(cfg.Notification, logger)
	notificationService.RegisterSubscriptions(dispatcher)
	worker.StartNotificationWorker(ctx, notificationService, logger)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, rd),
		Auth:           handlers.NewAuthHandler(authService, profileService),
		Workspaces:     handlers.NewWorkspacesHandler(workspaceService),
		Boards:         handlers.NewBoardsHandler(boardService, workspaceService),
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

func redisClientHandle(rd *persistence.Redis) *redis.Client {
	if rd == nil {
		return nil
	}
	return rd.Client
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
