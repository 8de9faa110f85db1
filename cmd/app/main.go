package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"bloglist/internal/domain/repository"
	"bloglist/internal/infra/handler"
	infraPostgres "bloglist/internal/infra/postgres"
	infraRedis "bloglist/internal/infra/redis"
	"bloglist/internal/platform/apispec"
	"bloglist/internal/platform/auth"
	"bloglist/internal/platform/cache"
	"bloglist/internal/platform/config"
	"bloglist/internal/platform/database"
	"bloglist/internal/platform/logger"
	"bloglist/internal/platform/metrics"
	"bloglist/internal/platform/migration"
	"bloglist/internal/platform/server"
	"bloglist/internal/platform/telemetry"
	usecaseAuth "bloglist/internal/usecase/auth"
	usecaseEntry "bloglist/internal/usecase/entry"
	usecaseUser "bloglist/internal/usecase/user"
)

const serviceName = "bloglist"

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	sentryEnabled, err := telemetry.InitSentry(cfg.Sentry, serviceName)
	if err != nil {
		return fmt.Errorf("init sentry: %w", err)
	}
	if sentryEnabled {
		defer telemetry.Flush(2 * time.Second)
		defer telemetry.Recover()
	}

	log := logger.New(logger.Config{
		Level:   logger.Level(cfg.App.LogLevel),
		Format:  logger.Format(cfg.App.LogFormat),
		Service: serviceName,
	})
	if sentryEnabled {
		log = logger.WrapWithSentry(log)
	}
	logger.SetDefault(log)

	if cfg.App.AutoMigrate {
		if err := migrateUp(cfg, log); err != nil {
			return err
		}
	}

	db, err := database.New(ctx, database.FromSettings(cfg.Database), log)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	var redisClient *cache.Cache
	if cfg.App.CacheEnabled || cfg.App.SessionsEnabled {
		redisClient, err = cache.New(cache.FromSettings(cfg.Redis, serviceName + ":"), log)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("failed to close redis", "error", err)
			}
		}()
	}

	var entryCache usecaseEntry.ListCache
	if cfg.App.CacheEnabled {
		entryCache = infraRedis.NewEntryCache(redisClient, cfg.App.CacheTTL)
	}
	var sessions repository.SessionRepository
	if cfg.App.SessionsEnabled {
		sessions = infraRedis.NewSessionRepository(redisClient)
	}

	var (
		httpMetrics *metrics.HTTPMetrics
		recorder    usecaseEntry.Recorder
	)
	if cfg.App.EnableMetrics {
		httpMetrics = metrics.NewHTTPMetrics()
		recorder = metrics.NewEntryMetrics(httpMetrics.Registry())
	}

	entryRepo := infraPostgres.NewEntryRepository(db.Pool)
	userRepo := infraPostgres.NewUserRepository(db.Pool)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.Issuer)
	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)

	entryService := usecaseEntry.NewService(entryRepo, userRepo, entryCache, recorder, log)
	userService := usecaseUser.NewService(userRepo, entryRepo, hasher, log)
	authService := usecaseAuth.NewService(userRepo, sessions, tokens, hasher, log)

	bearer := server.BearerAuth(tokens, authService, log)

	spec, err := apispec.Handler(ctx)
	if err != nil {
		return err
	}

	healthHandler := &handler.HealthHandler{DB: db}
	if redisClient != nil {
		healthHandler.Cache = redisClient
	}

	routerCfg := handler.RouterConfig{
		EntryHandler:   handler.NewEntryHandler(entryService, bearer),
		UserHandler:    handler.NewUserHandler(userService),
		AuthHandler:    handler.NewAuthHandler(authService, bearer),
		HealthHandler:  healthHandler,
		APIBasePath:    cfg.App.APIBasePath,
		OpenAPIHandler: spec,
		Middlewares: []func(http.Handler) http.Handler{
			server.Recoverer(log),
			server.RequestLogger(log),
			server.SecurityHeaders(),
			server.CORS(cfg.App.AllowedOrigins),
		},
	}
	if httpMetrics != nil {
		routerCfg.Middlewares = append(routerCfg.Middlewares, httpMetrics.Middleware)
		routerCfg.PrometheusHandler = httpMetrics.Handler()
	}

	srv := server.New(server.Config{
		Address:      cfg.Server.Address(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}, handler.NewRouter(routerCfg), log)

	log.Info("bloglist ready",
		"cache", cfg.App.CacheEnabled,
		"sessions", cfg.App.SessionsEnabled,
		"metrics", cfg.App.EnableMetrics,
		"api_base_path", cfg.App.APIBasePath,
	)
	return srv.ListenAndServeWithGracefulShutdown()
}

func migrateUp(cfg *config.Config, log *slog.Logger) error {
	runner, err := migration.New(migration.Config{
		DatabaseURL: cfg.Database.ConnectionString(),
		SourceURL:   cfg.App.MigrationsPath,
		Logger:      log,
	})
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	defer func() {
		if err := runner.Close(); err != nil {
			log.Warn("failed to close migration runner", "error", err)
		}
	}()
	if err := runner.Up(); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
