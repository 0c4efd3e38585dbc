package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"aeroapi.backend/internal/config"
	"aeroapi.backend/internal/infrastructure/datasources"
	"aeroapi.backend/internal/interfaces/http/handlers"
	"aeroapi.backend/internal/interfaces/http/middleware"
	"aeroapi.backend/internal/usecases"
	"aeroapi.backend/pkg/jwt"
	"aeroapi.backend/pkg/logger"
	"aeroapi.backend/pkg/metrics"
	"aeroapi.backend/pkg/redis"
)

const (
	shutdownTimeout      = 10 * time.Second
	idempotencyLock      = 30 * time.Second
	idempotencyRetention = 24 * time.Hour
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openStore  = datasources.Open
	serve      = func(srv *http.Server) error { return srv.ListenAndServe() }
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := runMainProcess(ctx); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess(ctx context.Context) error {
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	initLog(cfg.Server.Env)
	defer logger.Sync()
	logger.Info(ctx, "Logger initialized", zap.String("env", cfg.Server.Env))

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	store, err := openStore(cfg.Store, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open record store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error(context.Background(), "Failed to close record store", zap.Error(err))
		}
	}()
	logger.Info(ctx, "Record store opened", zap.String("driver", cfg.Store.Driver))

	var limiter middleware.Limiter
	var idempotency middleware.IdempotencyStore
	if cfg.Redis.URL != "" {
		if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
			return fmt.Errorf("failed to initialize redis: %w", err)
		}
		defer func() { _ = redis.Close() }()
		limiter = redis.NewThrottle(redis.GetClient(), "aeroapi:validate", cfg.Throttle.RateLimit, cfg.Throttle.RateWindow)
		logger.Info(ctx, "Validate throttle enabled",
			zap.Int("limit", cfg.Throttle.RateLimit),
			zap.Duration("window", cfg.Throttle.RateWindow),
		)
		idempotency = redis.NewIdempotency(redis.GetClient(), "aeroapi:idempotency", idempotencyLock, idempotencyRetention)
	}

	registry := metrics.NewRegistry()
	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiry)

	moderationUsecase := usecases.NewModerationUsecase(store, store, registry)
	apiKeyUsecase := usecases.NewApiKeyUsecase(store, store)
	authorizationUsecase := usecases.NewAuthorizationUsecase(apiKeyUsecase, moderationUsecase, store, registry)
	userUsecase := usecases.NewUserUsecase(store, moderationUsecase, jwtService, cfg.Security.AdminExternalIDs)
	defer authorizationUsecase.Wait()

	r := newRouter(routeDeps{
		validateKeyHandler: handlers.NewValidateKeyHandler(authorizationUsecase),
		setRankHandler:     handlers.NewSetRankHandler(nil),
		authHandler:        handlers.NewAuthHandler(userUsecase),
		userHandler:        handlers.NewUserHandler(apiKeyUsecase, moderationUsecase),
		adminHandler:       handlers.NewAdminHandler(userUsecase, moderationUsecase),
		jwtService:         jwtService,
		gate:               authorizationUsecase,
		statuses:           moderationUsecase,
		limiter:            limiter,
		idempotency:        idempotency,
		proxySecret:        cfg.Security.InternalProxySecret,
		metrics:            registry,
		allowedOrigin:      cfg.Server.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info(ctx, "AeroAPI backend starting", zap.String("port", cfg.Server.Port))
		serveErr <- serve(srv)
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info(context.Background(), "Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
