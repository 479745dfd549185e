// @title        Catalog API
// @version      1.0
// @description  Parts catalog with admin-managed visibility.
// @BasePath     /
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/autoparts/catalog-api/internal/api"
	"github.com/autoparts/catalog-api/internal/api/handler"
	"github.com/autoparts/catalog-api/internal/core/service"
	mongodb "github.com/autoparts/catalog-api/internal/infrastructure/db/mongo"
	redisdb "github.com/autoparts/catalog-api/internal/infrastructure/db/redis"
	"github.com/autoparts/catalog-api/internal/infrastructure/seed"
	"github.com/autoparts/catalog-api/internal/pkg/config"
	"github.com/autoparts/catalog-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "catalog-api",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer rdb.Close()

	userRepo := mongodb.NewUserRepository(db)
	partRepo := mongodb.NewPartRepository(db)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to create user indexes")
	}
	if err := partRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to create part indexes")
	}

	images, err := mongodb.NewImageStore(db)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open image store")
	}

	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL, log)
	catalogCache := redisdb.NewCatalogCache(rdb, cfg.Redis.CacheTTL)
	partService := service.NewPartService(partRepo, catalogCache, log)

	if cfg.SeedFile != "" {
		n, err := seed.FromFile(ctx, cfg.SeedFile, authService, log)
		if err != nil {
			log.Fatal().Err(err).Str("file", cfg.SeedFile).Msg("failed to seed users")
		}
		log.Info().Int("created", n).Msg("users seeded")
	}

	e := api.NewRouter(api.Dependencies{
		Log:    log,
		Auth:   authService,
		Guard:  service.NewGuard(cfg.JWTSecret),
		Parts:  partService,
		Images: images,
		Checks: map[string]handler.DependencyCheck{
			"mongodb": partRepo.Ping,
			"redis":   catalogCache.Ping,
		},
		MaxUploadBytes: cfg.MaxUploadBytes,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
