package main

import (
	"context"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"

	"collection-service/internal/auth"
	"collection-service/internal/cache"
	"collection-service/internal/config"
	"collection-service/internal/db"
	httphandler "collection-service/internal/http"
	"collection-service/internal/http/middleware"
	"collection-service/internal/logger"
	"collection-service/internal/repository"
	"collection-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	var rdb *redis.Client
	if cfg.Cache.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Cache.RedisAddr})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Warn().Err(err).Msg("redis unavailable, stats caching disabled")
			rdb = nil
		}
	}
	statsCache := cache.NewStatsCache(rdb, cfg.Cache.StatsTTL)

	userRepo := repository.NewUserRepository(database)
	binRepo := repository.NewBinRepository(database)
	routeRepo := repository.NewRouteRepository(database)

	issuer := auth.NewIssuer(cfg.Auth.AccessSecret, cfg.Auth.AccessTTL)
	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)

	authService := service.NewAuthService(userRepo, issuer, hasher)
	userService := service.NewUserService(userRepo, statsCache)
	binService := service.NewBinService(binRepo, statsCache)
	routeService := service.NewRouteService(routeRepo, binRepo, userRepo, statsCache)
	collectionService := service.NewCollectionService(routeRepo, binRepo, statsCache)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)

	handler := httphandler.NewHandler(authService, userService, binService, routeService, collectionService, log)
	router := httphandler.NewRouter(handler, middleware.Auth(tokenParser), cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting collection service")

	if err := router.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
