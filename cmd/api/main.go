package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crosspay/config"
	httpHandler "crosspay/internal/adapter/http/handler"
	"crosspay/internal/adapter/storage"
	"crosspay/internal/adapter/storage/localcache"
	redisStorage "crosspay/internal/adapter/storage/redis"
	"crosspay/internal/core/ports"
	"crosspay/internal/service"
	"crosspay/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)
	gin.SetMode(cfg.Server.Mode)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Str("store", cfg.Store.Driver).
		Int("port", cfg.Server.Port).
		Msg("Starting crosspay settlement engine")

	ctx := context.Background()

	backend, err := storage.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("Failed to open record store")
	}
	defer backend.Close()
	log.Info().Str("driver", cfg.Store.Driver).Msg("Record store ready")

	healthCheckers := []ports.HealthChecker{backend.Health}

	// Redis backs idempotency and rate limiting; without it both fall back
	// to per-process state.
	var (
		idempotencyCache ports.IdempotencyCache
		rateLimitStore   ports.RateLimitStore
	)
	if cfg.Redis.Enabled {
		rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		log.Info().Msg("Redis connected")

		idempotencyCache = redisStorage.NewIdempotencyCache(rdb)
		rateLimitStore = redisStorage.NewRateLimitStore(rdb)
		healthCheckers = append(healthCheckers, redisStorage.NewHealthCheck(rdb))
	} else {
		log.Warn().Msg("Redis disabled: idempotency and rate limits are per-process")
		idempotencyCache = localcache.NewIdempotencyCache()
		rateLimitStore = localcache.NewRateLimitStore()
	}

	if cfg.Settlement.TreasuryIdentity == "" {
		log.Warn().Msg("No treasury identity configured: platform fees stay with the sender")
	}

	identitySvc := service.NewIdentityService(backend.Profiles, backend.Transactor, log)
	providerSvc := service.NewProviderService(backend.Providers, backend.Transactor, log)
	transferSvc := service.NewTransferService(
		backend.Profiles,
		backend.Transfers,
		backend.Custody,
		backend.Transactor,
		backend.Idempotency,
		idempotencyCache,
		service.TransferConfig{
			TreasuryIdentity: cfg.Settlement.TreasuryIdentity,
			IdempotencyTTL:   cfg.Settlement.IdempotencyTTL,
		},
		log,
	)
	withdrawalSvc := service.NewWithdrawalService(
		backend.Profiles,
		backend.Withdrawals,
		backend.Providers,
		backend.Custody,
		backend.Transactor,
		backend.Idempotency,
		idempotencyCache,
		cfg.Settlement.IdempotencyTTL,
		log,
	)
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	auditSvc := service.NewAuditService(backend.Audit, log)

	if specBytes, err := os.ReadFile("docs/api/openapi.yaml"); err == nil {
		httpHandler.SetSwaggerSpec(specBytes)
		log.Info().Msg("OpenAPI spec loaded for Swagger UI at /swagger")
	} else {
		log.Warn().Err(err).Msg("OpenAPI spec not found, Swagger UI will be unavailable")
	}

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		IdentitySvc:    identitySvc,
		ProviderSvc:    providerSvc,
		TransferSvc:    transferSvc,
		WithdrawalSvc:  withdrawalSvc,
		TokenSvc:       tokenSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: healthCheckers,
		AuditSvc:       auditSvc,
		Logger:         log,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
