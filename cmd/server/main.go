// Package main is the entry point for the facturador API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"facturador/internal/domain/auth"
	"facturador/internal/domain/block"
	"facturador/internal/domain/catalogs/branch"
	"facturador/internal/domain/catalogs/business"
	"facturador/internal/domain/catalogs/point"
	"facturador/internal/domain/onboarding"
	"facturador/internal/domain/sequence"
	v1 "facturador/internal/infrastructure/http/v1"
	"facturador/internal/infrastructure/storage/postgres"
	"facturador/internal/infrastructure/storage/postgres/auth_repo"
	"facturador/internal/infrastructure/storage/postgres/catalog_repo"
	"facturador/internal/infrastructure/storage/postgres/sequence_repo"
	"facturador/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting facturador server")

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(mustEnv("DATABASE_URL"))
	if maxConns := getEnvInt("DB_MAX_CONNS", 0); maxConns > 0 {
		poolCfg.MaxConns = int32(maxConns)
	}

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Repositories ---
	userRepo := auth_repo.NewUserRepo(txManager)
	businessRepo := catalog_repo.NewBusinessRepo(txManager)
	branchRepo := catalog_repo.NewBranchRepo(txManager)
	pointRepo := catalog_repo.NewPointRepo(txManager)
	sequenceRepo := sequence_repo.NewSequenceRepo(txManager)
	blockRepo := sequence_repo.NewBlockRepo(txManager)

	recorder, err := postgres.NewAuditRecorder(txManager, log)
	if err != nil {
		log.Fatalw("failed to initialize audit recorder", "error", err)
	}

	// --- Services ---
	jwtService := auth.NewJWTService(auth.JWTConfig{
		Secret:   mustEnv("JWT_SECRET"),
		TokenTTL: getEnvDuration("JWT_TTL", 24*time.Hour),
	})
	authService := auth.NewService(userRepo, jwtService, log)

	businessService := business.NewService(businessRepo, txManager, log)
	branchService := branch.NewService(branchRepo, txManager, log)
	pointService := point.NewService(pointRepo, branchService, txManager, log)
	sequenceService := sequence.NewService(sequenceRepo, branchService, pointService, log)
	blockService := block.NewService(blockRepo, sequenceService, txManager, recorder, log)
	onboardingService := onboarding.NewService(
		businessService, branchService, pointService,
		sequenceService, blockService, recorder, log)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:              pool,
		Logger:            log,
		AuthService:       authService,
		BusinessService:   businessService,
		BranchService:     branchService,
		PointService:      pointService,
		SequenceService:   sequenceService,
		BlockService:      blockService,
		OnboardingService: onboardingService,
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
