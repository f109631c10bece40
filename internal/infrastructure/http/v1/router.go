// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"facturador/internal/domain/auth"
	"facturador/internal/domain/block"
	"facturador/internal/domain/catalogs/branch"
	"facturador/internal/domain/catalogs/business"
	"facturador/internal/domain/catalogs/point"
	"facturador/internal/domain/onboarding"
	"facturador/internal/domain/sequence"
	"facturador/internal/infrastructure/http/v1/handlers"
	"facturador/internal/infrastructure/http/v1/middleware"
	"facturador/internal/infrastructure/storage/postgres"
	"facturador/pkg/logger"
)

// RouterConfig holds the wired services the router needs.
type RouterConfig struct {
	Pool   *postgres.Pool
	Logger *logger.Logger

	AuthService       *auth.Service
	BusinessService   *business.Service
	BranchService     *branch.Service
	PointService      *point.Service
	SequenceService   *sequence.Service
	BlockService      *block.Service
	OnboardingService *onboarding.Service
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	authHandler := handlers.NewAuthHandler(cfg.AuthService)
	businessHandler := handlers.NewBusinessHandler(cfg.BusinessService)
	branchHandler := handlers.NewBranchHandler(cfg.BranchService)
	pointHandler := handlers.NewPointHandler(cfg.PointService)
	sequenceHandler := handlers.NewSequenceHandler(cfg.SequenceService, cfg.BlockService)
	blockHandler := handlers.NewBlockHandler(cfg.BlockService)
	onboardingHandler := handlers.NewOnboardingHandler(cfg.OnboardingService)

	v1 := router.Group("/api/v1")
	{
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/logout", authHandler.Logout)
		}

		// Authenticated but not yet business-scoped: a fresh account has no
		// business until it registers one.
		authed := v1.Group("")
		authed.Use(middleware.Auth(cfg.AuthService))
		{
			authed.POST("/business", businessHandler.Create)
			authed.GET("/business", businessHandler.Get)
		}

		// Business-scoped: membership resolved per request.
		scoped := v1.Group("")
		scoped.Use(middleware.Auth(cfg.AuthService))
		scoped.Use(middleware.BusinessScope(cfg.BusinessService))
		{
			ob := scoped.Group("/onboarding")
			{
				ob.POST("/branches", branchHandler.Create)
				ob.GET("/branches", branchHandler.List)
				ob.GET("/branches/:id", branchHandler.Get)

				ob.POST("/points", pointHandler.Create)
				ob.GET("/points", pointHandler.List)
				ob.GET("/points/:id", pointHandler.Get)

				ob.POST("/sequences", sequenceHandler.Ensure)
				ob.GET("/sequences", sequenceHandler.List)
				ob.GET("/sequences/:id/blocks", sequenceHandler.Blocks)

				ob.POST("/blocks", blockHandler.Create)
				ob.POST("/ready", onboardingHandler.Ready)
			}

			blocks := scoped.Group("/blocks")
			{
				blocks.GET("/:id", blockHandler.Get)
				blocks.POST("/:id/open", blockHandler.Open)
				blocks.POST("/:id/consume", blockHandler.Consume)
			}
		}
	}

	return router
}
