package main

import (
	"fmt"
	"net/http"
	"os"

	"bondfall/internal/bondlock"
	"bondfall/internal/clock"
	"bondfall/internal/config"
	"bondfall/internal/database"
	"bondfall/internal/handlers"
	"bondfall/internal/ledger"
	"bondfall/internal/logger"
	"bondfall/internal/middleware"
	"bondfall/internal/services"
	"bondfall/internal/validator"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "bondfall/internal/docs" // Import swagger docs
)

// @title           Bondfall API
// @version         1.0
// @description     Bondfall is a tiered bond issuance engine: issuers raise tranched bonds, investors buy into tranches, revenue is distributed down a priority waterfall, and matured positions redeem principal plus accrued yield.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
// @description Revenue pipeline API key.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Register custom binding validators
	validator.Register()

	// Shared infrastructure
	db := dbManager.DB()
	clk := clock.System{}
	guard := bondlock.NewGuard()
	authCtx := services.NewRoleAuthorization(db)
	paymentLedger := ledger.NewHTTPLedger(appConfig.LedgerURL, appConfig.LedgerAPIKey,
		&http.Client{Timeout: appConfig.LedgerTimeout})

	// Initialize services
	userService := services.NewUserService(db, clk)
	auditService := services.NewAuditService(db)
	bondService := services.NewBondService(db, clk, authCtx)
	investmentService := services.NewInvestmentService(db, clk, guard)
	distributionService := services.NewDistributionService(db, clk, guard)
	redemptionService := services.NewRedemptionService(db, clk, guard, paymentLedger)
	lifecycleService := services.NewLifecycleService(db, clk, guard, authCtx)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, auditService)
	bondHandler := handlers.NewBondHandler(bondService, lifecycleService, auditService)
	investmentHandler := handlers.NewInvestmentHandler(investmentService, auditService)
	distributionHandler := handlers.NewDistributionHandler(distributionService, auditService)
	redemptionHandler := handlers.NewRedemptionHandler(redemptionService, auditService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/profile", authHandler.GetProfile)

	// Bond routes
	bonds := protected.Group("/bonds")
	bonds.POST("", bondHandler.IssueBond)
	bonds.GET("", bondHandler.ListBonds)
	bonds.GET("/:id", bondHandler.GetBond)
	bonds.GET("/:id/tranches/:index", bondHandler.GetTranche)
	bonds.GET("/:id/distributions", bondHandler.ListDistributions)
	bonds.POST("/:id/mature", bondHandler.MatureBond)
	bonds.POST("/:id/default", bondHandler.DefaultBond)
	bonds.POST("/:id/invest", investmentHandler.Invest)
	bonds.POST("/:id/redeem", redemptionHandler.Redeem)

	// Investor positions
	protected.GET("/positions", investmentHandler.GetPositions)

	// Revenue pipeline routes (API key, not JWT)
	pipeline := v1.Group("/pipeline")
	pipeline.Use(middleware.PipelineAuthMiddleware(appConfig.PipelineAPIKey))
	pipeline.POST("/distributions", distributionHandler.Distribute)

	log.Infof("Starting Bondfall backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
