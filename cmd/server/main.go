package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/pasetolabs/paseto-api/internal/config"
	"github.com/pasetolabs/paseto-api/internal/handlers"
	"github.com/pasetolabs/paseto-api/internal/middleware"
	"github.com/pasetolabs/paseto-api/internal/models"
	"github.com/pasetolabs/paseto-api/internal/paseto"
	"github.com/pasetolabs/paseto-api/internal/services"
	"github.com/pasetolabs/paseto-api/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Mode == "debug" {
		logger.Init("debug")
	} else {
		logger.Init("info")
	}

	// Initialize token service (keys are fixed for the process lifetime)
	tokens, err := paseto.NewService(&paseto.Config{
		LocalKey:        cfg.Paseto.LocalKey,
		Issuer:          cfg.Paseto.Issuer,
		AccessAudience:  cfg.Paseto.AccessAudience,
		RefreshAudience: cfg.Paseto.RefreshAudience,
	})
	if err != nil {
		log.Fatalf("Failed to initialize token service: %v", err)
	}

	// Initialize database
	if err := models.InitDB(&cfg.Database); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto migrate database
	if err := models.AutoMigrate(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Seed demo data
	if err := models.SeedDefaultData(); err != nil {
		log.Printf("Warning: Failed to seed default data: %v", err)
	}

	// Start background pruning of expired refresh sessions
	authService := services.NewAuthService(models.GetDB(), tokens)
	pruner := services.StartSessionPruneScheduler(authService)
	defer pruner.Stop()

	// Set Gin mode
	gin.SetMode(cfg.Server.Mode)

	// Create router
	r := gin.New()
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.Use(middleware.CORS())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "paseto-api"})
	})

	authHandler := handlers.NewAuthHandler(models.GetDB(), tokens)
	bannerHandler := handlers.NewBannerHandler(models.GetDB())
	productHandler := handlers.NewProductHandler(models.GetDB())

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public, rate limited)
		auth := api.Group("/auth")
		auth.Use(middleware.RateLimit(5, 10))
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/register", authHandler.Register)
			auth.POST("/refresh", authHandler.Refresh)
			auth.POST("/logout", authHandler.Logout)
		}

		// Banner routes (public)
		banners := api.Group("/banners")
		{
			banners.GET("", bannerHandler.List)
			banners.GET("/active", bannerHandler.ListActive)
			banners.GET("/:id", bannerHandler.GetByID)
			banners.POST("", bannerHandler.Create)
			banners.PUT("/:id", bannerHandler.Update)
			banners.DELETE("/:id", bannerHandler.Delete)
		}

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired(tokens))
		{
			// Auth
			protected.GET("/auth/me", authHandler.GetCurrentUser)
			protected.GET("/auth/sessions", authHandler.ListSessions)
			protected.POST("/auth/revoke/:tokenId", authHandler.RevokeToken)
			protected.POST("/auth/logout-all", authHandler.LogoutAll)

			// Products
			protected.GET("/products", productHandler.List)
			protected.GET("/products/:id", productHandler.GetByID)
			protected.POST("/products", productHandler.Create)
			protected.PUT("/products/:id", productHandler.Update)
			protected.DELETE("/products/:id", productHandler.Delete)
		}
	}

	// Start server
	addr := cfg.Server.Host + ":" + cfg.Server.Port
	log.Printf("Server starting on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
