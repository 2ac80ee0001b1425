package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ikkim/amazocart-backend/config"
	"github.com/ikkim/amazocart-backend/internal/app/controller"
	"github.com/ikkim/amazocart-backend/internal/app/repository"
	"github.com/ikkim/amazocart-backend/internal/app/service"
	"github.com/ikkim/amazocart-backend/internal/db"
	"github.com/ikkim/amazocart-backend/internal/router"
	"github.com/ikkim/amazocart-backend/internal/scheduler"
	"github.com/ikkim/amazocart-backend/pkg/cache"
	"github.com/ikkim/amazocart-backend/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting AmazoCart Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Probe the schema once, before traffic: summary tables, the popularity
	// snapshot and per-country partitions are all optional, and every later
	// query routes through what this finds.
	caps := db.DetectCapabilities(db.GetDB())

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	catalogRepo := repository.NewCatalogRepository(db.GetDB(), caps)
	cartRepo := repository.NewCartRepository(db.GetDB())
	orderRepo := repository.NewOrderRepository(db.GetDB())

	// Initialize services
	cacheSvc := cache.NewService(cfg.Cache.HotTTL)
	catalogService := service.NewCatalogService(catalogRepo, cacheSvc, caps, cfg.Cache)
	cartService := service.NewCartService(cartRepo)
	authService := service.NewAuthService(userRepo, cartService)
	orderService := service.NewOrderService(orderRepo, cartRepo, cartService)

	// Initialize controllers
	catalogController := controller.NewCatalogController(catalogService)
	authController := controller.NewAuthController(authService)
	cartController := controller.NewCartController(cartService)
	orderController := controller.NewOrderController(orderService)
	healthController := controller.NewHealthController(db.GetDB())

	// Warm the hot tier and keep it refreshed
	hotCacheScheduler := scheduler.NewHotCacheScheduler(catalogService, cfg.Cache.HotRefreshInterval)
	if err := hotCacheScheduler.Start(); err != nil {
		logger.Fatal("Failed to start hot cache scheduler", err)
	}
	defer hotCacheScheduler.Stop()

	// Setup router
	r := router.NewRouter(
		catalogController,
		authController,
		cartController,
		orderController,
		healthController,
		cfg,
	)
	engine := r.Setup()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
