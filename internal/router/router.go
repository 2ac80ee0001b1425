package router

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/amazocart-backend/config"
	"github.com/ikkim/amazocart-backend/internal/app/controller"
	"github.com/ikkim/amazocart-backend/internal/middleware"
)

// distDir holds the built storefront assets when the API also serves the
// frontend. Missing is fine; the API then runs headless.
const distDir = "./dist"

type Router struct {
	catalogController *controller.CatalogController
	authController    *controller.AuthController
	cartController    *controller.CartController
	orderController   *controller.OrderController
	healthController  *controller.HealthController
	config            *config.Config
}

func NewRouter(
	catalogController *controller.CatalogController,
	authController *controller.AuthController,
	cartController *controller.CartController,
	orderController *controller.OrderController,
	healthController *controller.HealthController,
	cfg *config.Config,
) *Router {
	return &Router{
		catalogController: catalogController,
		authController:    authController,
		cartController:    cartController,
		orderController:   orderController,
		healthController:  healthController,
		config:            cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	api := router.Group("/api")
	{
		api.GET("/health", r.healthController.Check)

		auth := api.Group("/auth")
		{
			auth.POST("/login", r.authController.Login)
		}

		products := api.Group("/products")
		{
			products.GET("", r.catalogController.ListProducts)
			products.GET("/popular", r.catalogController.PopularProducts)
			products.GET("/category/:categoryId", r.catalogController.ProductsByCategory)
			products.GET("/:id", r.catalogController.GetProduct)
			products.GET("/:id/variants", r.catalogController.GetVariants)
		}

		api.GET("/categories", r.catalogController.ListCategories)
		api.GET("/stats/countries", r.catalogController.CountryStats)

		cart := api.Group("/cart")
		{
			cart.GET("", r.cartController.GetCart)
			cart.POST("/add", r.cartController.AddItem)
			cart.POST("/update", r.cartController.UpdateItem)
			cart.DELETE("/item/:productId", r.cartController.RemoveItem)
		}

		orders := api.Group("/orders")
		{
			orders.GET("", r.orderController.ListOrders)
			orders.POST("/checkout", r.orderController.Checkout)
		}
	}

	// Anything outside /api falls through to the built frontend: the asset
	// itself when it exists, index.html otherwise so client-side routing works.
	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}

		requested := filepath.Join(distDir, filepath.Clean(c.Request.URL.Path))
		if info, err := os.Stat(requested); err == nil && !info.IsDir() {
			c.File(requested)
			return
		}

		index := filepath.Join(distDir, "index.html")
		if _, err := os.Stat(index); err == nil {
			c.File(index)
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
