// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/interfaces/http/handlers"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// SetupRoutes wires all API routes onto the given group
func SetupRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config, logger *logrus.Logger) {
	SetupAuthRoutes(rg, db, redisClient, cfg, logger)
	SetupProductRoutes(rg, db, cfg)
	SetupCartRoutes(rg, db, redisClient, cfg, logger)
	SetupOrderRoutes(rg, db, redisClient, cfg, logger)
}

// SetupAuthRoutes sets up authentication related routes
func SetupAuthRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config, logger *logrus.Logger) {
	authHandler := handlers.NewAuthHandler(db, cfg, logger)

	auth := rg.Group("/auth")
	auth.Use(middleware.Session(cfg, redisClient))
	{
		// Public auth endpoints. Login and register pick up the guest
		// session cookie so the guest cart can be merged.
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)

		// Protected auth endpoints
		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.POST("/logout", authHandler.Logout)
			protected.GET("/profile", authHandler.GetProfile)
			protected.PUT("/profile", authHandler.UpdateProfile)
		}
	}
}

// SetupProductRoutes sets up product related routes
func SetupProductRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	productHandler := handlers.NewProductHandler(db, cfg)

	products := rg.Group("/products")
	{
		products.GET("", productHandler.GetProducts)
		products.GET("/:id", productHandler.GetProduct)
		products.GET("/slug/:slug", productHandler.GetProductBySlug)
	}

	// Catalog management requires an admin account
	admin := rg.Group("/admin/products")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.AdminMiddleware())
	{
		admin.POST("", productHandler.CreateProduct)
		admin.PUT("/:id", productHandler.UpdateProduct)
		admin.DELETE("/:id", productHandler.DeleteProduct)
		admin.PUT("/:id/stock", productHandler.SetStock)
	}
}

// SetupCartRoutes sets up cart routes, shared by guests and users
func SetupCartRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config, logger *logrus.Logger) {
	cartHandler := handlers.NewCartHandler(db, cfg, logger)

	cart := rg.Group("/cart")
	cart.Use(middleware.OptionalAuthMiddleware(cfg), middleware.Session(cfg, redisClient))
	{
		cart.GET("", cartHandler.GetCart)
		cart.GET("/count", cartHandler.GetCartCount)
		cart.POST("/items", cartHandler.AddToCart)
		cart.PUT("/items/:id", cartHandler.UpdateCartItem)
		cart.DELETE("/items/:id", cartHandler.RemoveCartItem)
		cart.DELETE("", cartHandler.ClearCart)
		cart.POST("/validate", cartHandler.ValidateCart)
	}
}

// SetupOrderRoutes sets up order related routes
func SetupOrderRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config, logger *logrus.Logger) {
	orderHandler := handlers.NewOrderHandler(db, cfg, logger)

	orders := rg.Group("/orders")
	{
		// Guests can place orders against their session cart
		place := orders.Group("")
		place.Use(middleware.OptionalAuthMiddleware(cfg), middleware.Session(cfg, redisClient))
		{
			place.POST("", orderHandler.CreateOrder)
		}

		// Order history requires an account
		protected := orders.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.GET("", orderHandler.GetOrders)
			protected.GET("/:id", orderHandler.GetOrder)
			protected.GET("/:id/invoice", orderHandler.DownloadInvoice)
		}
	}
}
