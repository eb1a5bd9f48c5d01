// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ouishop/marketplace-backend/internal/config"
	"github.com/ouishop/marketplace-backend/internal/handlers"
	"github.com/ouishop/marketplace-backend/internal/middleware"
	"github.com/ouishop/marketplace-backend/internal/services"
	"github.com/ouishop/marketplace-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	authService := services.NewAuthService(db, cfg.JWT)
	shopService := services.NewShopService(db)
	productService := services.NewProductService(db, shopService)
	promotionService := services.NewPromotionService(db, shopService, productService)
	orderService := services.NewOrderService(db, productService, shopService, cfg.Pricing.VATRatePercent)
	paymentService := services.NewPaymentService(db, productService, shopService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	shopHandler := handlers.NewShopHandler(shopService)
	productHandler := handlers.NewProductHandler(productService)
	promotionHandler := handlers.NewPromotionHandler(promotionService)
	orderHandler := handlers.NewOrderHandler(orderService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	adminHandler := handlers.NewAdminHandler(db)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
		}

		// Shop routes
		shops := v1.Group("/shops")
		{
			shops.GET("", shopHandler.GetShops)
			shops.GET("/:id", shopHandler.GetShop)
			shops.POST("", middleware.AuthRequired(), shopHandler.CreateShop)
			shops.PUT("/:id", middleware.AuthRequired(), shopHandler.UpdateShop)
		}

		// Product routes
		products := v1.Group("/products")
		{
			products.GET("", productHandler.GetProducts)
			products.GET("/:id", productHandler.GetProduct)
			products.POST("", middleware.AuthRequired(), productHandler.CreateProduct)
			products.PUT("/:id", middleware.AuthRequired(), productHandler.UpdateProduct)
			products.DELETE("/:id", middleware.AuthRequired(), productHandler.DeleteProduct)
		}

		// Promotion routes
		promotions := v1.Group("/promotions")
		{
			promotions.GET("", middleware.OptionalAuth(), promotionHandler.GetPromotions)
			promotions.GET("/:id", promotionHandler.GetPromotion)
			promotions.POST("", middleware.AuthRequired(), promotionHandler.CreatePromotion)
			promotions.PUT("/:id", middleware.AuthRequired(), promotionHandler.UpdatePromotion)
			promotions.DELETE("/:id", middleware.AuthRequired(), promotionHandler.DeletePromotion)
		}

		// Order routes
		orders := v1.Group("/orders")
		orders.Use(middleware.AuthRequired())
		{
			orders.GET("", orderHandler.GetOrders)
			orders.GET("/:id", orderHandler.GetOrder)
			orders.POST("", orderHandler.CreateOrder)
			orders.PATCH("/:id/status", orderHandler.UpdateOrderStatus)
		}

		// Payment routes
		payments := v1.Group("/payments")
		payments.Use(middleware.AuthRequired())
		{
			payments.GET("", paymentHandler.GetPayments)
			payments.POST("", paymentHandler.CreatePayment)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			admin.GET("/audit-logs", adminHandler.GetAuditLogs)
		}
	}

	return r
}
