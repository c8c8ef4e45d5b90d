package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"maplemarket/pkg/logger"
	"maplemarket/pkg/metrics"
)

// SetupRoutes настраивает все маршруты приложения с использованием Gin
// Публичные GET-эндпоинты доступны без аутентификации, мутации требуют JWT токен
func SetupRoutes(
	productHandler *ProductHandler,
	reviewHandler *ReviewHandler,
	categoryHandler *CategoryHandler,
	authHandler *AuthHandler,
	authMiddleware *AuthMiddleware,
) *gin.Engine {
	router := gin.New()

	// Recovery middleware для обработки panic
	router.Use(gin.Recovery())

	// JSON logging middleware для HTTP-запросов (ELK Stack)
	router.Use(logger.GinLoggerMiddleware())

	// Prometheus metrics middleware
	router.Use(metrics.GinPrometheusMiddleware("maplemarket"))

	// CORS настройки
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposeHeaders:    []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "maplemarket",
		})
	})

	// Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Auth эндпоинты (без аутентификации)
	auth := router.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	// Permission эндпоинты - только для администраторов
	permission := router.Group("/permission")
	permission.Use(authMiddleware.Authenticate())
	{
		permission.PATCH("/supplier/:user_id", authHandler.SetSupplier)
	}

	// Categories endpoints
	categories := router.Group("/categories")
	{
		categories.GET("/", categoryHandler.List)

		// Изменения категорий требуют аутентификации
		protected := categories.Group("")
		protected.Use(authMiddleware.Authenticate())
		{
			protected.POST("/create", categoryHandler.Create)
			protected.PUT("/update/:category_slug", categoryHandler.Update)
			protected.DELETE("/delete/:category_slug", categoryHandler.Delete)
		}
	}

	// Products endpoints
	products := router.Group("/products")
	{
		products.GET("/", productHandler.ListProducts)
		products.GET("/:category_slug", productHandler.ListProductsByCategory)
		// Gin не допускает статический сегмент "detail" рядом с :category_slug,
		// поэтому карточка товара объявлена двухсегментным параметрическим
		// маршрутом, а литерал "detail" проверяется в обработчике
		products.GET("/:category_slug/:product_slug", productHandler.GetProductDetail)

		protected := products.Group("")
		protected.Use(authMiddleware.Authenticate())
		{
			protected.POST("/create", productHandler.CreateProduct)
			protected.PUT("/detail/:product_slug", productHandler.UpdateProduct)
			protected.DELETE("/delete", productHandler.DeleteProduct)
		}
	}

	// Reviews endpoints
	reviews := router.Group("/reviews")
	{
		reviews.GET("/", reviewHandler.ListAll)
		reviews.GET("/product_reviews/:product_slug", reviewHandler.ListByProduct)

		protected := reviews.Group("")
		protected.Use(authMiddleware.Authenticate())
		{
			protected.POST("/add_review/:product_slug", reviewHandler.Submit)
			protected.DELETE("/delete", reviewHandler.Delete)
		}
	}

	return router
}
