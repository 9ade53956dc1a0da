package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jafarshop/larek/internal/api/handlers"
	"github.com/jafarshop/larek/internal/api/middleware"
	"github.com/jafarshop/larek/internal/config"
	"github.com/jafarshop/larek/internal/domain"
	"github.com/jafarshop/larek/internal/events"
	"github.com/jafarshop/larek/internal/repository"
	"github.com/jafarshop/larek/internal/storefront"
	"github.com/jafarshop/larek/internal/view"
)

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, registry *storefront.Registry, repos *repository.Repositories, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// only listed proxies may set the client IP seen by the rate limiter
	if err := router.SetTrustedProxies(cfg.Shop.TrustedProxies); err != nil {
		logger.Warn("Invalid TRUSTED_PROXIES, trusting none", zap.Error(err))
		_ = router.SetTrustedProxies(nil)
	}

	// Middleware
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(logger))
	router.Use(middleware.Metrics())

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.StaticFS("/static", view.Static())

	// Storefront routes (one session per visitor)
	shop := router.Group("")
	shop.Use(middleware.RateLimit(cfg.Shop.RateLimitRPS, cfg.Shop.RateLimitBurst, logger))
	shop.Use(middleware.SessionMiddleware(registry, cfg.Shop.SessionCookie, cfg.Environment == "production", logger))
	{
		shop.GET("/", handlers.HandleIndex(logger))
		shop.POST("/cards/:id/select", handlers.HandleProductIntent(events.CardSelect, logger))
		shop.POST("/preview/toggle", handlers.HandleIntent(events.PreviewToggle, logger))
		shop.POST("/basket/open", handlers.HandleIntent(events.BasketOpen, logger))
		shop.POST("/basket/items/:id/remove", handlers.HandleProductIntent(events.BasketRemove, logger))
		shop.POST("/order/open", handlers.HandleIntent(events.OrderOpen, logger))
		shop.POST("/order/fields", handlers.HandleFormFields(domain.StepOrder, "", logger))
		shop.POST("/order", handlers.HandleFormFields(domain.StepOrder, events.OrderSubmit, logger))
		shop.POST("/contacts/fields", handlers.HandleFormFields(domain.StepContacts, "", logger))
		shop.POST("/contacts", handlers.HandleFormFields(domain.StepContacts, events.ContactsSubmit, logger))
		shop.POST("/modal/close", handlers.HandleIntent(events.ModalClose, logger))
	}

	// Admin routes (disabled unless a key hash is configured)
	if cfg.Admin.KeyHash != "" {
		adminRoutes := router.Group("/admin")
		adminRoutes.Use(middleware.AdminAuth(cfg.Admin.KeyHash, logger))
		{
			adminRoutes.GET("/orders", handlers.HandleListOrders(repos, logger))
		}
	}

	return router
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
