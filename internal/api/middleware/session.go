package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jafarshop/larek/internal/storefront"
)

const shopContextKey = "shop"

// SessionMiddleware attaches the visitor's shop session, starting one when the
// cookie is missing or refers to a swept session
func SessionMiddleware(registry *storefront.Registry, cookieName string, secure bool, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var shop *storefront.Shop
		if raw, err := c.Cookie(cookieName); err == nil {
			if id, err := uuid.Parse(raw); err == nil {
				shop, _ = registry.Get(id)
			}
		}

		if shop == nil {
			shop = registry.Create()
			logger.Info("Session started", zap.String("session_id", shop.ID.String()))
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(cookieName, shop.ID.String(), 0, "/", "", secure, true)
		}

		c.Set(shopContextKey, shop)
		c.Next()
	}
}

// GetShopFromContext returns the session attached by SessionMiddleware
func GetShopFromContext(c *gin.Context) (*storefront.Shop, bool) {
	value, exists := c.Get(shopContextKey)
	if !exists {
		return nil, false
	}
	shop, ok := value.(*storefront.Shop)
	return shop, ok
}
