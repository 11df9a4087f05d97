package middleware

import (
	"net/http"

	"cartsync/internal/config"
	"cartsync/internal/logger"
	"cartsync/internal/proxy"

	"github.com/gin-gonic/gin"
)

// VerifyProxy authenticates requests forwarded by the storefront platform.
// The platform signs every proxied query string with the app secret; a
// request that fails the check is rejected before any handler runs.
func VerifyProxy(cfg *config.Config, logger *logger.Logger) gin.HandlerFunc {
	secret := []byte(cfg.ShopifyClientSecret)

	return func(c *gin.Context) {
		params := make(map[string]string)
		for key, values := range c.Request.URL.Query() {
			if len(values) > 0 {
				params[key] = values[0]
			}
		}

		if !proxy.Verify(params, secret) {
			logger.Warn("Rejected proxy request with bad signature: %s %s", c.Request.Method, c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid signature"})
			return
		}

		c.Next()
	}
}
