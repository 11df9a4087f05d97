package handlers

import (
	"net/http"
	"time"

	"cartsync/internal/config"
	"cartsync/internal/logger"
	"cartsync/internal/models"
	"cartsync/internal/proxy"
	"cartsync/internal/services/shopify"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ShopifyHandler struct {
	db           *gorm.DB
	logger       *logger.Logger
	config       *config.Config
	oauthService *shopify.OAuthService
}

func NewShopifyHandler(db *gorm.DB, logger *logger.Logger, config *config.Config) *ShopifyHandler {
	return &ShopifyHandler{
		db:           db,
		logger:       logger,
		config:       config,
		oauthService: shopify.NewOAuthService(config, logger),
	}
}

// Install initiates the OAuth flow by redirecting the merchant to the
// authorization screen.
func (h *ShopifyHandler) Install(c *gin.Context) {
	shop := c.Query("shop")
	if shop == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing shop parameter"})
		return
	}

	redirectURI := c.Query("redirect_uri")
	if redirectURI == "" {
		scheme := "https"
		if c.Request.TLS == nil {
			scheme = "http"
		}
		redirectURI = scheme + "://" + c.Request.Host + "/api/v1/shopify/callback"
	}

	authURL, _, err := h.oauthService.GenerateAuthURL(shop, redirectURI)
	if err != nil {
		h.logger.Error("Failed to generate auth URL: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate authorization URL"})
		return
	}

	c.Redirect(http.StatusFound, authURL)
}

// Callback handles the OAuth callback. The callback query is signed with
// the same app secret as proxied requests, so the same verifier gates it.
func (h *ShopifyHandler) Callback(c *gin.Context) {
	params := make(map[string]string)
	for key, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}

	if !proxy.Verify(params, []byte(h.config.ShopifyClientSecret)) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid hmac"})
		return
	}

	code := params["code"]
	shopDomain := params["shop"]
	if code == "" || shopDomain == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required parameters"})
		return
	}

	tokenResp, err := h.oauthService.ExchangeCodeForToken(shopDomain, code)
	if err != nil {
		h.logger.Error("Failed to exchange code for token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to exchange authorization code"})
		return
	}

	// Confirm the token works before persisting it.
	client := shopify.NewClient(shopDomain, tokenResp.AccessToken, h.logger)
	shopInfo, err := client.GetShopInfo(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to get shop info: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get shop information"})
		return
	}

	now := time.Now()
	shop := models.Shop{
		Domain:      shopDomain,
		AccessToken: tokenResp.AccessToken,
		Scope:       tokenResp.Scope,
		InstalledAt: &now,
	}

	// Reinstalls rotate the token, so an existing row is updated in place.
	var existing models.Shop
	err = h.db.Where("domain = ?", shopDomain).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		err = h.db.Create(&shop).Error
	} else if err == nil {
		shop.ID = existing.ID
		err = h.db.Save(&shop).Error
	}
	if err != nil {
		h.logger.Error("Failed to save shop credential: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save shop"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Shop connected successfully",
		"shop_name": shopInfo.Name,
		"domain":    shopDomain,
	})
}
