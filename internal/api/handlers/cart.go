package handlers

import (
	"context"
	"net/http"
	"time"

	"cartsync/internal/cart"
	"cartsync/internal/events"
	"cartsync/internal/logger"
	"cartsync/internal/models"
	"cartsync/internal/store"

	"github.com/gin-gonic/gin"
)

// CartHandler implements the two proxied sync operations. Both run behind
// the signature middleware, so by the time a request lands here its query
// parameters are authentic; what remains is resolving the shop credential
// and talking to the snapshot store.
type CartHandler struct {
	resolver  store.CredentialResolver
	snapshots store.SnapshotStore
	publisher *events.Publisher
	logger    *logger.Logger
}

func NewCartHandler(resolver store.CredentialResolver, snapshots store.SnapshotStore, publisher *events.Publisher, logger *logger.Logger) *CartHandler {
	return &CartHandler{
		resolver:  resolver,
		snapshots: snapshots,
		publisher: publisher,
		logger:    logger,
	}
}

// Save normalizes the posted cart and upserts it under (shop, customer).
func (h *CartHandler) Save(c *gin.Context) {
	customerID := customerID(c)
	if customerID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not logged in"})
		return
	}

	var request struct {
		Cart []cart.RawLine `json:"cart"`
	}
	if err := c.ShouldBindJSON(&request); err != nil || request.Cart == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No cart provided"})
		return
	}

	shop, ok := h.resolveShop(c)
	if !ok {
		return
	}

	snapshot := cart.Normalize(request.Cart)

	if err := h.snapshots.Save(c.Request.Context(), shop, customerID, snapshot); err != nil {
		h.logger.Error("Failed to save cart for shop %s customer %s: %v", shop.Domain, customerID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error saving cart"})
		return
	}

	if h.publisher != nil {
		event := events.CartEvent{
			Type:       string(models.SyncEventCartSaved),
			ShopDomain: shop.Domain,
			CustomerID: customerID,
			ItemCount:  len(snapshot),
			Timestamp:  time.Now().UTC(),
		}
		// Detached from the request: a slow or dead broker must not hold
		// up the 204.
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			h.publisher.Publish(ctx, event)
		}()
	}

	c.Status(http.StatusNoContent)
}

// Restore returns the stored snapshot, or an explicitly empty cart when
// nothing is saved yet so the client can tell "nothing stored" apart from
// "request rejected".
func (h *CartHandler) Restore(c *gin.Context) {
	customerID := customerID(c)
	if customerID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not logged in"})
		return
	}

	shop, ok := h.resolveShop(c)
	if !ok {
		return
	}

	snapshot, err := h.snapshots.Fetch(c.Request.Context(), shop, customerID)
	if err == store.ErrNoSnapshot {
		c.JSON(http.StatusOK, gin.H{"cart": []cart.RawLine{}})
		return
	}
	if err != nil {
		h.logger.Error("Failed to restore cart for shop %s customer %s: %v", shop.Domain, customerID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error restoring cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"cart": snapshot.RawLines()})
}

func (h *CartHandler) resolveShop(c *gin.Context) (*models.Shop, bool) {
	domain := c.Query("shop")
	if domain == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing shop parameter"})
		return nil, false
	}

	shop, err := h.resolver.Resolve(c.Request.Context(), domain)
	if err == store.ErrShopNotFound {
		c.JSON(http.StatusForbidden, gin.H{"error": "Unknown shop"})
		return nil, false
	}
	if err != nil {
		h.logger.Error("Failed to resolve shop %s: %v", domain, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return nil, false
	}
	return shop, true
}

// customerID prefers the identity the platform injects into proxied
// requests over one the page supplied itself.
func customerID(c *gin.Context) string {
	if id := c.Query("logged_in_customer_id"); id != "" {
		return id
	}
	return c.Query("customer_id")
}
