package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"cartsync/internal/config"
	"cartsync/internal/logger"
	"cartsync/internal/proxy"

	"github.com/gin-gonic/gin"
)

func newVerifiedRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{ShopifyClientSecret: secret}
	router := gin.New()
	router.Use(VerifyProxy(cfg, logger.New("error")))
	router.GET("/proxy/restore", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestVerifyProxyAcceptsSignedRequest(t *testing.T) {
	secret := "app-secret"
	router := newVerifiedRouter(secret)

	params := map[string]string{
		"shop":                  "demo.myshopify.com",
		"logged_in_customer_id": "42",
	}
	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}
	q.Set("signature", proxy.Sign(params, []byte(secret)))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/proxy/restore?"+q.Encode(), nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected signed request to pass, got %d", w.Code)
	}
}

func TestVerifyProxyRejectsUnsignedAndTampered(t *testing.T) {
	secret := "app-secret"
	router := newVerifiedRouter(secret)

	params := map[string]string{"shop": "demo.myshopify.com"}
	signed := url.Values{}
	signed.Set("shop", "demo.myshopify.com")
	signed.Set("signature", proxy.Sign(params, []byte(secret)))

	tampered := url.Values{}
	tampered.Set("shop", "other.myshopify.com")
	tampered.Set("signature", signed.Get("signature"))

	tests := []struct {
		name  string
		query string
	}{
		{"no signature", "shop=demo.myshopify.com"},
		{"tampered shop", tampered.Encode()},
		{"garbage signature", "shop=demo.myshopify.com&signature=zzzz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/proxy/restore?"+tt.query, nil)
			router.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", w.Code)
			}
		})
	}
}
