package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"cartsync/internal/api/handlers"
	"cartsync/internal/api/middleware"
	"cartsync/internal/config"
	"cartsync/internal/database"
	"cartsync/internal/events"
	"cartsync/internal/logger"
	"cartsync/internal/store"

	"github.com/gin-gonic/gin"
)

type Server struct {
	config    *config.Config
	logger    *logger.Logger
	db        *database.Database
	publisher *events.Publisher
	router    *gin.Engine
	server    *http.Server
}

func New(cfg *config.Config, logger *logger.Logger, db *database.Database) *Server {
	// Set Gin mode
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS())

	publisher := events.NewPublisher(cfg.KafkaBrokers, cfg.CartTopic, logger)

	// Initialize handlers
	resolver := store.NewCredentialResolver(db.DB)
	snapshots := store.NewMetafieldStore(logger)
	cartHandler := handlers.NewCartHandler(resolver, snapshots, publisher, logger)
	shopifyHandler := handlers.NewShopifyHandler(db.DB, logger, cfg)

	// Health check
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Cart Sync App Running",
			"status":  "healthy",
		})
	})

	// Proxied storefront routes; every request is signed by the platform.
	proxy := router.Group("/proxy")
	proxy.Use(middleware.VerifyProxy(cfg, logger))
	{
		proxy.GET("/restore", cartHandler.Restore)
		proxy.POST("/restore", cartHandler.Restore)
		proxy.POST("/save", cartHandler.Save)
	}

	// Installation handshake
	v1 := router.Group("/api/v1")
	{
		shopify := v1.Group("/shopify")
		{
			shopify.GET("/install", shopifyHandler.Install)
			shopify.GET("/callback", shopifyHandler.Callback)
		}
	}

	return &Server{
		config:    cfg,
		logger:    logger,
		db:        db,
		publisher: publisher,
		router:    router,
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.config.APIHost, s.config.APIPort)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting server on " + addr)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	if s.publisher != nil {
		s.publisher.Close()
	}
	return s.server.Shutdown(ctx)
}

// GetRouter returns the Gin router for tests and embedding.
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}
