package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"cartsync/internal/agent"
	"cartsync/internal/config"
	"cartsync/internal/logger"
)

// The agent binary runs one storefront session's sync engine: it restores
// the stored cart on startup, then mirrors every cart mutation made
// through its HTTP client until shutdown, flushing a final save on exit.
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize logger
	logger := logger.New(cfg.LogLevel)

	if cfg.StorefrontURL == "" || cfg.Shop == "" || cfg.CustomerID == "" {
		logger.Fatal("STOREFRONT_URL, SHOP and CUSTOMER_ID must be set")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := agent.New(cfg, logger)

	logger.Info("Starting cart sync agent for %s (customer %s)", cfg.Shop, cfg.CustomerID)
	a.Run(ctx)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down agent...")
	cancel()
	a.Close()
}
