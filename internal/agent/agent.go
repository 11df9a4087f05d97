package agent

import (
	"context"
	"net/http"
	"sync"
	"time"

	"cartsync/internal/config"
	"cartsync/internal/logger"
)

// Agent is the client-side sync engine. It owns an HTTP client whose
// transport watches for cart mutations, a storefront client for reading
// and replacing the live cart, and a sync client for the server round
// trips. One agent serves one (shop, customer) session.
type Agent struct {
	storefront *StorefrontClient
	sync       *SyncClient
	httpClient *http.Client
	logger     *logger.Logger

	saveCh    chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

func New(cfg *config.Config, logger *logger.Logger) *Agent {
	a := &Agent{
		logger: logger,
		saveCh: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}

	a.httpClient = &http.Client{
		Transport: NewTransport(http.DefaultTransport, a.ScheduleSave),
		Timeout:   30 * time.Second,
	}

	a.storefront = NewStorefrontClient(cfg.StorefrontURL, a.httpClient, logger)
	a.sync = NewSyncClient(cfg.StorefrontURL, cfg.AppProxyPath, cfg.Shop, cfg.CustomerID, logger)

	return a
}

// Client returns the intercepted HTTP client. The host session routes all
// its storefront traffic through this client so every cart mutation,
// whoever issues it, triggers a save.
func (a *Agent) Client() *http.Client {
	return a.httpClient
}

// Run starts the save loop and kicks off the one-time restore. The restore
// runs detached: it must never hold up whatever the host is rendering.
// The interceptor is already live by this point, which is what lets the
// restore's own clear/add calls flow through the normal save path.
func (a *Agent) Run(ctx context.Context) {
	a.wg.Add(1)
	go a.saveLoop(ctx)

	go a.restore(ctx)
}

// ScheduleSave requests a save without blocking the caller. Back-to-back
// mutations coalesce into one pending save; each save sends the full cart
// state, so dropping the extra signals loses nothing.
func (a *Agent) ScheduleSave() {
	select {
	case a.saveCh <- struct{}{}:
	default:
	}
}

// Flush performs one synchronous save, the page-unload analogue: a
// mutation followed immediately by teardown may not have had time to save.
func (a *Agent) Flush(ctx context.Context) {
	a.save(ctx)
}

// Close stops the save loop and flushes once more on the way out.
func (a *Agent) Close() {
	a.closeOnce.Do(func() {
		close(a.done)
		a.wg.Wait()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.Flush(ctx)
	})
}

func (a *Agent) saveLoop(ctx context.Context) {
	defer a.wg.Done()

	for {
		select {
		case <-a.saveCh:
			a.save(ctx)
		case <-a.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// save reads the live cart and mirrors it to the server. Every failure is
// logged and swallowed: a missed save means "sync skipped this time", not
// a broken shopping session.
func (a *Agent) save(ctx context.Context) {
	lines, err := a.storefront.GetCart(ctx)
	if err != nil {
		a.logger.Warn("Cart save skipped, could not read live cart: %v", err)
		return
	}

	if err := a.sync.Save(ctx, lines); err != nil {
		if err == errNotAuthenticated {
			a.logger.Debug("Cart save skipped, not logged in")
			return
		}
		a.logger.Warn("Cart save failed: %v", err)
	}
}
