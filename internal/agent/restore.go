package agent

import (
	"context"

	"cartsync/internal/cart"
)

// restore runs once per session start. The stored snapshot is
// authoritative: if it differs from the live cart, the live cart is
// replaced wholesale. When both sides already agree nothing is written,
// which is what breaks the save-restore-save loop on every page view.
func (a *Agent) restore(ctx context.Context) {
	stored, err := a.sync.Restore(ctx)
	if err == errNotAuthenticated {
		// Guest session or rejected request; normal, stay quiet.
		a.logger.Debug("Cart restore skipped, not logged in")
		return
	}
	if err != nil {
		a.logger.Warn("Cart restore failed: %v", err)
		return
	}
	if len(stored) == 0 {
		// First visit or nothing saved yet.
		a.logger.Debug("No stored cart to restore")
		return
	}

	liveLines, err := a.storefront.GetCart(ctx)
	if err != nil {
		a.logger.Warn("Cart restore skipped, could not read live cart: %v", err)
		return
	}

	if cart.Equal(stored, cart.Normalize(liveLines)) {
		a.logger.Debug("Live cart already matches stored snapshot")
		return
	}

	// Clear-then-add is not atomic; a teardown between the two calls can
	// leave the cart empty until the next restore. A failed clear stops the
	// whole restore: adding on top of an uncleared cart would double lines.
	if err := a.storefront.ClearCart(ctx); err != nil {
		a.logger.Warn("Cart restore aborted, clear failed: %v", err)
		return
	}

	for _, line := range stored.RawLines() {
		if err := a.storefront.AddItem(ctx, line); err != nil {
			// One retry per line. The clear already went through, so giving
			// up here loses the line; retrying the add cannot double it.
			if err := a.storefront.AddItem(ctx, line); err != nil {
				a.logger.Warn("Cart restore could not re-add variant %s: %v", line.VariantID, err)
			}
		}
	}

	a.logger.Info("Cart restored from stored snapshot (%d lines)", len(stored))
}
