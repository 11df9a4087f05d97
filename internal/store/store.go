package store

import (
	"context"
	"errors"

	"cartsync/internal/cart"
	"cartsync/internal/models"
)

var (
	// ErrShopNotFound means the request named a shop that never installed
	// the app. Callers reject the request; nothing is written.
	ErrShopNotFound = errors.New("shop not found")

	// ErrNoSnapshot means no stored cart exists for the customer. This is
	// the steady state for first-time and guest shoppers, not a failure.
	ErrNoSnapshot = errors.New("no cart snapshot")
)

// CredentialResolver maps a shop domain to its installed credential.
type CredentialResolver interface {
	Resolve(ctx context.Context, shopDomain string) (*models.Shop, error)
}

// SnapshotStore persists one cart snapshot per (shop, customer).
type SnapshotStore interface {
	Fetch(ctx context.Context, shop *models.Shop, customerID string) (cart.Snapshot, error)
	Save(ctx context.Context, shop *models.Shop, customerID string, snap cart.Snapshot) error
}
