package store

import (
	"context"
	"encoding/json"
	"fmt"

	"cartsync/internal/cart"
	"cartsync/internal/logger"
	"cartsync/internal/models"
	"cartsync/internal/services/shopify"
)

const (
	metafieldNamespace = "custom"
	metafieldKey       = "cart_data"

	// recordVersion guards the stored shape. A record written by a future
	// incompatible schema reads back as "no snapshot" instead of garbage.
	recordVersion = 1
)

// storedRecord is the JSON blob kept in the customer metafield.
type storedRecord struct {
	Version int            `json:"version"`
	Items   []cart.RawLine `json:"items"`
}

// MetafieldStore keeps cart snapshots in customer-owned metafields on the
// shop's Admin API. One Admin client is built per call because every call
// runs under a different shop's credential.
type MetafieldStore struct {
	logger    *logger.Logger
	newClient func(shopDomain, accessToken string) adminClient
}

// adminClient is the slice of the Admin API the store needs.
type adminClient interface {
	GetCustomerMetafield(ctx context.Context, customerID, namespace, key string) (*shopify.Metafield, error)
	CreateCustomerMetafield(ctx context.Context, customerID string, input *shopify.MetafieldInput) error
	UpdateMetafield(ctx context.Context, metafieldID int64, input *shopify.MetafieldInput) error
}

func NewMetafieldStore(log *logger.Logger) *MetafieldStore {
	return &MetafieldStore{
		logger: log,
		newClient: func(shopDomain, accessToken string) adminClient {
			return shopify.NewClient(shopDomain, accessToken, log)
		},
	}
}

// Fetch returns the stored snapshot for the customer. A missing metafield,
// an unparsable value, or a version mismatch all come back as ErrNoSnapshot:
// stale or foreign data must never surface as a restore payload.
func (s *MetafieldStore) Fetch(ctx context.Context, shop *models.Shop, customerID string) (cart.Snapshot, error) {
	client := s.newClient(shop.Domain, shop.AccessToken)

	metafield, err := client.GetCustomerMetafield(ctx, customerID, metafieldNamespace, metafieldKey)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cart metafield: %w", err)
	}
	if metafield == nil {
		return nil, ErrNoSnapshot
	}

	var record storedRecord
	if err := json.Unmarshal([]byte(metafield.Value), &record); err != nil {
		s.logger.Warn("Discarding unparsable cart snapshot for shop %s customer %s: %v", shop.Domain, customerID, err)
		return nil, ErrNoSnapshot
	}
	if record.Version != recordVersion {
		s.logger.Warn("Discarding cart snapshot with unknown version %d for shop %s customer %s", record.Version, shop.Domain, customerID)
		return nil, ErrNoSnapshot
	}

	return cart.Normalize(record.Items), nil
}

// Save upserts the snapshot. The existence check runs on every save because
// repeated saves for the same customer are the common case, not the
// exception; create-or-fail would break every save after the first.
func (s *MetafieldStore) Save(ctx context.Context, shop *models.Shop, customerID string, snap cart.Snapshot) error {
	client := s.newClient(shop.Domain, shop.AccessToken)

	value, err := json.Marshal(storedRecord{
		Version: recordVersion,
		Items:   snap.RawLines(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal cart snapshot: %w", err)
	}

	input := &shopify.MetafieldInput{
		Namespace: metafieldNamespace,
		Key:       metafieldKey,
		Type:      "json",
		Value:     string(value),
	}

	existing, err := client.GetCustomerMetafield(ctx, customerID, metafieldNamespace, metafieldKey)
	if err != nil {
		return fmt.Errorf("failed to look up cart metafield: %w", err)
	}

	if existing != nil {
		if err := client.UpdateMetafield(ctx, existing.ID, input); err != nil {
			return fmt.Errorf("failed to update cart metafield: %w", err)
		}
		return nil
	}

	if err := client.CreateCustomerMetafield(ctx, customerID, input); err != nil {
		return fmt.Errorf("failed to create cart metafield: %w", err)
	}
	return nil
}
