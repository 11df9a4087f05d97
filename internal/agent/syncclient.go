package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cartsync/internal/cart"
	"cartsync/internal/logger"
)

// errNotAuthenticated covers 401/403 from the sync endpoints: a guest
// session or a rejected signature. Either way the agent goes quiet; it is
// not the shopper's problem.
var errNotAuthenticated = errors.New("sync request not authenticated")

// SyncClient calls the app's save/restore endpoints through the platform's
// app proxy on the storefront origin. The proxy appends the signature on
// the way through; the client itself holds no secret.
type SyncClient struct {
	baseURL    string
	proxyPath  string
	shop       string
	customerID string
	httpClient *http.Client
	logger     *logger.Logger
}

func NewSyncClient(baseURL, proxyPath, shop, customerID string, logger *logger.Logger) *SyncClient {
	return &SyncClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		proxyPath:  strings.TrimRight(proxyPath, "/"),
		shop:       shop,
		customerID: customerID,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger,
	}
}

// Restore fetches the stored snapshot. An empty snapshot with nil error
// means nothing is saved yet; errNotAuthenticated means the request was
// rejected or the shopper is a guest.
func (c *SyncClient) Restore(ctx context.Context) (cart.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.endpoint("restore"), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stored cart: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, errNotAuthenticated
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("restore failed: %d - %s", resp.StatusCode, string(body))
	}

	var restoreResp struct {
		Cart []cart.RawLine `json:"cart"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&restoreResp); err != nil {
		return nil, fmt.Errorf("failed to decode stored cart: %w", err)
	}

	return cart.Normalize(restoreResp.Cart), nil
}

// Save posts the full current cart state. Saves are idempotent whole-cart
// writes, so an overlapping duplicate is redundant, never harmful.
func (c *SyncClient) Save(ctx context.Context, lines []cart.RawLine) error {
	payload := struct {
		Cart []cart.RawLine `json:"cart"`
	}{
		Cart: lines,
	}
	if payload.Cart == nil {
		payload.Cart = []cart.RawLine{}
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal cart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint("save"), bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return errNotAuthenticated
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("save failed: %d - %s", resp.StatusCode, string(body))
	}

	return nil
}

func (c *SyncClient) endpoint(op string) string {
	q := url.Values{}
	q.Set("shop", c.shop)
	q.Set("customer_id", c.customerID)
	return c.baseURL + c.proxyPath + "/" + op + "?" + q.Encode()
}
