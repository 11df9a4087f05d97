package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cartsync/internal/logger"
)

const apiVersion = "2023-10"

type Client struct {
	shopDomain  string
	accessToken string
	httpClient  *http.Client
	logger      *logger.Logger
}

func NewClient(shopDomain, accessToken string, logger *logger.Logger) *Client {
	// Proxy requests carry the full myshopify domain; tolerate the bare name too.
	if !strings.HasSuffix(shopDomain, ".myshopify.com") {
		shopDomain += ".myshopify.com"
	}
	return &Client{
		shopDomain:  shopDomain,
		accessToken: accessToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// GetCustomerMetafield fetches the metafield stored under namespace/key for
// one customer. Returns nil without error when the customer has none.
func (c *Client) GetCustomerMetafield(ctx context.Context, customerID, namespace, key string) (*Metafield, error) {
	endpoint := fmt.Sprintf("https://%s/admin/api/%s/customers/%s/metafields.json", c.shopDomain, apiVersion, customerID)

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Shopify-Access-Token", c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	q := req.URL.Query()
	q.Set("namespace", namespace)
	q.Set("key", key)
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API request failed: %d - %s", resp.StatusCode, string(body))
	}

	var metafieldsResp MetafieldsResponse
	if err := json.NewDecoder(resp.Body).Decode(&metafieldsResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(metafieldsResp.Metafields) == 0 {
		return nil, nil
	}
	return &metafieldsResp.Metafields[0], nil
}

// CreateCustomerMetafield creates a new metafield owned by the customer.
func (c *Client) CreateCustomerMetafield(ctx context.Context, customerID string, input *MetafieldInput) error {
	endpoint := fmt.Sprintf("https://%s/admin/api/%s/metafields.json", c.shopDomain, apiVersion)

	input.OwnerID = customerID
	input.OwnerResource = "customer"

	payload := struct {
		Metafield *MetafieldInput `json:"metafield"`
	}{
		Metafield: input,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal metafield: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Shopify-Access-Token", c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API request failed: %d - %s", resp.StatusCode, string(body))
	}

	return nil
}

// UpdateMetafield overwrites an existing metafield's value in place.
func (c *Client) UpdateMetafield(ctx context.Context, metafieldID int64, input *MetafieldInput) error {
	endpoint := fmt.Sprintf("https://%s/admin/api/%s/metafields/%d.json", c.shopDomain, apiVersion, metafieldID)

	payload := struct {
		Metafield *MetafieldInput `json:"metafield"`
	}{
		Metafield: input,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal metafield: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "PUT", endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Shopify-Access-Token", c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API request failed: %d - %s", resp.StatusCode, string(body))
	}

	return nil
}

// GetShopInfo fetches shop information, used after install to confirm the
// minted token actually works.
func (c *Client) GetShopInfo(ctx context.Context) (*Shop, error) {
	endpoint := fmt.Sprintf("https://%s/admin/api/%s/shop.json", c.shopDomain, apiVersion)

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Shopify-Access-Token", c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API request failed: %d - %s", resp.StatusCode, string(body))
	}

	var shopResp struct {
		Shop Shop `json:"shop"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&shopResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &shopResp.Shop, nil
}
