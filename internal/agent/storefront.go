package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"cartsync/internal/cart"
	"cartsync/internal/logger"
)

// StorefrontClient talks to the storefront's AJAX cart API on the shop
// origin. It deliberately shares the agent's intercepted HTTP client: the
// clear/add calls a restore issues are cart mutations like any other and
// flow through the same checkpoint.
type StorefrontClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *logger.Logger
}

func NewStorefrontClient(baseURL string, httpClient *http.Client, logger *logger.Logger) *StorefrontClient {
	return &StorefrontClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

// GetCart fetches the live cart contents.
func (c *StorefrontClient) GetCart(ctx context.Context) ([]cart.RawLine, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/cart.js", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cart: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("cart fetch failed: %d - %s", resp.StatusCode, string(body))
	}

	var cartResp struct {
		Items []cart.RawLine `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&cartResp); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}

	return cartResp.Items, nil
}

// AddItem adds one line to the live cart.
func (c *StorefrontClient) AddItem(ctx context.Context, line cart.RawLine) error {
	jsonData, err := json.Marshal(line)
	if err != nil {
		return fmt.Errorf("failed to marshal cart line: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/cart/add.js", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to add cart line: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("cart add failed: %d - %s", resp.StatusCode, string(body))
	}

	return nil
}

// ClearCart empties the live cart.
func (c *StorefrontClient) ClearCart(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/cart/clear.js", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("cart clear failed: %d - %s", resp.StatusCode, string(body))
	}

	return nil
}
