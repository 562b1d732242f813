// Package orders is the HTTP client for the order-creation service.
package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/afrolatino/storefront/internal/domain"
)

type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string, client *http.Client) *Client {
	return &Client{
		baseURL: baseURL,
		client:  client,
	}
}

type createOrderResponse struct {
	OrderID string `json:"order_id"`
}

// CreateOrder submits the order and returns the server-assigned order
// id. The idempotency key makes a retried submission safe against
// duplicate order creation; the order service deduplicates on it.
func (c *Client) CreateOrder(ctx context.Context, order *domain.Order, idempotencyKey string) (string, error) {
	data, err := json.Marshal(order)
	if err != nil {
		return "", fmt.Errorf("marshal order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", idempotencyKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("create order: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("order service returned status %d", resp.StatusCode)
	}

	var created createOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("decode order response: %w", err)
	}
	if created.OrderID == "" {
		return "", fmt.Errorf("order service returned no order id")
	}

	return created.OrderID, nil
}
