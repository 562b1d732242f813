// Package payments is the HTTP client for the hosted-payment-session
// service. Given an already-created order it returns the URL the buyer
// is redirected to for payment.
package payments

import (
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

type sessionResponse struct {
	URL string `json:"url"`
}

// CheckoutSession requests a hosted checkout session for the order and
// returns the redirect URL. The card-processor path is the one proven
// against the real collaborator; the wallet path is wired symmetrically
// but has not been exercised end to end.
func (c *Client) CheckoutSession(ctx context.Context, method domain.PaymentMethod, orderID string) (string, error) {
	var path string
	switch method {
	case domain.PaymentMethodCard:
		path = "/payments/card/checkout/" + orderID
	case domain.PaymentMethodWallet:
		path = "/payments/wallet/checkout/" + orderID
	default:
		return "", fmt.Errorf("payment method %q has no hosted checkout", method)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request checkout session for order %s: %w", orderID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("payment service returned status %d for order %s", resp.StatusCode, orderID)
	}

	var session sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return "", fmt.Errorf("decode checkout session: %w", err)
	}
	if session.URL == "" {
		return "", fmt.Errorf("payment service returned no redirect url for order %s", orderID)
	}

	return session.URL, nil
}
