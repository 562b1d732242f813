// Package settings fetches site-wide delivery settings.
package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/sync/singleflight"

	"github.com/afrolatino/storefront/internal/pricing"
)

type Client struct {
	baseURL string
	client  *http.Client
	sfg     singleflight.Group // collapses concurrent fetches
}

func NewClient(baseURL string, client *http.Client) *Client {
	return &Client{
		baseURL: baseURL,
		client:  client,
	}
}

// settingsResponse uses pointers so absent fields can fall back to
// defaults instead of zeroing the knobs.
type settingsResponse struct {
	FreeDeliveryThreshold *int64 `json:"free_delivery_threshold"`
	BaseFee               *int64 `json:"delivery_base_fee"`
	PerKmFee              *int64 `json:"delivery_per_km_fee"`
	OnlinePaymentsEnabled *bool  `json:"online_payments_enabled"`
}

// DeliverySettings fetches the current delivery settings. Fields the
// service omits fall back to the defaults.
func (c *Client) DeliverySettings(ctx context.Context) (pricing.Settings, error) {
	v, err, _ := c.sfg.Do("settings", func() (any, error) {
		return c.fetch(ctx)
	})
	if err != nil {
		return pricing.Settings{}, err
	}
	return v.(pricing.Settings), nil
}

func (c *Client) fetch(ctx context.Context) (pricing.Settings, error) {
	s := pricing.DefaultSettings()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/settings", nil)
	if err != nil {
		return s, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return s, fmt.Errorf("fetch settings: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return s, fmt.Errorf("settings service returned status %d", resp.StatusCode)
	}

	var body settingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return s, fmt.Errorf("decode settings: %w", err)
	}

	if body.FreeDeliveryThreshold != nil {
		s.FreeDeliveryThreshold = *body.FreeDeliveryThreshold
	}
	if body.BaseFee != nil {
		s.BaseFee = *body.BaseFee
	}
	if body.PerKmFee != nil {
		s.PerKmFee = *body.PerKmFee
	}
	if body.OnlinePaymentsEnabled != nil {
		s.OnlinePaymentsEnabled = *body.OnlinePaymentsEnabled
	}

	return s, nil
}
