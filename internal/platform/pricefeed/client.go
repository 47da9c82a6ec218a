// Package pricefeed fetches the ETH/USD spot price used for the display-only
// USD conversion. The price is cosmetic; a failed fetch keeps the previous
// value and never blocks the snapshot.
package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// Client fetches spot prices from a Coinbase-shaped endpoint: a GET whose
// response nests {"data":{"amount":"3000.00"}}.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient creates a price feed client for the given spot-price URL.
func NewClient(url string) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type spotResponse struct {
	Data struct {
		Amount string `json:"amount"`
	} `json:"data"`
}

// Spot returns the current ETH/USD price.
func (c *Client) Spot(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return 0, fmt.Errorf("pricefeed: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("pricefeed: get spot: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("pricefeed: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return 0, fmt.Errorf("pricefeed: read body: %w", err)
	}

	var spot spotResponse
	if err := json.Unmarshal(body, &spot); err != nil {
		return 0, fmt.Errorf("pricefeed: decode: %w", err)
	}

	price, err := strconv.ParseFloat(spot.Data.Amount, 64)
	if err != nil {
		return 0, fmt.Errorf("pricefeed: parse amount %q: %w", spot.Data.Amount, err)
	}
	return price, nil
}
