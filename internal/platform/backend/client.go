// Package backend is the REST client for the mini-app backend, which serves
// the authenticated profile and the aggregated leaderboard/history views.
// Every response wraps its payload under a top-level "data" key.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cryptophy/lottod/internal/domain"
)

// Client is the backend API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a backend client for the given API root, e.g.
// "https://api.example.com/api".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// envelope is the standard backend response wrapper.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

// doGet performs a GET request and returns the raw payload under "data".
func (c *Client) doGet(ctx context.Context, path string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("backend: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend: get %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("backend: read body: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, domain.ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("backend: get %s: unexpected status %d", path, resp.StatusCode)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("backend: decode envelope: %w", err)
	}
	return env.Data, nil
}

// GetProfile exchanges a bearer token for the user's profile.
func (c *Client) GetProfile(ctx context.Context, token string) (domain.AccountProfile, error) {
	path := "/user?token=" + url.QueryEscape(token)

	data, err := c.doGet(ctx, path)
	if err != nil {
		return domain.AccountProfile{}, err
	}

	var p apiProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return domain.AccountProfile{}, fmt.Errorf("backend: decode profile: %w", err)
	}
	return p.toDomain(token), nil
}

// GetLeaderboard fetches the three leaderboard tabs. Missing tabs decode as
// empty lists, never as an error.
func (c *Client) GetLeaderboard(ctx context.Context) (domain.Leaderboard, error) {
	data, err := c.doGet(ctx, "/baselottery/leaderboard")
	if err != nil {
		return domain.Leaderboard{}, err
	}

	var board apiLeaderboard
	if err := json.Unmarshal(data, &board); err != nil {
		return domain.Leaderboard{}, fmt.Errorf("backend: decode leaderboard: %w", err)
	}
	return board.toDomain(), nil
}

// GetHistory fetches the wallet's per-day participation records. When
// normalDay is positive the query is limited to that day.
func (c *Client) GetHistory(ctx context.Context, address string, normalDay int64) ([]domain.HistoryDay, error) {
	params := url.Values{}
	params.Set("address", address)
	if normalDay > 0 {
		params.Set("normal_day", strconv.FormatInt(normalDay, 10))
	}

	data, err := c.doGet(ctx, "/baselottery/history?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var days []apiHistoryDay
	if err := json.Unmarshal(data, &days); err != nil {
		return nil, fmt.Errorf("backend: decode history: %w", err)
	}

	out := make([]domain.HistoryDay, 0, len(days))
	for i := range days {
		out = append(out, days[i].toDomain())
	}
	return out, nil
}
