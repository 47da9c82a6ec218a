package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cryptophy/lottod/internal/domain"
	"github.com/redis/go-redis/v9"
)

// HistoryCache implements domain.HistoryCache keyed by wallet address.
//
// Key schema:
//
//	lottery:history:{wallet} - JSON array of per-day records
type HistoryCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewHistoryCache creates a HistoryCache backed by the given Client.
func NewHistoryCache(c *Client, ttl time.Duration) *HistoryCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &HistoryCache{rdb: c.Underlying(), ttl: ttl}
}

func historyKey(wallet string) string {
	return "lottery:history:" + strings.ToLower(wallet)
}

// Set stores the wallet's history snapshot with the configured TTL.
func (hc *HistoryCache) Set(ctx context.Context, wallet string, days []domain.HistoryDay) error {
	data, err := json.Marshal(days)
	if err != nil {
		return fmt.Errorf("redis: marshal history %s: %w", wallet, err)
	}
	if err := hc.rdb.Set(ctx, historyKey(wallet), data, hc.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set history %s: %w", wallet, err)
	}
	return nil
}

// Get retrieves the cached history snapshot for the wallet.
// It returns domain.ErrNotFound when no snapshot is cached.
func (hc *HistoryCache) Get(ctx context.Context, wallet string) ([]domain.HistoryDay, error) {
	data, err := hc.rdb.Get(ctx, historyKey(wallet)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("redis: get history %s: %w", wallet, err)
	}

	var days []domain.HistoryDay
	if err := json.Unmarshal(data, &days); err != nil {
		return nil, fmt.Errorf("redis: unmarshal history %s: %w", wallet, err)
	}
	return days, nil
}

// Compile-time interface check.
var _ domain.HistoryCache = (*HistoryCache)(nil)
