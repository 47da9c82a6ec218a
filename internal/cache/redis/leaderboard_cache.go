package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cryptophy/lottod/internal/domain"
	"github.com/redis/go-redis/v9"
)

const leaderboardKey = "lottery:leaderboard"

// LeaderboardCache implements domain.LeaderboardCache as a single JSON value
// with a TTL. The leaderboard is one snapshot for everyone; there is no
// per-user keying.
type LeaderboardCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewLeaderboardCache creates a LeaderboardCache backed by the given Client.
func NewLeaderboardCache(c *Client, ttl time.Duration) *LeaderboardCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &LeaderboardCache{rdb: c.Underlying(), ttl: ttl}
}

// Set stores the leaderboard snapshot with the configured TTL.
func (lc *LeaderboardCache) Set(ctx context.Context, board domain.Leaderboard) error {
	data, err := json.Marshal(board)
	if err != nil {
		return fmt.Errorf("redis: marshal leaderboard: %w", err)
	}
	if err := lc.rdb.Set(ctx, leaderboardKey, data, lc.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set leaderboard: %w", err)
	}
	return nil
}

// Get retrieves the cached leaderboard snapshot.
// It returns domain.ErrNotFound when no snapshot is cached.
func (lc *LeaderboardCache) Get(ctx context.Context) (domain.Leaderboard, error) {
	data, err := lc.rdb.Get(ctx, leaderboardKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Leaderboard{}, domain.ErrNotFound
		}
		return domain.Leaderboard{}, fmt.Errorf("redis: get leaderboard: %w", err)
	}

	var board domain.Leaderboard
	if err := json.Unmarshal(data, &board); err != nil {
		return domain.Leaderboard{}, fmt.Errorf("redis: unmarshal leaderboard: %w", err)
	}
	return board, nil
}

// Compile-time interface check.
var _ domain.LeaderboardCache = (*LeaderboardCache)(nil)
