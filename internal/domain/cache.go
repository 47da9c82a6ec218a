package domain

import (
	"context"
	"time"
)

// LeaderboardCache stores the backend leaderboard snapshot so repeated view
// activations within the TTL do not hit the backend again.
type LeaderboardCache interface {
	Set(ctx context.Context, board Leaderboard) error
	// Get returns ErrNotFound when no snapshot is cached.
	Get(ctx context.Context) (Leaderboard, error)
}

// HistoryCache stores per-wallet history snapshots.
type HistoryCache interface {
	Set(ctx context.Context, wallet string, days []HistoryDay) error
	// Get returns ErrNotFound when no snapshot is cached for the wallet.
	Get(ctx context.Context, wallet string) ([]HistoryDay, error)
}

// RateLimiter bounds request rates per key with a sliding window.
type RateLimiter interface {
	// Allow reports whether a request for the key fits the limit, counting it
	// when it does.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	// Wait blocks until a request for the key is allowed or ctx ends.
	Wait(ctx context.Context, key string) error
}

// LockManager grants exclusive leases for jobs that must not run concurrently
// across instances, such as the cold archive sweep.
type LockManager interface {
	// Acquire returns an unlock function on success and ErrLockHeld when the
	// lease is already taken.
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error)
}
