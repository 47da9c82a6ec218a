package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptophy/lottod/internal/domain"
)

func testClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	c, err := New(context.Background(), ClientConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestLeaderboardCacheRoundTrip(t *testing.T) {
	c, mr := testClient(t)
	cache := NewLeaderboardCache(c, time.Minute)
	ctx := context.Background()

	_, err := cache.Get(ctx)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	board := domain.Leaderboard{
		Today: []domain.LeaderboardEntry{
			{Buyer: "0xabc", Total: 12, Username: "alice"},
		},
		AllTime: []domain.LeaderboardEntry{
			{Buyer: "0xdef", Total: 90, Username: "bob"},
		},
	}
	require.NoError(t, cache.Set(ctx, board))

	got, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, board, got)

	// The snapshot expires; a stale read turns into a miss, not stale data.
	mr.FastForward(2 * time.Minute)
	_, err = cache.Get(ctx)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHistoryCacheKeyedByWallet(t *testing.T) {
	c, _ := testClient(t)
	cache := NewHistoryCache(c, time.Minute)
	ctx := context.Background()

	days := []domain.HistoryDay{
		{Day: "201", LuckyNumber: 42, PotEth: "1.250000", UserTicketCount: 3},
	}
	require.NoError(t, cache.Set(ctx, "0xABCDEF", days))

	// Lookup is case-insensitive on the wallet address.
	got, err := cache.Get(ctx, "0xabcdef")
	require.NoError(t, err)
	assert.Equal(t, days, got)

	_, err = cache.Get(ctx, "0xother")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSignalBusPublishSubscribe(t *testing.T) {
	c, _ := testClient(t)
	bus := NewSignalBus(c)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := bus.Subscribe(ctx, domain.ChannelSnapshot)
	require.NoError(t, err)

	require.NoError(t, bus.Publish(ctx, domain.ChannelSnapshot, []byte(`{"day":5}`)))

	select {
	case msg := <-ch:
		assert.JSONEq(t, `{"day":5}`, string(msg))
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}
}

func TestLockManagerExclusivity(t *testing.T) {
	c, _ := testClient(t)
	lm := NewLockManager(c)
	ctx := context.Background()

	unlock, err := lm.Acquire(ctx, "archive", time.Minute)
	require.NoError(t, err)

	_, err = lm.Acquire(ctx, "archive", time.Minute)
	assert.ErrorIs(t, err, domain.ErrLockHeld)

	unlock()
	unlock2, err := lm.Acquire(ctx, "archive", time.Minute)
	require.NoError(t, err)
	unlock2()
}
