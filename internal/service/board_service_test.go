package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptophy/lottod/internal/domain"
)

type stubBoardSource struct {
	board      domain.Leaderboard
	history    []domain.HistoryDay
	boardCalls int
	histCalls  int
	lastDay    int64
}

func (s *stubBoardSource) GetLeaderboard(ctx context.Context) (domain.Leaderboard, error) {
	s.boardCalls++
	return s.board, nil
}

func (s *stubBoardSource) GetHistory(ctx context.Context, address string, normalDay int64) ([]domain.HistoryDay, error) {
	s.histCalls++
	s.lastDay = normalDay
	return s.history, nil
}

type memLeaderboardCache struct {
	board *domain.Leaderboard
}

func (c *memLeaderboardCache) Set(ctx context.Context, board domain.Leaderboard) error {
	c.board = &board
	return nil
}

func (c *memLeaderboardCache) Get(ctx context.Context) (domain.Leaderboard, error) {
	if c.board == nil {
		return domain.Leaderboard{}, domain.ErrNotFound
	}
	return *c.board, nil
}

type memHistoryCache struct {
	byWallet map[string][]domain.HistoryDay
}

func (c *memHistoryCache) Set(ctx context.Context, wallet string, days []domain.HistoryDay) error {
	if c.byWallet == nil {
		c.byWallet = map[string][]domain.HistoryDay{}
	}
	c.byWallet[wallet] = days
	return nil
}

func (c *memHistoryCache) Get(ctx context.Context, wallet string) ([]domain.HistoryDay, error) {
	days, ok := c.byWallet[wallet]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return days, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLeaderboardCacheFallthrough(t *testing.T) {
	source := &stubBoardSource{
		board: domain.Leaderboard{
			Today: []domain.LeaderboardEntry{{Buyer: "0xabc", Total: 3}},
		},
	}
	cache := &memLeaderboardCache{}
	svc := NewBoardService(source, cache, nil, discardLogger())
	ctx := context.Background()

	board, err := svc.Leaderboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, source.board, board)
	assert.Equal(t, 1, source.boardCalls)

	// Second read is served from the back-filled cache.
	board, err = svc.Leaderboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, source.board, board)
	assert.Equal(t, 1, source.boardCalls)
}

func TestHistoryDayQueryBypassesCache(t *testing.T) {
	source := &stubBoardSource{
		history: []domain.HistoryDay{{Day: "201", LuckyNumber: 7}},
	}
	cache := &memHistoryCache{}
	svc := NewBoardService(source, nil, cache, discardLogger())
	ctx := context.Background()

	// Full history read populates the cache.
	_, err := svc.History(ctx, "0xabc", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, source.histCalls)

	_, err = svc.History(ctx, "0xabc", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, source.histCalls, "full history served from cache")

	// Day-scoped query always goes to the backend.
	_, err = svc.History(ctx, "0xabc", 201)
	require.NoError(t, err)
	assert.Equal(t, 2, source.histCalls)
	assert.Equal(t, int64(201), source.lastDay)
}
