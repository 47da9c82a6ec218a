// Package service composes platform clients, caches, and stores into the
// read paths the API server exposes.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cryptophy/lottod/internal/domain"
)

// BoardSource fetches the aggregated views from the mini-app backend.
type BoardSource interface {
	GetLeaderboard(ctx context.Context) (domain.Leaderboard, error)
	GetHistory(ctx context.Context, address string, normalDay int64) ([]domain.HistoryDay, error)
}

// BoardService serves the leaderboard and per-wallet history, checking the
// Redis cache first and falling back to the backend on a miss.
type BoardService struct {
	source       BoardSource
	leaderboards domain.LeaderboardCache
	histories    domain.HistoryCache
	logger       *slog.Logger
}

// NewBoardService creates a BoardService. Either cache may be nil; reads then
// always go to the backend.
func NewBoardService(
	source BoardSource,
	leaderboards domain.LeaderboardCache,
	histories domain.HistoryCache,
	logger *slog.Logger,
) *BoardService {
	return &BoardService{
		source:       source,
		leaderboards: leaderboards,
		histories:    histories,
		logger:       logger,
	}
}

// Leaderboard returns the three leaderboard tabs, cached.
func (s *BoardService) Leaderboard(ctx context.Context) (domain.Leaderboard, error) {
	if s.leaderboards != nil {
		board, err := s.leaderboards.Get(ctx)
		if err == nil {
			return board, nil
		}
	}

	board, err := s.source.GetLeaderboard(ctx)
	if err != nil {
		return domain.Leaderboard{}, fmt.Errorf("board_service: fetch leaderboard: %w", err)
	}

	// Back-fill cache; log but do not fail on cache write errors.
	if s.leaderboards != nil {
		if cacheErr := s.leaderboards.Set(ctx, board); cacheErr != nil {
			s.logger.WarnContext(ctx, "board_service: cache set failed",
				slog.String("error", cacheErr.Error()),
			)
		}
	}

	return board, nil
}

// History returns the wallet's per-day participation records. Full-history
// reads are cached per wallet; single-day queries bypass the cache since the
// backend filter is cheap and day queries are rare.
func (s *BoardService) History(ctx context.Context, wallet string, normalDay int64) ([]domain.HistoryDay, error) {
	if normalDay > 0 {
		days, err := s.source.GetHistory(ctx, wallet, normalDay)
		if err != nil {
			return nil, fmt.Errorf("board_service: fetch history day %d: %w", normalDay, err)
		}
		return days, nil
	}

	if s.histories != nil {
		days, err := s.histories.Get(ctx, wallet)
		if err == nil {
			return days, nil
		}
	}

	days, err := s.source.GetHistory(ctx, wallet, 0)
	if err != nil {
		return nil, fmt.Errorf("board_service: fetch history: %w", err)
	}

	if s.histories != nil {
		if cacheErr := s.histories.Set(ctx, wallet, days); cacheErr != nil {
			s.logger.WarnContext(ctx, "board_service: cache set failed",
				slog.String("wallet", wallet),
				slog.String("error", cacheErr.Error()),
			)
		}
	}

	return days, nil
}
