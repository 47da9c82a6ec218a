package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cryptophy/lottod/internal/domain"
)

// BoardReader serves the cached leaderboard and history views.
type BoardReader interface {
	Leaderboard(ctx context.Context) (domain.Leaderboard, error)
	History(ctx context.Context, wallet string, normalDay int64) ([]domain.HistoryDay, error)
}

// BoardHandler serves the leaderboard and history endpoints.
type BoardHandler struct {
	boards   BoardReader
	identity Identity
	logger   *slog.Logger
}

// NewBoardHandler creates a BoardHandler.
func NewBoardHandler(boards BoardReader, identity Identity, logger *slog.Logger) *BoardHandler {
	return &BoardHandler{
		boards:   boards,
		identity: identity,
		logger:   logHandler(logger, "board"),
	}
}

// GetLeaderboard returns the three leaderboard tabs.
// GET /api/leaderboard
func (h *BoardHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	board, err := h.boards.Leaderboard(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "fetch leaderboard failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "could not fetch leaderboard")
		return
	}
	writeJSON(w, http.StatusOK, board)
}

// GetHistory returns per-day participation records. The wallet defaults to
// the authenticated profile; ?address= overrides it and ?day= narrows the
// result to one day.
// GET /api/history
func (h *BoardHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	wallet := r.URL.Query().Get("address")
	if wallet == "" {
		profile, ok := h.identity.Profile()
		if !ok {
			writeError(w, http.StatusBadRequest, "address required when not authenticated")
			return
		}
		wallet = profile.Wallet
	}

	var day int64
	if v := r.URL.Query().Get("day"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "day must be a positive integer")
			return
		}
		day = n
	}

	days, err := h.boards.History(r.Context(), wallet, day)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "fetch history failed",
			slog.String("wallet", wallet),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "could not fetch history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": days})
}
