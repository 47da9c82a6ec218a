package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cryptophy/lottod/internal/domain"
)

// DrawFeed reads back the durable draw stream.
type DrawFeed interface {
	RecentDraws(ctx context.Context, lastID string, count int) ([]domain.StreamMessage, error)
}

// DrawsHandler serves settled draw records: the recent feed from the draw
// stream and the long tail from cold storage.
type DrawsHandler struct {
	feed    DrawFeed
	archive domain.BlobReader
	logger  *slog.Logger
}

// NewDrawsHandler creates a DrawsHandler. Either dependency may be nil; the
// corresponding endpoint then reports 501.
func NewDrawsHandler(feed DrawFeed, archive domain.BlobReader, logger *slog.Logger) *DrawsHandler {
	return &DrawsHandler{feed: feed, archive: archive, logger: logHandler(logger, "draws")}
}

// ListRecent returns recent settled draws from the stream, oldest first.
// GET /api/draws
func (h *DrawsHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	if h.feed == nil {
		writeError(w, http.StatusNotImplemented, "draw feed not configured")
		return
	}

	limit := parseLimit(r, 30, 365)
	msgs, err := h.feed.RecentDraws(r.Context(), "0", limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "read draw stream failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "could not read draws")
		return
	}

	draws := make([]json.RawMessage, 0, len(msgs))
	for _, m := range msgs {
		draws = append(draws, json.RawMessage(m.Payload))
	}
	writeJSON(w, http.StatusOK, map[string]any{"draws": draws})
}

// ListArchived lists the archived day records available in cold storage.
// GET /api/draws/archive
func (h *DrawsHandler) ListArchived(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		writeError(w, http.StatusNotImplemented, "archive not configured")
		return
	}

	infos, err := h.archive.List(r.Context(), "archive/days/")
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list archive failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "could not list archive")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"objects": infos})
}
