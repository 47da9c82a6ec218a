package handler

import (
	"log/slog"
	"net/http"

	"github.com/cryptophy/lottod/internal/domain"
	"github.com/cryptophy/lottod/internal/format"
)

// SnapshotSource yields the latest published day snapshot.
type SnapshotSource interface {
	Snapshot() domain.DaySnapshot
}

// SnapshotHandler serves the render-ready view of the current lottery day.
type SnapshotHandler struct {
	source SnapshotSource
	logger *slog.Logger
}

// NewSnapshotHandler creates a SnapshotHandler.
func NewSnapshotHandler(source SnapshotSource, logger *slog.Logger) *SnapshotHandler {
	return &SnapshotHandler{source: source, logger: logHandler(logger, "snapshot")}
}

// snapshotResponse is the wire shape of the snapshot. Wei amounts travel as
// decimal strings next to their display renderings; absent reads are null.
type snapshotResponse struct {
	Day          *uint64  `json:"day"`
	PotWei       *string  `json:"pot_wei"`
	PotEth       *string  `json:"pot_eth"`
	PotUsd       *string  `json:"pot_usd"`
	PriceWei     *string  `json:"ticket_price_wei"`
	PriceEth     *string  `json:"ticket_price_eth"`
	TotalTickets *uint64  `json:"total_tickets"`
	MyTickets    []uint64 `json:"my_tickets"`
	MyDisplay    []string `json:"my_tickets_display"`
	EthUsd       float64  `json:"eth_usd,omitempty"`
	Purchase     any      `json:"pending_purchase"`
	StatusMsg    string   `json:"status_message"`
	Version      uint64   `json:"version"`
	UpdatedAt    string   `json:"updated_at"`
}

// GetSnapshot returns the latest snapshot with display formatting applied.
// GET /api/snapshot
func (h *SnapshotHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap := h.source.Snapshot()

	resp := snapshotResponse{
		TotalTickets: snap.TotalTickets,
		MyTickets:    snap.MyTickets,
		EthUsd:       snap.EthUsd,
		Purchase:     snap.Purchase,
		StatusMsg:    snap.StatusMsg,
		Version:      snap.Version,
		UpdatedAt:    snap.UpdatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}

	if snap.DayKnown {
		day := snap.Day
		resp.Day = &day
	}
	if snap.PotWei != nil {
		wei := snap.PotWei.String()
		eth := format.ETH(snap.PotWei)
		resp.PotWei = &wei
		resp.PotEth = &eth
		if snap.EthUsd > 0 {
			usd := format.USD(format.EthFloat(snap.PotWei), snap.EthUsd)
			resp.PotUsd = &usd
		}
	}
	if snap.PriceWei != nil {
		wei := snap.PriceWei.String()
		eth := format.ETH(snap.PriceWei)
		resp.PriceWei = &wei
		resp.PriceEth = &eth
	}
	for _, n := range snap.MyTickets {
		resp.MyDisplay = append(resp.MyDisplay, format.Ticket(n))
	}

	writeJSON(w, http.StatusOK, resp)
}
