package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptophy/lottod/internal/domain"
)

type fixedSnapshot struct {
	snap domain.DaySnapshot
}

func (f fixedSnapshot) Snapshot() domain.DaySnapshot { return f.snap }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGetSnapshotFormatsAmounts(t *testing.T) {
	total := uint64(7)
	h := NewSnapshotHandler(fixedSnapshot{snap: domain.DaySnapshot{
		Day:          5,
		DayKnown:     true,
		PotWei:       big.NewInt(1_500_000_000_000_000_000), // 1.5 ETH
		PriceWei:     big.NewInt(100),
		TotalTickets: &total,
		MyTickets:    []uint64{21, 9},
		EthUsd:       3000,
		StatusMsg:    "Pay & Spin",
		UpdatedAt:    time.Now().UTC(),
	}}, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/snapshot", nil)
	rec := httptest.NewRecorder()
	h.GetSnapshot(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, float64(5), body["day"])
	assert.Equal(t, "1500000000000000000", body["pot_wei"])
	assert.Equal(t, "1.500000", body["pot_eth"])
	assert.Equal(t, "$4,500.00", body["pot_usd"])
	assert.Equal(t, "0.000000", body["ticket_price_eth"])
	assert.Equal(t, []any{"00021", "00009"}, body["my_tickets_display"])
}

func TestGetSnapshotRendersPartialState(t *testing.T) {
	h := NewSnapshotHandler(fixedSnapshot{snap: domain.DaySnapshot{
		StatusMsg: "Pay & Spin",
	}}, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/snapshot", nil)
	rec := httptest.NewRecorder()
	h.GetSnapshot(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	// Pre-poll state renders with nulls, never an error.
	assert.Nil(t, body["day"])
	assert.Nil(t, body["pot_wei"])
	assert.Nil(t, body["pot_usd"])
	assert.Equal(t, "Pay & Spin", body["status_message"])
}
