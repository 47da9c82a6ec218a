package view

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptophy/lottod/internal/domain"
)

func TestDayRolloverClearsPerDayValues(t *testing.T) {
	var s viewState

	dayUpdate{day: 5}.apply(&s)
	potUpdate{day: 5, wei: big.NewInt(1000)}.apply(&s)
	priceUpdate{wei: big.NewInt(100)}.apply(&s)
	totalUpdate{count: 42}.apply(&s)

	snap := s.snapshot()
	require.True(t, snap.DayKnown)
	require.NotNil(t, snap.PotWei)
	require.NotNil(t, snap.TotalTickets)

	dayUpdate{day: 6}.apply(&s)
	snap = s.snapshot()

	assert.Equal(t, uint64(6), snap.Day)
	assert.Nil(t, snap.PotWei, "previous day's pot must not show against the new day")
	assert.Nil(t, snap.TotalTickets, "previous day's total must not show against the new day")
	require.NotNil(t, snap.PriceWei, "ticket price is not per-day and survives rollover")
	assert.Equal(t, int64(100), snap.PriceWei.Int64())
}

func TestStalePotReadDiscarded(t *testing.T) {
	var s viewState

	dayUpdate{day: 6}.apply(&s)
	// A pot read issued while day 5 was current lands after the rollover.
	potUpdate{day: 5, wei: big.NewInt(999)}.apply(&s)

	assert.Nil(t, s.snapshot().PotWei)

	potUpdate{day: 6, wei: big.NewInt(777)}.apply(&s)
	require.NotNil(t, s.snapshot().PotWei)
	assert.Equal(t, int64(777), s.snapshot().PotWei.Int64())
}

func TestMyTicketsTracksCurrentDay(t *testing.T) {
	var s viewState

	tickets := []domain.Ticket{
		{Day: 4, Number: 11},
		{Day: 5, Number: 21},
		{Day: 5, Number: 22},
		{Day: 6, Number: 31},
	}

	dayUpdate{day: 5}.apply(&s)
	ticketsUpdate{tickets: tickets}.apply(&s)
	assert.Equal(t, []uint64{21, 22}, s.snapshot().MyTickets)

	// Rollover keeps the full list and re-derives the per-day view.
	dayUpdate{day: 6}.apply(&s)
	assert.Equal(t, []uint64{31}, s.snapshot().MyTickets)

	dayUpdate{day: 7}.apply(&s)
	assert.Empty(t, s.snapshot().MyTickets)
}

func TestSnapshotRendersPartialState(t *testing.T) {
	var s viewState
	s.status = StatusDefault

	snap := s.snapshot()
	assert.False(t, snap.DayKnown)
	assert.Nil(t, snap.PotWei)
	assert.Nil(t, snap.PriceWei)
	assert.Nil(t, snap.TotalTickets)
	assert.Nil(t, snap.MyTickets)
	assert.Equal(t, StatusDefault, snap.StatusMsg)

	// One field arriving populates only that field.
	priceUpdate{wei: big.NewInt(100)}.apply(&s)
	snap = s.snapshot()
	require.NotNil(t, snap.PriceWei)
	assert.Nil(t, snap.PotWei)
}

func TestSnapshotCopiesAreIndependent(t *testing.T) {
	var s viewState
	dayUpdate{day: 5}.apply(&s)
	potUpdate{day: 5, wei: big.NewInt(500)}.apply(&s)

	first := s.snapshot()
	potUpdate{day: 5, wei: big.NewInt(900)}.apply(&s)

	assert.Equal(t, int64(500), first.PotWei.Int64(), "handed-out snapshots must not change")
	assert.Equal(t, int64(900), s.snapshot().PotWei.Int64())
}
