package pipeline

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptophy/lottod/internal/domain"
)

type stubChain struct {
	day   uint64
	infos map[uint64]domain.DayInfo
}

func (s *stubChain) CurrentDay(ctx context.Context) (uint64, error) { return s.day, nil }
func (s *stubChain) DayPot(ctx context.Context, day uint64) (*big.Int, error) {
	return big.NewInt(0), nil
}
func (s *stubChain) RequiredETH(ctx context.Context) (*big.Int, error)     { return big.NewInt(0), nil }
func (s *stubChain) TotalTicketsToday(ctx context.Context) (uint64, error) { return 0, nil }
func (s *stubChain) UserTickets(ctx context.Context, address string) ([]domain.Ticket, error) {
	return nil, nil
}
func (s *stubChain) DayInfo(ctx context.Context, day uint64) (domain.DayInfo, error) {
	return s.infos[day], nil
}

type stubArchiver struct {
	days []domain.DayInfo
}

func (a *stubArchiver) ArchivePurchases(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}
func (a *stubArchiver) ArchiveDay(ctx context.Context, info domain.DayInfo) error {
	a.days = append(a.days, info)
	return nil
}

type stubJournal struct {
	entries [][]byte
}

func (j *stubJournal) AppendDraw(ctx context.Context, payload []byte) error {
	j.entries = append(j.entries, payload)
	return nil
}

func TestDrawMonitorSettlesFinishedDay(t *testing.T) {
	chain := &stubChain{day: 5, infos: map[uint64]domain.DayInfo{}}
	archiver := &stubArchiver{}
	journal := &stubJournal{}
	m := NewDrawMonitor(chain, archiver, journal, nil, nil, time.Minute,
		slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx := context.Background()

	// Watermark established, nothing to settle.
	require.NoError(t, m.tick(ctx))
	assert.Empty(t, m.pending)

	// Rollover before the draw has landed: the day stays pending.
	chain.day = 6
	chain.infos[5] = domain.DayInfo{Day: 5, Drawn: false}
	require.NoError(t, m.tick(ctx))
	assert.Equal(t, []uint64{5}, m.pending)
	assert.Empty(t, archiver.days)

	// Draw lands; the next tick settles the day once.
	chain.infos[5] = domain.DayInfo{
		Day:           5,
		PotWei:        big.NewInt(1_500_000_000_000_000_000),
		Drawn:         true,
		WinningNumber: 321,
		HasWinner:     true,
	}
	require.NoError(t, m.tick(ctx))
	assert.Empty(t, m.pending)
	require.Len(t, archiver.days, 1)
	assert.Equal(t, uint64(5), archiver.days[0].Day)

	require.Len(t, journal.entries, 1)
	var rec domain.DayInfo
	require.NoError(t, json.Unmarshal(journal.entries[0], &rec))
	assert.Equal(t, uint64(321), rec.WinningNumber)

	// A further tick without rollover does not settle again.
	require.NoError(t, m.tick(ctx))
	assert.Len(t, archiver.days, 1)
}

func TestDrawMonitorSettlesSkippedDays(t *testing.T) {
	chain := &stubChain{day: 5, infos: map[uint64]domain.DayInfo{
		5: {Day: 5, Drawn: true},
		6: {Day: 6, Drawn: true},
	}}
	archiver := &stubArchiver{}
	m := NewDrawMonitor(chain, archiver, nil, nil, nil, time.Minute,
		slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx := context.Background()
	require.NoError(t, m.tick(ctx))

	// The process slept through two rollovers; both days settle.
	chain.day = 7
	require.NoError(t, m.tick(ctx))
	require.Len(t, archiver.days, 2)
	assert.Equal(t, uint64(5), archiver.days[0].Day)
	assert.Equal(t, uint64(6), archiver.days[1].Day)
}

func TestNextCronTime(t *testing.T) {
	after := time.Date(2026, 3, 10, 2, 30, 0, 0, time.UTC)

	next, err := nextCronTime("0 3 * * *", after)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 10, 3, 0, 0, 0, time.UTC), next)

	// Already past today's trigger: rolls to tomorrow.
	next, err = nextCronTime("0 3 * * *", time.Date(2026, 3, 10, 4, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 11, 3, 0, 0, 0, time.UTC), next)

	_, err = nextCronTime("not a cron", after)
	assert.Error(t, err)
}
