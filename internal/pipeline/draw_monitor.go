package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/cryptophy/lottod/internal/domain"
	"github.com/cryptophy/lottod/internal/format"
)

// DrawJournal appends one settled draw record to the durable draw stream.
type DrawJournal interface {
	AppendDraw(ctx context.Context, payload []byte) error
}

// Notifier delivers out-of-band event notifications.
type Notifier interface {
	Notify(ctx context.Context, event, message string) error
}

// DrawMonitor watches the day index and settles finished days: once a day
// rolls over it keeps reading that day's record until the draw lands, then
// archives it, appends it to the draw stream, and announces the result.
type DrawMonitor struct {
	chain    domain.ChainReader
	archiver domain.Archiver
	journal  DrawJournal
	bus      domain.SignalBus
	notifier Notifier
	interval time.Duration
	logger   *slog.Logger

	lastDay  uint64
	dayKnown bool
	pending  []uint64
}

// NewDrawMonitor creates a DrawMonitor. archiver, journal, bus, and notifier
// may each be nil; settlement then skips the corresponding side effect.
func NewDrawMonitor(
	chain domain.ChainReader,
	archiver domain.Archiver,
	journal DrawJournal,
	bus domain.SignalBus,
	notifier Notifier,
	interval time.Duration,
	logger *slog.Logger,
) *DrawMonitor {
	return &DrawMonitor{
		chain:    chain,
		archiver: archiver,
		journal:  journal,
		bus:      bus,
		notifier: notifier,
		interval: interval,
		logger:   logger.With(slog.String("component", "draw_monitor")),
	}
}

// Run polls until the context is cancelled. Read failures are logged and
// retried on the next tick.
func (m *DrawMonitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		if err := m.tick(ctx); err != nil && ctx.Err() == nil {
			m.logger.WarnContext(ctx, "draw monitor tick failed",
				slog.String("error", err.Error()),
			)
		}
		select {
		case <-ctx.Done():
			m.logger.InfoContext(ctx, "draw monitor stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// tick advances the day watermark and tries to settle any finished days.
func (m *DrawMonitor) tick(ctx context.Context) error {
	day, err := m.chain.CurrentDay(ctx)
	if err != nil {
		return fmt.Errorf("read current day: %w", err)
	}

	if !m.dayKnown {
		m.lastDay = day
		m.dayKnown = true
		m.logger.InfoContext(ctx, "draw monitor watching", slog.Uint64("day", day))
	} else if day > m.lastDay {
		for d := m.lastDay; d < day; d++ {
			m.pending = append(m.pending, d)
		}
		m.lastDay = day
		m.logger.InfoContext(ctx, "day rolled over",
			slog.Uint64("day", day),
			slog.Int("pending_draws", len(m.pending)),
		)
	}

	var unresolved []uint64
	for _, d := range m.pending {
		settled, err := m.settle(ctx, d)
		if err != nil {
			m.logger.WarnContext(ctx, "settle day failed",
				slog.Uint64("day", d),
				slog.String("error", err.Error()),
			)
			unresolved = append(unresolved, d)
			continue
		}
		if !settled {
			unresolved = append(unresolved, d)
		}
	}
	m.pending = unresolved
	return nil
}

// settle fetches the day record and, once the draw has landed, runs the side
// effects. Returns false when the draw has not happened yet.
func (m *DrawMonitor) settle(ctx context.Context, day uint64) (bool, error) {
	info, err := m.chain.DayInfo(ctx, day)
	if err != nil {
		return false, fmt.Errorf("read day info: %w", err)
	}
	if !info.Drawn {
		return false, nil
	}

	payload, err := json.Marshal(info)
	if err != nil {
		return false, fmt.Errorf("marshal day info: %w", err)
	}

	if m.archiver != nil {
		if err := m.archiver.ArchiveDay(ctx, info); err != nil {
			return false, fmt.Errorf("archive day: %w", err)
		}
	}
	if m.journal != nil {
		if err := m.journal.AppendDraw(ctx, payload); err != nil {
			m.logger.WarnContext(ctx, "append draw", slog.String("error", err.Error()))
		}
	}
	if m.bus != nil {
		if err := m.bus.Publish(ctx, domain.ChannelDraw, payload); err != nil {
			m.logger.WarnContext(ctx, "publish draw", slog.String("error", err.Error()))
		}
	}
	if m.notifier != nil {
		msg := fmt.Sprintf("Day %d drawn: winning number %s, pot %s ETH",
			info.Day, format.Ticket(info.WinningNumber), format.ETH(info.PotWei))
		if !info.HasWinner {
			msg = fmt.Sprintf("Day %d drawn: no winner, pot %s ETH rolls over",
				info.Day, format.ETH(info.PotWei))
		}
		if err := m.notifier.Notify(ctx, "draw", msg); err != nil {
			m.logger.WarnContext(ctx, "notify draw", slog.String("error", err.Error()))
		}
	}

	m.logger.InfoContext(ctx, "day settled",
		slog.Uint64("day", info.Day),
		slog.Uint64("winning_number", info.WinningNumber),
		slog.Bool("has_winner", info.HasWinner),
	)
	return true, nil
}
