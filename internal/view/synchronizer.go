// Package view maintains the render-ready state of the current lottery day.
// A single reducer goroutine folds tagged partial updates from independent
// pollers into one DaySnapshot; consumers read immutable copies and subscribe
// to change signals, never the mutable state itself.
package view

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cryptophy/lottod/internal/domain"
)

// Status labels surfaced across the purchase lifecycle. These are exact UI
// contracts shared with the mini app, not internal mechanism.
const (
	StatusDefault    = "Pay & Spin"
	StatusSending    = "Sending Transaction..."
	StatusConfirming = "Waiting for Confirmation..."
	StatusSuccess    = "Success! Buy more?"
)

// PriceSource supplies the ETH/USD spot price.
type PriceSource interface {
	Spot(ctx context.Context) (float64, error)
}

// Notifier delivers out-of-band event notifications.
type Notifier interface {
	Notify(ctx context.Context, event, message string) error
}

// Identity yields the authenticated wallet, if any. Ticket polling stays
// dormant until a profile exists.
type Identity interface {
	Profile() (domain.AccountProfile, bool)
}

// PollIntervals holds the cadence of each independent read. The values are
// deliberately staggered so the reads never land on the RPC endpoint as one
// burst.
type PollIntervals struct {
	Day     time.Duration
	Pot     time.Duration
	Price   time.Duration
	Tickets time.Duration
	Total   time.Duration
	EthUsd  time.Duration
}

// Options wires a Synchronizer. Chain and Logger are required; everything
// else degrades gracefully when absent (nil Writer disables purchases, nil
// Prices disables the USD conversion, and so on).
type Options struct {
	Chain         domain.ChainReader
	Writer        domain.ChainWriter
	Receipts      domain.ReceiptWaiter
	Store         domain.PurchaseStore
	Bus           domain.SignalBus
	Prices        PriceSource
	Notifier      Notifier
	Identity      Identity
	Logger        *slog.Logger
	Poll          PollIntervals
	SubmitTimeout time.Duration
}

// Synchronizer owns the view state for the current lottery day.
type Synchronizer struct {
	chain         domain.ChainReader
	writer        domain.ChainWriter
	receipts      domain.ReceiptWaiter
	store         domain.PurchaseStore
	bus           domain.SignalBus
	prices        PriceSource
	notifier      Notifier
	identity      Identity
	logger        *slog.Logger
	poll          PollIntervals
	submitTimeout time.Duration

	updates chan update

	// state is touched only by the reducer goroutine.
	state viewState

	mu      sync.RWMutex
	current domain.DaySnapshot

	purchaseMu sync.Mutex
	pending    domain.PendingPurchase
}

// New creates a Synchronizer in the pre-poll state: day unknown, purchase
// idle, default status label.
func New(opts Options) *Synchronizer {
	s := &Synchronizer{
		chain:         opts.Chain,
		writer:        opts.Writer,
		receipts:      opts.Receipts,
		store:         opts.Store,
		bus:           opts.Bus,
		prices:        opts.Prices,
		notifier:      opts.Notifier,
		identity:      opts.Identity,
		logger:        opts.Logger.With(slog.String("component", "view")),
		poll:          opts.Poll,
		submitTimeout: opts.SubmitTimeout,
		updates:       make(chan update, 64),
		pending:       domain.PendingPurchase{State: domain.PurchaseIdle},
	}
	s.state.status = StatusDefault
	s.state.purchase = s.pending
	s.current = s.state.snapshot()
	return s
}

// Run starts the reducer and the pollers and blocks until the context is
// cancelled or a poller fails fatally. Individual read failures are logged
// and retried on the next tick; only the reducer exiting ends the run.
func (s *Synchronizer) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return s.reduce(ctx) })

	s.startPoller(g, ctx, "day", s.poll.Day, s.pollDay)
	s.startPoller(g, ctx, "pot", s.poll.Pot, s.pollPot)
	s.startPoller(g, ctx, "price", s.poll.Price, s.pollPrice)
	s.startPoller(g, ctx, "total", s.poll.Total, s.pollTotal)
	s.startPoller(g, ctx, "tickets", s.poll.Tickets, s.pollTickets)
	if s.prices != nil {
		s.startPoller(g, ctx, "eth_usd", s.poll.EthUsd, s.pollEthUsd)
	}

	return g.Wait()
}

// Snapshot returns the latest published snapshot. The copy is immutable;
// callers may hold it indefinitely.
func (s *Synchronizer) Snapshot() domain.DaySnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// reduce is the single writer of view state. Updates apply in arrival order;
// every applied update publishes a fresh snapshot.
func (s *Synchronizer) reduce(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case u := <-s.updates:
			u.apply(&s.state)
			s.state.version++

			snap := s.state.snapshot()
			snap.UpdatedAt = time.Now().UTC()

			s.mu.Lock()
			s.current = snap
			s.mu.Unlock()

			s.publishSnapshot(ctx, snap)
		}
	}
}

// enqueue hands an update to the reducer, dropping it if the run is ending.
func (s *Synchronizer) enqueue(ctx context.Context, u update) {
	select {
	case s.updates <- u:
	case <-ctx.Done():
	}
}

func (s *Synchronizer) publishSnapshot(ctx context.Context, snap domain.DaySnapshot) {
	if s.bus == nil {
		return
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		s.logger.ErrorContext(ctx, "marshal snapshot", slog.String("error", err.Error()))
		return
	}
	if err := s.bus.Publish(ctx, domain.ChannelSnapshot, payload); err != nil {
		s.logger.WarnContext(ctx, "publish snapshot", slog.String("error", err.Error()))
	}
}

// startPoller runs fn once immediately and then on every tick. Poll errors
// are logged and swallowed; the previous value simply stays on screen.
func (s *Synchronizer) startPoller(g *errgroup.Group, ctx context.Context, name string, interval time.Duration, fn func(ctx context.Context) error) {
	if interval <= 0 {
		return
	}
	g.Go(func() error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			if err := fn(ctx); err != nil && ctx.Err() == nil {
				s.logger.WarnContext(ctx, "poll failed",
					slog.String("poll", name),
					slog.String("error", err.Error()),
				)
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		}
	})
}

func (s *Synchronizer) pollDay(ctx context.Context) error {
	day, err := s.chain.CurrentDay(ctx)
	if err != nil {
		return err
	}
	s.enqueue(ctx, dayUpdate{day: day})
	return nil
}

func (s *Synchronizer) pollPot(ctx context.Context) error {
	snap := s.Snapshot()
	if !snap.DayKnown {
		// Nothing to read against yet; the day poller will unblock us.
		return nil
	}
	pot, err := s.chain.DayPot(ctx, snap.Day)
	if err != nil {
		return err
	}
	s.enqueue(ctx, potUpdate{day: snap.Day, wei: pot})
	return nil
}

func (s *Synchronizer) pollPrice(ctx context.Context) error {
	price, err := s.chain.RequiredETH(ctx)
	if err != nil {
		return err
	}
	s.enqueue(ctx, priceUpdate{wei: price})
	return nil
}

func (s *Synchronizer) pollTotal(ctx context.Context) error {
	total, err := s.chain.TotalTicketsToday(ctx)
	if err != nil {
		return err
	}
	s.enqueue(ctx, totalUpdate{count: total})
	return nil
}

func (s *Synchronizer) pollTickets(ctx context.Context) error {
	if s.identity == nil {
		return nil
	}
	profile, ok := s.identity.Profile()
	if !ok {
		return nil
	}
	tickets, err := s.chain.UserTickets(ctx, profile.Wallet)
	if err != nil {
		return err
	}
	s.enqueue(ctx, ticketsUpdate{tickets: tickets})
	return nil
}

func (s *Synchronizer) pollEthUsd(ctx context.Context) error {
	price, err := s.prices.Spot(ctx)
	if err != nil {
		return err
	}
	s.enqueue(ctx, ethUsdUpdate{price: price})
	return nil
}
