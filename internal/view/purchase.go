package view

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/cryptophy/lottod/internal/domain"
)

// PurchaseResult is the outcome of a completed submit call: the terminal
// purchase record and, on confirmation, the composed share message.
type PurchaseResult struct {
	Purchase     domain.PendingPurchase
	ShareMessage string
}

// SubmitPurchase runs one ticket purchase through its full lifecycle and
// blocks until it reaches a terminal state. The state machine serializes the
// path: a second call while one is in flight fails with ErrPurchaseInFlight
// and changes nothing.
//
// Preconditions for leaving idle: count >= 1 and a known ticket price. A call
// that fails them is a no-op on view state.
func (s *Synchronizer) SubmitPurchase(ctx context.Context, count int64) (PurchaseResult, error) {
	if s.writer == nil || s.receipts == nil {
		return PurchaseResult{}, fmt.Errorf("view: no signing wallet configured: %w", domain.ErrInvalidPurchase)
	}
	if count < 1 {
		return PurchaseResult{}, fmt.Errorf("view: count %d: %w", count, domain.ErrInvalidPurchase)
	}

	snap := s.Snapshot()
	if snap.PriceWei == nil {
		return PurchaseResult{}, domain.ErrPriceUnknown
	}
	value := new(big.Int).Mul(snap.PriceWei, big.NewInt(count))

	p, err := s.beginPurchase(count, value)
	if err != nil {
		return PurchaseResult{}, err
	}

	s.enqueue(ctx, statusUpdate{msg: StatusSending})
	s.setPending(ctx, p)

	txHash, err := s.writer.BuyTickets(ctx, count, value)
	if err != nil {
		return s.failPurchase(ctx, p, fmt.Errorf("view: submit purchase: %w", err))
	}
	p.TxHash = txHash
	s.journalOpen(ctx, p, snap.Day)

	s.enqueue(ctx, statusUpdate{msg: StatusConfirming})
	s.setPending(ctx, p)

	// The submitted state is bounded: no receipt within the timeout means
	// failed, and the purchase becomes retryable.
	waitCtx, cancel := context.WithTimeout(ctx, s.submitTimeout)
	status, err := s.receipts.Wait(waitCtx, txHash)
	cancel()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = domain.ErrReceiptTimeout
		}
		return s.failPurchase(ctx, p, fmt.Errorf("view: await receipt: %w", err))
	}
	if status != domain.TxConfirmed {
		return s.failPurchase(ctx, p, fmt.Errorf("view: tx %s: %w", txHash, domain.ErrTxReverted))
	}

	if err := p.Transition(domain.PurchaseConfirmed); err != nil {
		return PurchaseResult{}, err
	}
	s.setPending(ctx, p)
	s.journalClose(ctx, p)

	// Exactly three refreshes follow confirmation: the pot, the caller's
	// tickets, and the day total. The share message uses the freshly
	// refetched pot, never a projection.
	freshPot := s.refreshAfterConfirm(ctx)
	share := ShareMessage(count, freshPot)

	s.enqueue(ctx, statusUpdate{msg: StatusSuccess})
	s.announce(ctx, p, share)
	s.resetPurchase(ctx)

	return PurchaseResult{Purchase: p, ShareMessage: share}, nil
}

// beginPurchase claims the submit path: idle -> submitted, or an in-flight
// error with no side effects.
func (s *Synchronizer) beginPurchase(count int64, value *big.Int) (domain.PendingPurchase, error) {
	s.purchaseMu.Lock()
	defer s.purchaseMu.Unlock()

	if s.pending.State != "" && s.pending.State != domain.PurchaseIdle {
		return domain.PendingPurchase{}, fmt.Errorf("view: purchase %s is %s: %w",
			s.pending.ID, s.pending.State, domain.ErrPurchaseInFlight)
	}

	p := domain.PendingPurchase{
		ID:       uuid.NewString(),
		Count:    count,
		ValueWei: value,
		State:    domain.PurchaseIdle,
	}
	if err := p.Transition(domain.PurchaseSubmitted); err != nil {
		return domain.PendingPurchase{}, err
	}
	p.SubmittedAt = time.Now().UTC()
	s.pending = p
	return p, nil
}

// failPurchase drives the purchase to failed, restores the default status
// label, and frees the submit path.
func (s *Synchronizer) failPurchase(ctx context.Context, p domain.PendingPurchase, cause error) (PurchaseResult, error) {
	if err := p.Transition(domain.PurchaseFailed); err != nil {
		s.logger.ErrorContext(ctx, "purchase transition", slog.String("error", err.Error()))
	}
	s.setPending(ctx, p)
	s.journalClose(ctx, p)

	s.logger.WarnContext(ctx, "purchase failed",
		slog.String("purchase_id", p.ID),
		slog.String("tx_hash", p.TxHash),
		slog.String("error", cause.Error()),
	)

	s.enqueue(ctx, statusUpdate{msg: StatusDefault})
	s.resetPurchase(ctx)
	return PurchaseResult{Purchase: p}, cause
}

// setPending records the purchase as authoritative and mirrors it into the
// view state.
func (s *Synchronizer) setPending(ctx context.Context, p domain.PendingPurchase) {
	s.purchaseMu.Lock()
	s.pending = p
	s.purchaseMu.Unlock()
	s.enqueue(ctx, purchaseUpdate{purchase: p})
}

// resetPurchase returns the machine to idle after a terminal state's side
// effects have run.
func (s *Synchronizer) resetPurchase(ctx context.Context) {
	s.purchaseMu.Lock()
	p := s.pending
	if err := p.Transition(domain.PurchaseIdle); err != nil {
		s.purchaseMu.Unlock()
		s.logger.ErrorContext(ctx, "purchase reset", slog.String("error", err.Error()))
		return
	}
	p.ID = ""
	p.TxHash = ""
	p.Count = 0
	p.ValueWei = nil
	s.pending = p
	s.purchaseMu.Unlock()
	s.enqueue(ctx, purchaseUpdate{purchase: p})
}

// refreshAfterConfirm re-reads the pot, the caller's tickets, and the day
// total, and returns the fresh pot for the share message. Failures leave the
// previous values in place; the pollers will catch up.
func (s *Synchronizer) refreshAfterConfirm(ctx context.Context) *big.Int {
	snap := s.Snapshot()

	var freshPot *big.Int
	if snap.DayKnown {
		pot, err := s.chain.DayPot(ctx, snap.Day)
		if err != nil {
			s.logger.WarnContext(ctx, "refresh pot", slog.String("error", err.Error()))
		} else {
			freshPot = pot
			s.enqueue(ctx, potUpdate{day: snap.Day, wei: pot})
		}
	}
	if freshPot == nil {
		freshPot = snap.PotWei
	}

	if s.identity != nil {
		if profile, ok := s.identity.Profile(); ok {
			tickets, err := s.chain.UserTickets(ctx, profile.Wallet)
			if err != nil {
				s.logger.WarnContext(ctx, "refresh tickets", slog.String("error", err.Error()))
			} else {
				s.enqueue(ctx, ticketsUpdate{tickets: tickets})
			}
		}
	}

	total, err := s.chain.TotalTicketsToday(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "refresh total", slog.String("error", err.Error()))
	} else {
		s.enqueue(ctx, totalUpdate{count: total})
	}

	return freshPot
}

// journalOpen inserts the submitted purchase into the audit journal.
func (s *Synchronizer) journalOpen(ctx context.Context, p domain.PendingPurchase, day uint64) {
	if s.store == nil {
		return
	}
	var wallet string
	if s.identity != nil {
		if profile, ok := s.identity.Profile(); ok {
			wallet = profile.Wallet
		}
	}
	rec := domain.PurchaseRecord{
		ID:        p.ID,
		Wallet:    wallet,
		Day:       day,
		Count:     p.Count,
		ValueWei:  p.ValueWei,
		TxHash:    p.TxHash,
		State:     p.State,
		CreatedAt: p.SubmittedAt,
	}
	if err := s.store.Create(ctx, rec); err != nil {
		s.logger.ErrorContext(ctx, "journal purchase", slog.String("error", err.Error()))
	}
}

// journalClose records the terminal state. The journal is an audit trail;
// a write failure never blocks the purchase flow.
func (s *Synchronizer) journalClose(ctx context.Context, p domain.PendingPurchase) {
	if s.store == nil || p.TxHash == "" {
		return
	}
	if err := s.store.Close(ctx, p.ID, p.State, p.ClosedAt); err != nil {
		s.logger.ErrorContext(ctx, "close purchase journal", slog.String("error", err.Error()))
	}
}

// announce pushes the confirmed purchase to subscribers and notification
// channels.
func (s *Synchronizer) announce(ctx context.Context, p domain.PendingPurchase, share string) {
	if s.bus != nil {
		payload, err := json.Marshal(p)
		if err == nil {
			if err := s.bus.Publish(ctx, domain.ChannelPurchase, payload); err != nil {
				s.logger.WarnContext(ctx, "publish purchase", slog.String("error", err.Error()))
			}
		}
	}
	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, "purchase_confirmed", share); err != nil {
			s.logger.WarnContext(ctx, "notify purchase", slog.String("error", err.Error()))
		}
	}
}
