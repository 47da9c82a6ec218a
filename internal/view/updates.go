package view

import (
	"math/big"

	"github.com/cryptophy/lottod/internal/domain"
)

// viewState is the reducer's canonical state. Only the reducer goroutine
// touches it; everyone else sees immutable DaySnapshot copies.
type viewState struct {
	day      uint64
	dayKnown bool
	pot      *big.Int
	potDay   uint64 // day the pot read was issued for
	price    *big.Int
	total    *uint64
	tickets  []domain.Ticket // caller's full list, all days
	ethUsd   float64
	purchase domain.PendingPurchase
	status   string
	version  uint64
}

// update is one tagged partial-update message. Each carrier applies itself
// to the state; cross-field consistency rules live in the apply methods so
// they cannot be bypassed by ad hoc writes.
type update interface {
	apply(s *viewState)
}

type dayUpdate struct {
	day uint64
}

func (u dayUpdate) apply(s *viewState) {
	if s.dayKnown && s.day == u.day {
		return
	}
	// Day rollover: per-day values from the previous day must not be shown
	// against the new index. The global price and ticket list survive.
	if s.dayKnown && s.day != u.day {
		s.pot = nil
		s.total = nil
	}
	s.day = u.day
	s.dayKnown = true
}

type potUpdate struct {
	day uint64
	wei *big.Int
}

func (u potUpdate) apply(s *viewState) {
	// A pot read issued for a different day is a stale result; discard it
	// rather than pairing it with the wrong day index.
	if s.dayKnown && u.day != s.day {
		return
	}
	s.pot = u.wei
	s.potDay = u.day
}

type priceUpdate struct {
	wei *big.Int
}

func (u priceUpdate) apply(s *viewState) {
	s.price = u.wei
}

type totalUpdate struct {
	count uint64
}

func (u totalUpdate) apply(s *viewState) {
	c := u.count
	s.total = &c
}

type ticketsUpdate struct {
	tickets []domain.Ticket
}

func (u ticketsUpdate) apply(s *viewState) {
	s.tickets = u.tickets
}

type ethUsdUpdate struct {
	price float64
}

func (u ethUsdUpdate) apply(s *viewState) {
	s.ethUsd = u.price
}

type purchaseUpdate struct {
	purchase domain.PendingPurchase
}

func (u purchaseUpdate) apply(s *viewState) {
	s.purchase = u.purchase
}

type statusUpdate struct {
	msg string
}

func (u statusUpdate) apply(s *viewState) {
	s.status = u.msg
}

// snapshot renders the state as an immutable DaySnapshot. myTickets is
// derived on every render by strict day-index equality so it can never drift
// from the day field it is shown next to.
func (s *viewState) snapshot() domain.DaySnapshot {
	snap := domain.DaySnapshot{
		Day:       s.day,
		DayKnown:  s.dayKnown,
		EthUsd:    s.ethUsd,
		Purchase:  s.purchase,
		StatusMsg: s.status,
		Version:   s.version,
	}
	if s.pot != nil {
		snap.PotWei = new(big.Int).Set(s.pot)
	}
	if s.price != nil {
		snap.PriceWei = new(big.Int).Set(s.price)
	}
	if s.total != nil {
		t := *s.total
		snap.TotalTickets = &t
	}
	if s.dayKnown {
		snap.MyTickets = domain.TicketNumbersForDay(s.tickets, s.day)
	}
	return snap
}
