package domain

import (
	"math/big"
	"time"
)

// Ticket is one purchased entry: the lottery day it belongs to and its
// assigned number. The contract returns the caller's tickets across all days;
// filtering down to a single day happens in the view layer.
type Ticket struct {
	Day    uint64 `json:"day"`
	Number uint64 `json:"number"`
}

// TicketNumbersForDay returns the numbers of all tickets whose day field
// equals day, preserving order. Matching is strict equality on the day index.
func TicketNumbersForDay(tickets []Ticket, day uint64) []uint64 {
	var numbers []uint64
	for _, t := range tickets {
		if t.Day == day {
			numbers = append(numbers, t.Number)
		}
	}
	return numbers
}

// DaySnapshot is the render-ready view of the current lottery day. Each field
// is populated independently by its own polling read; a nil pointer means the
// value has not arrived yet and the view should render partial state instead
// of blocking. Snapshots are immutable: each reducer step publishes a fresh
// copy and never mutates a snapshot already handed out.
type DaySnapshot struct {
	Day          uint64          `json:"day"`
	DayKnown     bool            `json:"day_known"`
	PotWei       *big.Int        `json:"pot_wei"`
	PriceWei     *big.Int        `json:"ticket_price_wei"`
	TotalTickets *uint64         `json:"total_tickets"`
	MyTickets    []uint64        `json:"my_tickets"`
	EthUsd       float64         `json:"eth_usd,omitempty"`
	Purchase     PendingPurchase `json:"pending_purchase"`
	StatusMsg    string          `json:"status_message"`
	Version      uint64          `json:"version"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// DayInfo is the settled multi-field record for one day as returned by the
// contract's dayInfos accessor. Its fields arrive as one tuple and must be
// applied (and archived) as one unit.
type DayInfo struct {
	Day           uint64    `json:"day"`
	PotWei        *big.Int  `json:"pot_wei"`
	EcoWei        *big.Int  `json:"eco_wei"`
	Drawn         bool      `json:"drawn"`
	Paid          bool      `json:"paid"`
	WinningNumber uint64    `json:"winning_number"`
	PrizeClaimed  bool      `json:"prize_claimed"`
	DrawTimestamp time.Time `json:"draw_timestamp"`
	HasWinner     bool      `json:"has_winner"`
}
