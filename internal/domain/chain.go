package domain

import (
	"context"
	"math/big"
)

// TxStatus is the outcome of waiting for a transaction receipt.
type TxStatus int

const (
	TxConfirmed TxStatus = iota
	TxFailed
)

// ChainReader exposes the lottery contract's read functions. Every call is
// one independent network round trip with no ordering guarantee relative to
// the others; callers must tolerate any subset failing.
type ChainReader interface {
	// CurrentDay returns the index of the lottery day in progress.
	CurrentDay(ctx context.Context) (uint64, error)

	// DayPot returns the accumulated pot in wei for the given day.
	DayPot(ctx context.Context, day uint64) (*big.Int, error)

	// RequiredETH returns the current price of one ticket in wei.
	RequiredETH(ctx context.Context) (*big.Int, error)

	// TotalTicketsToday returns the number of tickets sold for the current day.
	TotalTicketsToday(ctx context.Context) (uint64, error)

	// UserTickets returns every ticket the address holds, across all days.
	UserTickets(ctx context.Context, address string) ([]Ticket, error)

	// DayInfo returns the settled record for a day as one atomic tuple.
	DayInfo(ctx context.Context, day uint64) (DayInfo, error)
}

// ChainWriter submits the single mutating operation against the contract.
type ChainWriter interface {
	// BuyTickets sends a payable buyTickets(count) transaction carrying
	// valueWei and returns the transaction hash. It does not wait for the
	// transaction to be mined.
	BuyTickets(ctx context.Context, count int64, valueWei *big.Int) (string, error)
}

// ReceiptWaiter blocks until a submitted transaction reaches a terminal
// receipt state or the context deadline expires.
type ReceiptWaiter interface {
	Wait(ctx context.Context, txHash string) (TxStatus, error)
}
