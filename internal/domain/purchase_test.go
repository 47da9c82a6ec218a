package domain

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurchaseStateTransitions(t *testing.T) {
	legal := []struct{ from, to PurchaseState }{
		{PurchaseIdle, PurchaseSubmitted},
		{PurchaseSubmitted, PurchaseConfirmed},
		{PurchaseSubmitted, PurchaseFailed},
		{PurchaseConfirmed, PurchaseIdle},
		{PurchaseFailed, PurchaseIdle},
	}
	for _, e := range legal {
		assert.True(t, e.from.CanTransition(e.to), "%s -> %s should be legal", e.from, e.to)
	}

	all := []PurchaseState{PurchaseIdle, PurchaseSubmitted, PurchaseConfirmed, PurchaseFailed}
	isLegal := func(from, to PurchaseState) bool {
		for _, e := range legal {
			if e.from == from && e.to == to {
				return true
			}
		}
		return false
	}
	for _, from := range all {
		for _, to := range all {
			if !isLegal(from, to) {
				assert.False(t, from.CanTransition(to), "%s -> %s should be rejected", from, to)
			}
		}
	}
}

func TestPurchaseCannotSkipSubmitted(t *testing.T) {
	p := PendingPurchase{State: PurchaseIdle}
	assert.ErrorIs(t, p.Transition(PurchaseConfirmed), ErrInvalidTransition)
	assert.ErrorIs(t, p.Transition(PurchaseFailed), ErrInvalidTransition)
	assert.Equal(t, PurchaseIdle, p.State)
}

func TestPurchaseLifecycle(t *testing.T) {
	p := PendingPurchase{
		ID:       "p-1",
		Count:    2,
		ValueWei: big.NewInt(200),
	}

	require.NoError(t, p.Transition(PurchaseSubmitted))
	assert.Equal(t, PurchaseSubmitted, p.State)

	// Only a receipt outcome leaves submitted.
	assert.ErrorIs(t, p.Transition(PurchaseSubmitted), ErrInvalidTransition)

	require.NoError(t, p.Transition(PurchaseConfirmed))
	assert.True(t, p.State.Terminal())
	assert.False(t, p.ClosedAt.IsZero())

	require.NoError(t, p.Transition(PurchaseIdle))
}

func TestTicketNumbersForDay(t *testing.T) {
	tickets := []Ticket{
		{Day: 4, Number: 11},
		{Day: 5, Number: 7},
		{Day: 5, Number: 42},
		{Day: 6, Number: 99},
	}

	assert.Equal(t, []uint64{7, 42}, TicketNumbersForDay(tickets, 5))
	assert.Equal(t, []uint64{11}, TicketNumbersForDay(tickets, 4))
	assert.Nil(t, TicketNumbersForDay(tickets, 9))
}
