package domain

import (
	"fmt"
	"math/big"
	"time"
)

// PurchaseState is the lifecycle of a ticket purchase. Exactly one purchase
// may be active at a time; the state machine, not a lock, serializes the
// submit path.
type PurchaseState string

const (
	PurchaseIdle      PurchaseState = "idle"
	PurchaseSubmitted PurchaseState = "submitted"
	PurchaseConfirmed PurchaseState = "confirmed"
	PurchaseFailed    PurchaseState = "failed"
)

// validTransitions enumerates every legal edge. Anything absent is rejected;
// there is no way to skip submitted or to leave submitted without a receipt
// outcome.
var validTransitions = map[PurchaseState][]PurchaseState{
	PurchaseIdle:      {PurchaseSubmitted},
	PurchaseSubmitted: {PurchaseConfirmed, PurchaseFailed},
	PurchaseConfirmed: {PurchaseIdle},
	PurchaseFailed:    {PurchaseIdle},
}

// CanTransition reports whether the edge s -> to is legal.
func (s PurchaseState) CanTransition(to PurchaseState) bool {
	for _, next := range validTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether the state is a receipt outcome. Terminal states
// return to idle once their side effects have run.
func (s PurchaseState) Terminal() bool {
	return s == PurchaseConfirmed || s == PurchaseFailed
}

// PendingPurchase tracks one in-flight ticket purchase.
type PendingPurchase struct {
	ID          string        `json:"id"`
	Count       int64         `json:"count"`
	ValueWei    *big.Int      `json:"value_wei"`
	TxHash      string        `json:"tx_hash,omitempty"`
	State       PurchaseState `json:"state"`
	SubmittedAt time.Time     `json:"submitted_at,omitempty"`
	ClosedAt    time.Time     `json:"closed_at,omitempty"`
}

// Transition moves the purchase to the given state, rejecting illegal edges.
func (p *PendingPurchase) Transition(to PurchaseState) error {
	from := p.State
	if from == "" {
		from = PurchaseIdle
	}
	if !from.CanTransition(to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	p.State = to
	if to.Terminal() {
		p.ClosedAt = time.Now().UTC()
	}
	return nil
}

// PurchaseRecord is the persisted journal row for a purchase that reached a
// terminal state.
type PurchaseRecord struct {
	ID        string        `json:"id"`
	Wallet    string        `json:"wallet"`
	Day       uint64        `json:"day"`
	Count     int64         `json:"count"`
	ValueWei  *big.Int      `json:"value_wei"`
	TxHash    string        `json:"tx_hash"`
	State     PurchaseState `json:"state"`
	CreatedAt time.Time     `json:"created_at"`
	ClosedAt  time.Time     `json:"closed_at"`
}
