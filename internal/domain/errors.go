package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidPurchase   = errors.New("invalid purchase parameters")
	ErrPriceUnknown      = errors.New("ticket price not yet known")
	ErrPurchaseInFlight  = errors.New("purchase already in flight")
	ErrInvalidTransition = errors.New("invalid purchase state transition")
	ErrTxReverted        = errors.New("transaction reverted")
	ErrReceiptTimeout    = errors.New("timed out waiting for receipt")
	ErrContextDone       = errors.New("context cancelled")
	ErrLockHeld          = errors.New("lock already held")
)
