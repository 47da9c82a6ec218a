package domain

import (
	"context"
	"time"
)

// PurchaseStore journals every purchase that left the idle state. The journal
// is an audit trail; the synchronizer never reads it back to build view state.
type PurchaseStore interface {
	// Create inserts a purchase row in the submitted state.
	Create(ctx context.Context, rec PurchaseRecord) error

	// Close marks the purchase with its terminal state and closing time.
	Close(ctx context.Context, id string, state PurchaseState, closedAt time.Time) error

	// ListByWallet returns the wallet's purchases, most recent first.
	ListByWallet(ctx context.Context, wallet string, limit int) ([]PurchaseRecord, error)

	// ListClosedBefore returns terminal purchases closed strictly before the
	// cutoff, for archival.
	ListClosedBefore(ctx context.Context, before time.Time) ([]PurchaseRecord, error)

	// DeleteClosedBefore removes terminal purchases closed strictly before
	// the cutoff. Called only after an archive upload has been verified.
	DeleteClosedBefore(ctx context.Context, before time.Time) (int64, error)
}
