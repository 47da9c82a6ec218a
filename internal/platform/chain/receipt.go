package chain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/cryptophy/lottod/internal/domain"
)

// ReceiptWaiter polls for a transaction receipt until the transaction is
// mined or the context expires. The caller bounds the wait with a deadline;
// an expired deadline surfaces as domain.ErrReceiptTimeout so the purchase
// lifecycle can mark the attempt failed and retryable.
type ReceiptWaiter struct {
	eth      *ethclient.Client
	interval time.Duration
}

// NewReceiptWaiter creates a waiter polling at the given interval.
func NewReceiptWaiter(c *Client, interval time.Duration) *ReceiptWaiter {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &ReceiptWaiter{eth: c.eth, interval: interval}
}

// Wait blocks until the transaction reaches a terminal receipt state.
func (w *ReceiptWaiter) Wait(ctx context.Context, txHash string) (domain.TxStatus, error) {
	hash := common.HexToHash(txHash)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		receipt, err := w.eth.TransactionReceipt(ctx, hash)
		switch {
		case err == nil:
			if receipt.Status == types.ReceiptStatusSuccessful {
				return domain.TxConfirmed, nil
			}
			return domain.TxFailed, fmt.Errorf("chain: %w: tx %s", domain.ErrTxReverted, txHash)
		case errors.Is(err, ethereum.NotFound):
			// Not mined yet; keep polling.
		case ctx.Err() != nil:
			// Fall through to the select below for a uniform exit path.
		default:
			// Transient RPC failure; retried on the next tick.
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return domain.TxFailed, fmt.Errorf("chain: %w: tx %s", domain.ErrReceiptTimeout, txHash)
			}
			return domain.TxFailed, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Compile-time interface check.
var _ domain.ReceiptWaiter = (*ReceiptWaiter)(nil)
