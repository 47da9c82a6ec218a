package postgres

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cryptophy/lottod/internal/domain"
)

// PurchaseStore implements domain.PurchaseStore using PostgreSQL. Wei amounts
// travel as NUMERIC text so no value ever rounds through a float.
type PurchaseStore struct {
	pool *pgxpool.Pool
}

// NewPurchaseStore creates a new PurchaseStore backed by the given pool.
func NewPurchaseStore(pool *pgxpool.Pool) *PurchaseStore {
	return &PurchaseStore{pool: pool}
}

const purchaseSelectCols = `id, wallet, day, count, value_wei::text, tx_hash,
	state, created_at, closed_at`

func scanPurchaseRows(rows pgx.Rows) ([]domain.PurchaseRecord, error) {
	var records []domain.PurchaseRecord
	for rows.Next() {
		var (
			rec      domain.PurchaseRecord
			valueWei string
			closedAt *time.Time
		)
		if err := rows.Scan(
			&rec.ID, &rec.Wallet, &rec.Day, &rec.Count, &valueWei,
			&rec.TxHash, &rec.State, &rec.CreatedAt, &closedAt,
		); err != nil {
			return nil, err
		}
		value, ok := new(big.Int).SetString(valueWei, 10)
		if !ok {
			return nil, fmt.Errorf("bad value_wei %q for purchase %s", valueWei, rec.ID)
		}
		rec.ValueWei = value
		if closedAt != nil {
			rec.ClosedAt = *closedAt
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Create inserts a purchase row in the submitted state.
func (s *PurchaseStore) Create(ctx context.Context, rec domain.PurchaseRecord) error {
	const query = `
		INSERT INTO purchases (id, wallet, day, count, value_wei, tx_hash, state, created_at)
		VALUES ($1, $2, $3, $4, $5::numeric, $6, $7, $8)`

	_, err := s.pool.Exec(ctx, query,
		rec.ID, rec.Wallet, rec.Day, rec.Count,
		rec.ValueWei.String(), rec.TxHash, rec.State, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: create purchase %s: %w", rec.ID, err)
	}
	return nil
}

// Close marks the purchase with its terminal state and closing time.
func (s *PurchaseStore) Close(ctx context.Context, id string, state domain.PurchaseState, closedAt time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE purchases SET state = $2, closed_at = $3 WHERE id = $1`,
		id, state, closedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: close purchase %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("postgres: close purchase %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ListByWallet returns the wallet's purchases, most recent first.
func (s *PurchaseStore) ListByWallet(ctx context.Context, wallet string, limit int) ([]domain.PurchaseRecord, error) {
	query := `SELECT ` + purchaseSelectCols + ` FROM purchases WHERE wallet = $1 ORDER BY created_at DESC`
	args := []any{wallet}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list purchases by wallet: %w", err)
	}
	defer rows.Close()

	records, err := scanPurchaseRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan purchases by wallet: %w", err)
	}
	return records, nil
}

// ListClosedBefore returns terminal purchases closed strictly before the
// cutoff, oldest first, for archiving.
func (s *PurchaseStore) ListClosedBefore(ctx context.Context, before time.Time) ([]domain.PurchaseRecord, error) {
	query := `SELECT ` + purchaseSelectCols + ` FROM purchases
		WHERE closed_at IS NOT NULL AND closed_at < $1 ORDER BY closed_at ASC`

	rows, err := s.pool.Query(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("postgres: list closed purchases: %w", err)
	}
	defer rows.Close()

	records, err := scanPurchaseRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan closed purchases: %w", err)
	}
	return records, nil
}

// DeleteClosedBefore removes terminal purchases closed strictly before the
// cutoff. Returns the number deleted.
func (s *PurchaseStore) DeleteClosedBefore(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM purchases WHERE closed_at IS NOT NULL AND closed_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("postgres: delete closed purchases: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Compile-time interface check.
var _ domain.PurchaseStore = (*PurchaseStore)(nil)
