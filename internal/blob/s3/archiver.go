package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cryptophy/lottod/internal/domain"
)

// PurchaseArchiveStore provides read access to closed purchases for archival.
// The Postgres purchase store satisfies it implicitly.
type PurchaseArchiveStore interface {
	ListClosedBefore(ctx context.Context, before time.Time) ([]domain.PurchaseRecord, error)
}

// ArchiveImpl implements domain.Archiver by querying the purchase journal for
// settled records, serializing them to JSONL, and uploading the result to S3.
//
// Deletion of the archived records from the primary store is intentionally
// NOT performed here; that is a separate, explicit step executed after the
// archive upload has succeeded.
type ArchiveImpl struct {
	writer    domain.BlobWriter
	purchases PurchaseArchiveStore
}

// NewArchiver creates a new ArchiveImpl.
func NewArchiver(writer domain.BlobWriter, purchases PurchaseArchiveStore) *ArchiveImpl {
	return &ArchiveImpl{
		writer:    writer,
		purchases: purchases,
	}
}

// ArchivePurchases queries all terminal purchases closed before the cutoff,
// serializes them to JSONL, and uploads the file to S3 at
// archive/purchases/YYYY-MM.jsonl. Returns the count of archived records.
func (a *ArchiveImpl) ArchivePurchases(ctx context.Context, before time.Time) (int64, error) {
	if a.purchases == nil {
		return 0, nil
	}
	records, err := a.purchases.ListClosedBefore(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive purchases query: %w", err)
	}
	if len(records) == 0 {
		return 0, nil
	}

	buf, err := marshalJSONL(records)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive purchases marshal: %w", err)
	}

	path := fmt.Sprintf("archive/purchases/%s.jsonl", before.Format("2006-01"))
	if err := a.writer.Put(ctx, path, bytes.NewReader(buf), "application/x-ndjson"); err != nil {
		return 0, fmt.Errorf("s3blob: archive purchases upload: %w", err)
	}

	return int64(len(records)), nil
}

// ArchiveDay uploads the settled record for one finished lottery day at
// archive/days/{day}.json. Day records are tiny; one object per day keeps
// them individually addressable.
func (a *ArchiveImpl) ArchiveDay(ctx context.Context, info domain.DayInfo) error {
	buf, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("s3blob: archive day %d marshal: %w", info.Day, err)
	}

	path := fmt.Sprintf("archive/days/%d.json", info.Day)
	if err := a.writer.Put(ctx, path, bytes.NewReader(buf), "application/json"); err != nil {
		return fmt.Errorf("s3blob: archive day %d upload: %w", info.Day, err)
	}
	return nil
}

// marshalJSONL serialises a slice of values as newline-delimited JSON.
func marshalJSONL[T any](records []T) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	for i, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return nil, fmt.Errorf("jsonl encode record %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}

// Compile-time interface check.
var _ domain.Archiver = (*ArchiveImpl)(nil)
