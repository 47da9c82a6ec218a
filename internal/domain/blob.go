package domain

import (
	"context"
	"io"
	"time"
)

// BlobWriter uploads an object to cold storage.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
}

// BlobInfo is object metadata returned by listing cold storage.
type BlobInfo struct {
	Path         string    `json:"path"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// BlobReader retrieves archived objects from cold storage.
type BlobReader interface {
	// Get returns the object body; the caller closes it. Returns ErrNotFound
	// when the object does not exist.
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	List(ctx context.Context, prefix string) ([]BlobInfo, error)
	Exists(ctx context.Context, path string) (bool, error)
}

// Archiver moves settled records out of the hot path into cold storage.
type Archiver interface {
	// ArchivePurchases uploads all terminal purchases closed before the
	// cutoff and returns how many were archived.
	ArchivePurchases(ctx context.Context, before time.Time) (int64, error)

	// ArchiveDay uploads the settled record for one finished lottery day.
	ArchiveDay(ctx context.Context, info DayInfo) error
}
