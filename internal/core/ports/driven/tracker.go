package driven

import (
	"context"

	"github.com/opsintel-labs/opsintel/internal/core/domain"
)

// DocumentTracker persists the per-source processing state machine.
// Backed by SQLite. Without durable status, interval re-runs would
// re-embed already-indexed content and a crash mid-run would silently
// lose in-flight documents.
type DocumentTracker interface {
	// AddDocument registers a new source artifact as PENDING. A path
	// that is already tracked fails with domain.ErrDuplicateSource;
	// callers treat that as already-registered, not fatal. When
	// computeHash is set, a content hash is computed for file sources
	// (directories are not hashed).
	AddDocument(ctx context.Context, sourcePath string, docType domain.DocType, computeHash bool, metadata map[string]any) (*domain.TrackedDocument, error)

	// GetByPath retrieves a document by source path, or domain.ErrNotFound.
	GetByPath(ctx context.Context, sourcePath string) (*domain.TrackedDocument, error)

	// MarkProcessing transitions a document to PROCESSING.
	// Idempotent no-op when the document does not exist.
	MarkProcessing(ctx context.Context, id int64) error

	// MarkCompleted transitions to COMPLETED, recording the chunk
	// count and archive destination and stamping processed_at.
	MarkCompleted(ctx context.Context, id int64, chunksCreated int, archivePath string) error

	// MarkFailed transitions to FAILED and records the error text.
	// The document is not deleted and not retried automatically.
	MarkFailed(ctx context.Context, id int64, errorMessage string) error

	// Requeue flips a document back to PENDING so the next run picks
	// it up. This is the only retry path for failed documents.
	Requeue(ctx context.Context, id int64) error

	// IsProcessed reports whether a record exists for the path and
	// its status is COMPLETED. The dedup gate used by scan.
	IsProcessed(ctx context.Context, sourcePath string) (bool, error)

	// GetPendingDocuments returns PENDING documents, oldest first.
	// limit <= 0 means no limit.
	GetPendingDocuments(ctx context.Context, limit int) ([]domain.TrackedDocument, error)

	// GetFailedDocuments returns FAILED documents with error text.
	GetFailedDocuments(ctx context.Context) ([]domain.TrackedDocument, error)

	// GetStats returns aggregate counts by status.
	GetStats(ctx context.Context) (domain.TrackingStats, error)
}
