package domain

import "time"

// ProcessingStatus is the lifecycle state of a tracked document.
//
// Valid transitions:
//
//	PENDING → PROCESSING → {COMPLETED | FAILED}
//
// ARCHIVED is a terminal state layered on top of COMPLETED once the
// source artifact has been moved out of staging. No transition is
// defined away from COMPLETED or FAILED; re-insertion of the same
// source path is rejected by the unique constraint instead.
type ProcessingStatus string

const (
	// StatusPending means the document is registered but not yet processed.
	StatusPending ProcessingStatus = "pending"

	// StatusProcessing means a pipeline run has picked the document up.
	StatusProcessing ProcessingStatus = "processing"

	// StatusCompleted means chunks were indexed and the artifact archived.
	StatusCompleted ProcessingStatus = "completed"

	// StatusFailed means processing failed; the error text is recorded.
	StatusFailed ProcessingStatus = "failed"

	// StatusArchived is a terminal state layered on top of completed.
	StatusArchived ProcessingStatus = "archived"
)

// TrackedDocument records the processing state of one source artifact.
// Rows are never deleted; the table doubles as an audit log.
type TrackedDocument struct {
	// ID is the tracker-assigned identifier.
	ID int64

	// SourcePath is the staging path of the artifact. Unique; this is
	// the dedup key for the whole pipeline.
	SourcePath string

	// DocType selects the loader/chunker variant.
	DocType DocType

	// FileHash is the MD5 content hash for file sources, "" for
	// directories. Supports future duplicate-content detection.
	FileHash string

	// Status is the current lifecycle state.
	Status ProcessingStatus

	// ChunksCreated is the number of chunks indexed from this document.
	ChunksCreated int

	// ArchivePath is where the artifact was moved after completion.
	ArchivePath string

	// ErrorMessage holds the failure reason when Status is failed.
	ErrorMessage string

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]any

	// CreatedAt is when the record was created.
	CreatedAt time.Time

	// ProcessedAt is when processing completed, nil until then.
	ProcessedAt *time.Time

	// UpdatedAt is bumped on every transition.
	UpdatedAt time.Time
}

// TrackingStats aggregates document counts by status.
type TrackingStats struct {
	Total      int
	Pending    int
	Processing int
	Completed  int
	Failed     int
}
