package driven

import "context"

// Archiver moves successfully indexed source artifacts from staging
// into durable archival storage. The archive mirrors the staging
// directory layout under a separate root.
type Archiver interface {
	// Archive moves the artifact at sourcePath and returns its new
	// location. A move failure wraps domain.ErrArchive; the artifact
	// is left in place for retry.
	Archive(ctx context.Context, sourcePath string) (string, error)
}
