package driving

import (
	"context"
	"time"
)

// PipelineRunner executes one ingestion run: scan staging, load and
// chunk pending artifacts, embed, index, archive. Runs are triggered
// by an external scheduler; only one run is active at a time.
type PipelineRunner interface {
	// Run executes a single run to completion and reports what
	// happened. A second concurrent call fails with
	// domain.ErrRunInProgress.
	Run(ctx context.Context) (*RunReport, error)
}

// RunReport summarises one pipeline run.
type RunReport struct {
	// RunID identifies the run in logs.
	RunID string

	// Registered is the number of newly registered artifacts.
	Registered int

	// Skipped is the number of artifacts already completed.
	Skipped int

	// Completed is the number of documents indexed and archived.
	Completed int

	// Failed is the number of documents marked failed.
	Failed int

	// ChunksIndexed is the number of chunks added to the index.
	ChunksIndexed int

	// StartedAt / EndedAt bracket the run.
	StartedAt time.Time
	EndedAt   time.Time
}

// Duration returns the wall-clock duration of the run.
func (r *RunReport) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}
