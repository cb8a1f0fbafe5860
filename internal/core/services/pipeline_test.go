package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	archivefs "github.com/opsintel-labs/opsintel/internal/adapters/driven/archive/fs"
	"github.com/opsintel-labs/opsintel/internal/adapters/driven/index/flat"
	"github.com/opsintel-labs/opsintel/internal/adapters/driven/storage/sqlite"
	"github.com/opsintel-labs/opsintel/internal/core/domain"
	"github.com/opsintel-labs/opsintel/internal/loaders"
)

type pipelineFixture struct {
	pipeline *Pipeline
	tracker  *sqlite.Store
	index    *flat.Index
	embedder *mockEmbedder
	staging  string
	archive  string
	indexDir string
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()

	root := t.TempDir()
	staging := filepath.Join(root, "staging")
	archive := filepath.Join(root, "archive")
	indexDir := filepath.Join(root, "index")
	require.NoError(t, os.MkdirAll(staging, 0o755))

	tracker, err := sqlite.NewStore(filepath.Join(root, "tracking.db"))
	require.NoError(t, err)
	t.Cleanup(func() { tracker.Close() })

	index, err := flat.New(8)
	require.NoError(t, err)

	archiver, err := archivefs.New(staging, archive)
	require.NoError(t, err)

	embedder := newMockEmbedder(8)

	pipeline, err := NewPipeline(PipelineConfig{
		Tracker:     tracker,
		Registry:    loaders.Defaults(1),
		Embedder:    embedder,
		Index:       index,
		Archiver:    archiver,
		StagingRoot: staging,
		IndexDir:    indexDir,
		BatchSize:   100,
	})
	require.NoError(t, err)

	return &pipelineFixture{
		pipeline: pipeline,
		tracker:  tracker,
		index:    index,
		embedder: embedder,
		staging:  staging,
		archive:  archive,
		indexDir: indexDir,
	}
}

func (f *pipelineFixture) stage(t *testing.T, docType, name, content string) string {
	t.Helper()
	dir := filepath.Join(f.staging, docType)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const markdownFixture = `# Oncall Guide

## Rotation
Weekly rotation across the platform team.

## Escalation
Page the secondary after 15 minutes.
`

const chatFixture = "Thread: Vendor debate\nStarted: 2025-03-10\n" +
	"[09:15:00] jane.doe: we should just switch\n" +
	"[09:16:30] sam.lee: the contract runs until June\n"

func TestRun_FullPipeline(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()

	mdPath := f.stage(t, "markdown", "oncall.md", markdownFixture)
	f.stage(t, "chat", "threads.txt", chatFixture)

	report, err := f.pipeline.Run(ctx)
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 2, report.Registered)
	assert.Equal(t, 0, report.Skipped)
	assert.Equal(t, 2, report.Completed)
	assert.Equal(t, 0, report.Failed)
	assert.Equal(t, 4, report.ChunksIndexed) // 2 markdown sections + 2 chat messages
	assert.False(t, report.EndedAt.Before(report.StartedAt))

	// Chunks landed in the index and the index was persisted.
	assert.Equal(t, 4, f.index.Count())
	_, err = os.Stat(filepath.Join(f.indexDir, flat.VectorsFile))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(f.indexDir, flat.ChunksFile))
	require.NoError(t, err)

	// Artifacts moved out of staging into the mirrored archive.
	_, err = os.Stat(mdPath)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(f.archive, "markdown", "oncall.md"))
	require.NoError(t, err)

	// Tracker records completion with chunk counts.
	doc, err := f.tracker.GetByPath(ctx, mdPath)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusArchived, doc.Status)
	assert.Equal(t, 2, doc.ChunksCreated)
	assert.Equal(t, filepath.Join(f.archive, "markdown", "oncall.md"), doc.ArchivePath)
}

func TestRun_SecondRunSkipsProcessed(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()

	f.stage(t, "markdown", "notes.md", markdownFixture)

	_, err := f.pipeline.Run(ctx)
	require.NoError(t, err)

	// The artifact was archived, so a rerun sees an empty staging dir.
	indexed := f.index.Count()
	report, err := f.pipeline.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Registered)
	assert.Equal(t, 0, report.Completed)
	assert.Equal(t, indexed, f.index.Count())
}

func TestRun_DuplicatePathNotReprocessed(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()

	path := f.stage(t, "markdown", "notes.md", markdownFixture)
	_, err := f.pipeline.Run(ctx)
	require.NoError(t, err)

	// Same path staged again after archiving: the tracker already has
	// the row, so the scan counts it as skipped and nothing is queued.
	require.NoError(t, os.WriteFile(path, []byte(markdownFixture), 0o644))

	report, err := f.pipeline.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Registered)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 0, report.Completed)
}

func TestRun_LoadFailureIsPerDocument(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()

	// An email artifact is a directory that must contain metadata.json;
	// an empty directory fails to load.
	badDir := filepath.Join(f.staging, "email", "msg_broken")
	require.NoError(t, os.MkdirAll(badDir, 0o755))
	f.stage(t, "markdown", "good.md", markdownFixture)

	report, err := f.pipeline.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Registered)
	assert.Equal(t, 1, report.Completed)
	assert.Equal(t, 1, report.Failed)

	doc, err := f.tracker.GetByPath(ctx, badDir)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, doc.Status)
	assert.NotEmpty(t, doc.ErrorMessage)

	// The failed document is not picked up again by the next run.
	report, err = f.pipeline.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Failed)
	assert.Equal(t, 0, report.Completed)

	// Until it is explicitly requeued.
	require.NoError(t, os.WriteFile(filepath.Join(badDir, "metadata.json"),
		[]byte(`{"id": "msg_broken", "from": "a@b.c", "subject": "hi", "message_id": "<m1>"}`), 0o644))
	require.NoError(t, f.tracker.Requeue(ctx, doc.ID))

	report, err = f.pipeline.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Completed)
}

func TestRun_EmbeddingFailureFailsWholeRun(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()

	mdPath := f.stage(t, "markdown", "a.md", markdownFixture)
	chatPath := f.stage(t, "chat", "t.txt", chatFixture)

	f.embedder.batchErr = errors.New("provider down")

	report, err := f.pipeline.Run(ctx)
	require.Error(t, err)
	assert.Equal(t, 0, report.Completed)
	assert.Equal(t, 2, report.Failed)
	assert.Equal(t, 0, f.index.Count())

	for _, path := range []string{mdPath, chatPath} {
		doc, err := f.tracker.GetByPath(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusFailed, doc.Status)

		// Artifacts stay in staging when the run aborts.
		_, err = os.Stat(path)
		require.NoError(t, err)
	}
}

func TestRun_EmptyStaging(t *testing.T) {
	f := newPipelineFixture(t)

	report, err := f.pipeline.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Registered)
	assert.Equal(t, 0, report.Completed)
	assert.Equal(t, 0, report.ChunksIndexed)
}

func TestRun_ConcurrentRunRejected(t *testing.T) {
	f := newPipelineFixture(t)

	f.pipeline.mu.Lock()
	defer f.pipeline.mu.Unlock()

	_, err := f.pipeline.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRunInProgress)
}
