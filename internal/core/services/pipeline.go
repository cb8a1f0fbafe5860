// Package services composes the ports into the ingestion pipeline and
// the retrieval surface.
package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/opsintel-labs/opsintel/internal/core/domain"
	"github.com/opsintel-labs/opsintel/internal/core/ports/driven"
	"github.com/opsintel-labs/opsintel/internal/core/ports/driving"
	"github.com/opsintel-labs/opsintel/internal/logger"
)

// Ensure Pipeline implements the interface.
var _ driving.PipelineRunner = (*Pipeline)(nil)

// PipelineConfig wires the pipeline's collaborators and settings.
type PipelineConfig struct {
	Tracker     driven.DocumentTracker
	Registry    driven.ProcessorRegistry
	Embedder    driven.EmbeddingService
	Index       driven.VectorIndex
	Archiver    driven.Archiver
	StagingRoot string
	IndexDir    string
	BatchSize   int
}

// Pipeline executes ingestion runs: scan staging for new artifacts,
// load and chunk pending documents, embed, index, persist, archive.
type Pipeline struct {
	tracker     driven.DocumentTracker
	registry    driven.ProcessorRegistry
	embedder    driven.EmbeddingService
	index       driven.VectorIndex
	archiver    driven.Archiver
	stagingRoot string
	indexDir    string
	batchSize   int

	mu sync.Mutex
}

// NewPipeline creates a pipeline from its collaborators.
func NewPipeline(cfg PipelineConfig) (*Pipeline, error) {
	switch {
	case cfg.Tracker == nil:
		return nil, fmt.Errorf("tracker is required: %w", domain.ErrInvalidInput)
	case cfg.Registry == nil:
		return nil, fmt.Errorf("processor registry is required: %w", domain.ErrInvalidInput)
	case cfg.Embedder == nil:
		return nil, fmt.Errorf("embedding service is required: %w", domain.ErrInvalidInput)
	case cfg.Index == nil:
		return nil, fmt.Errorf("vector index is required: %w", domain.ErrInvalidInput)
	case cfg.Archiver == nil:
		return nil, fmt.Errorf("archiver is required: %w", domain.ErrInvalidInput)
	case cfg.StagingRoot == "":
		return nil, fmt.Errorf("staging root is required: %w", domain.ErrInvalidInput)
	case cfg.IndexDir == "":
		return nil, fmt.Errorf("index directory is required: %w", domain.ErrInvalidInput)
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}

	return &Pipeline{
		tracker:     cfg.Tracker,
		registry:    cfg.Registry,
		embedder:    cfg.Embedder,
		index:       cfg.Index,
		archiver:    cfg.Archiver,
		stagingRoot: cfg.StagingRoot,
		indexDir:    cfg.IndexDir,
		batchSize:   batchSize,
	}, nil
}

// processedDoc pairs a tracked document with its chunks during a run.
type processedDoc struct {
	tracked domain.TrackedDocument
	chunks  []domain.Chunk
}

// Run executes one ingestion run to completion. Only one run is active
// at a time; a concurrent call fails with domain.ErrRunInProgress.
//
// Per-document errors (unreadable artifact, archive failure) mark that
// document failed and the run continues. Run-global errors (embedding
// provider, dimension mismatch, index persistence) mark every document
// of the run failed and abort.
func (p *Pipeline) Run(ctx context.Context) (*driving.RunReport, error) {
	if !p.mu.TryLock() {
		return nil, domain.ErrRunInProgress
	}
	defer p.mu.Unlock()

	report := &driving.RunReport{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
	defer func() { report.EndedAt = time.Now().UTC() }()

	logger.Section(fmt.Sprintf("run %s", report.RunID))

	if err := p.scan(ctx, report); err != nil {
		return report, err
	}

	pending, err := p.tracker.GetPendingDocuments(ctx, 0)
	if err != nil {
		return report, fmt.Errorf("listing pending documents: %w", err)
	}
	if len(pending) == 0 {
		logger.Info("nothing to process")
		return report, nil
	}
	logger.Info("processing %d pending documents", len(pending))

	processed := p.loadAndChunk(ctx, pending, report)
	if len(processed) == 0 {
		return report, nil
	}

	if err := p.embedAndIndex(ctx, processed, report); err != nil {
		p.failAll(ctx, processed, err, report)
		return report, err
	}

	p.archiveAndComplete(ctx, processed, report)

	logger.Info("run %s: %d registered, %d skipped, %d completed, %d failed, %d chunks indexed",
		report.RunID, report.Registered, report.Skipped, report.Completed, report.Failed, report.ChunksIndexed)
	return report, nil
}

// scan walks stagingRoot/<docType>/ for each registered type and
// registers unseen artifacts as pending. Already completed paths are
// counted as skipped; pending or failed paths are left alone.
func (p *Pipeline) scan(ctx context.Context, report *driving.RunReport) error {
	for _, docType := range p.registry.DocTypes() {
		dir := filepath.Join(p.stagingRoot, string(docType))
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("scanning %s: %w", dir, err)
		}

		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())

			_, err := p.tracker.AddDocument(ctx, path, docType, !entry.IsDir(), nil)
			switch {
			case err == nil:
				logger.Debug("registered %s as %s", path, docType)
				report.Registered++
			case errors.Is(err, domain.ErrDuplicateSource):
				done, perr := p.tracker.IsProcessed(ctx, path)
				if perr != nil {
					return fmt.Errorf("checking %s: %w", path, perr)
				}
				if done {
					report.Skipped++
				}
			default:
				return fmt.Errorf("registering %s: %w", path, err)
			}
		}
	}
	return nil
}

// loadAndChunk marks each pending document processing, runs its
// loader and chunker, and collects the chunks. Load failures mark the
// document failed and are skipped from the rest of the run.
func (p *Pipeline) loadAndChunk(ctx context.Context, pending []domain.TrackedDocument, report *driving.RunReport) []processedDoc {
	var processed []processedDoc

	for _, doc := range pending {
		if err := p.tracker.MarkProcessing(ctx, doc.ID); err != nil {
			logger.Warn("marking %s processing: %v", doc.SourcePath, err)
		}

		chunks, err := p.processDocument(ctx, doc)
		if err != nil {
			logger.Warn("processing %s failed: %v", doc.SourcePath, err)
			p.markFailed(ctx, doc, err, report)
			continue
		}
		if len(chunks) == 0 {
			logger.Debug("%s produced no chunks", doc.SourcePath)
		}

		processed = append(processed, processedDoc{tracked: doc, chunks: chunks})
	}

	return processed
}

func (p *Pipeline) processDocument(ctx context.Context, doc domain.TrackedDocument) ([]domain.Chunk, error) {
	processor, err := p.registry.Get(doc.DocType)
	if err != nil {
		return nil, err
	}

	rawDocs, err := processor.Load(ctx, doc.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrLoad)
	}

	var chunks []domain.Chunk
	for _, raw := range rawDocs {
		chunked, err := processor.Chunk(raw)
		if err != nil {
			return nil, fmt.Errorf("%v: %w", err, domain.ErrLoad)
		}
		chunks = append(chunks, chunked...)
	}
	return chunks, nil
}

// embedAndIndex embeds every chunk of the run in batches, adds them to
// the index and persists the index. Any error here is run-global.
func (p *Pipeline) embedAndIndex(ctx context.Context, processed []processedDoc, report *driving.RunReport) error {
	var texts []string
	for _, doc := range processed {
		for _, chunk := range doc.chunks {
			texts = append(texts, chunk.Text)
		}
	}
	if len(texts) == 0 {
		return nil
	}

	logger.Info("embedding %d chunks with %s", len(texts), p.embedder.ModelName())
	embeddings, err := EmbedInBatches(ctx, p.embedder, texts, p.batchSize)
	if err != nil {
		return err
	}

	var all []domain.Chunk
	i := 0
	for d := range processed {
		for c := range processed[d].chunks {
			processed[d].chunks[c].Embedding = embeddings[i]
			i++
		}
		all = append(all, processed[d].chunks...)
	}

	if err := p.index.Add(all); err != nil {
		return fmt.Errorf("indexing chunks: %w", err)
	}
	if err := p.index.Save(p.indexDir); err != nil {
		return fmt.Errorf("persisting index: %v: %w", err, domain.ErrPersistence)
	}

	report.ChunksIndexed = len(all)
	return nil
}

// archiveAndComplete moves each document's artifact into the archive
// and records completion. Archive failures are per-document.
func (p *Pipeline) archiveAndComplete(ctx context.Context, processed []processedDoc, report *driving.RunReport) {
	for _, doc := range processed {
		archivePath, err := p.archiver.Archive(ctx, doc.tracked.SourcePath)
		if err != nil {
			logger.Warn("archiving %s failed: %v", doc.tracked.SourcePath, err)
			p.markFailed(ctx, doc.tracked, err, report)
			continue
		}

		if err := p.tracker.MarkCompleted(ctx, doc.tracked.ID, len(doc.chunks), archivePath); err != nil {
			logger.Warn("marking %s completed: %v", doc.tracked.SourcePath, err)
			continue
		}
		report.Completed++
	}
}

// failAll marks every document of the run failed after a run-global error.
func (p *Pipeline) failAll(ctx context.Context, processed []processedDoc, cause error, report *driving.RunReport) {
	logger.Warn("run aborted: %v", cause)
	for _, doc := range processed {
		p.markFailed(ctx, doc.tracked, cause, report)
	}
}

func (p *Pipeline) markFailed(ctx context.Context, doc domain.TrackedDocument, cause error, report *driving.RunReport) {
	if err := p.tracker.MarkFailed(ctx, doc.ID, cause.Error()); err != nil {
		logger.Warn("marking %s failed: %v", doc.SourcePath, err)
	}
	report.Failed++
}
