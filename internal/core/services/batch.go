package services

import (
	"context"
	"fmt"

	"github.com/opsintel-labs/opsintel/internal/core/domain"
	"github.com/opsintel-labs/opsintel/internal/core/ports/driven"
	"github.com/opsintel-labs/opsintel/internal/logger"
)

// EmbedInBatches embeds texts in provider-sized batches, preserving
// input order. Any batch failing fails the whole call; partial results
// are never returned because a partially embedded run cannot be
// indexed consistently.
func EmbedInBatches(ctx context.Context, svc driven.EmbeddingService, texts []string, batchSize int) ([][]float32, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d: %w", batchSize, domain.ErrInvalidInput)
	}
	if len(texts) == 0 {
		return nil, nil
	}

	embeddings := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += batchSize {
		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}

		logger.Debug("embedding batch %d-%d of %d", start, end, len(texts))
		batch, err := svc.EmbedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embedding batch starting at %d: %w", start, err)
		}
		if len(batch) != end-start {
			return nil, fmt.Errorf("provider returned %d embeddings for %d texts: %w",
				len(batch), end-start, domain.ErrEmbeddingProvider)
		}
		embeddings = append(embeddings, batch...)
	}

	return embeddings, nil
}
