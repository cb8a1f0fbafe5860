package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/opsintel-labs/opsintel/internal/core/domain"
	"github.com/opsintel-labs/opsintel/internal/core/ports/driven"
	"github.com/opsintel-labs/opsintel/internal/core/ports/driving"
	"github.com/opsintel-labs/opsintel/internal/logger"
)

// Ensure Retriever implements the interface.
var _ driving.QueryService = (*Retriever)(nil)

// DefaultRetrievalK is the fallback result count when the caller
// passes a non-positive k.
const DefaultRetrievalK = 15

// Retriever serves similarity queries against the vector index, with
// optional structured answer generation on top.
type Retriever struct {
	embedder  driven.EmbeddingService
	index     driven.VectorIndex
	generator driven.Generator
	defaultK  int
}

// NewRetriever creates a retriever. The generator may be nil, in which
// case Ask is unavailable while Retrieve still works.
func NewRetriever(embedder driven.EmbeddingService, index driven.VectorIndex, generator driven.Generator, defaultK int) (*Retriever, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedding service is required: %w", domain.ErrInvalidInput)
	}
	if index == nil {
		return nil, fmt.Errorf("vector index is required: %w", domain.ErrInvalidInput)
	}
	if defaultK <= 0 {
		defaultK = DefaultRetrievalK
	}
	return &Retriever{
		embedder:  embedder,
		index:     index,
		generator: generator,
		defaultK:  defaultK,
	}, nil
}

// Retrieve embeds the query, searches the index and applies the
// metadata filter. Filtering is conjunctive and happens after the
// search, so active filters can return fewer than k results.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int, filters map[string]any) ([]domain.ScoredChunk, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query is empty: %w", domain.ErrInvalidInput)
	}
	if k <= 0 {
		k = r.defaultK
	}

	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	results, err := r.index.Search(vector, k)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}
	logger.Debug("retrieved %d chunks for %q", len(results), query)

	if len(filters) == 0 {
		return results, nil
	}

	filtered := make([]domain.ScoredChunk, 0, len(results))
	for _, scored := range results {
		if matchesFilters(scored.Chunk.Metadata, filters) {
			scored.Rank = len(filtered) + 1
			filtered = append(filtered, scored)
		}
	}
	logger.Debug("%d chunks remain after filtering", len(filtered))
	return filtered, nil
}

// Ask retrieves context for the query and generates a structured
// answer from it. Both the answer and the context go back to the
// caller so evidence can be displayed alongside the recommendation.
func (r *Retriever) Ask(ctx context.Context, query string, k int, filters map[string]any) (*domain.Answer, []domain.ScoredChunk, error) {
	if r.generator == nil {
		return nil, nil, fmt.Errorf("no generator configured: %w", domain.ErrLLMUnavailable)
	}

	chunks, err := r.Retrieve(ctx, query, k, filters)
	if err != nil {
		return nil, nil, err
	}

	answer, err := r.generator.Generate(ctx, query, chunks)
	if err != nil {
		return nil, chunks, fmt.Errorf("generating answer: %w", err)
	}
	return answer, chunks, nil
}

// matchesFilters reports whether every filter key equals the metadata
// value. Values are compared by their string form since metadata comes
// back from JSON with loose typing.
func matchesFilters(metadata, filters map[string]any) bool {
	for key, want := range filters {
		got, ok := metadata[key]
		if !ok {
			return false
		}
		if fmt.Sprintf("%v", got) != fmt.Sprintf("%v", want) {
			return false
		}
	}
	return true
}
