package driving

import (
	"context"

	"github.com/opsintel-labs/opsintel/internal/core/domain"
)

// QueryService is the retrieval-facing surface composed from the
// embedding service, the vector index and the generation collaborator.
type QueryService interface {
	// Retrieve embeds the query, searches the index for the k nearest
	// chunks and applies an optional conjunctive metadata filter.
	// Filtering happens after retrieval, so fewer than k results may
	// come back when filters are active.
	Retrieve(ctx context.Context, query string, k int, filters map[string]any) ([]domain.ScoredChunk, error)

	// Ask retrieves context for the query and generates a structured
	// answer from it. Fails with domain.ErrLLMUnavailable when no
	// generator is configured.
	Ask(ctx context.Context, query string, k int, filters map[string]any) (*domain.Answer, []domain.ScoredChunk, error)
}
