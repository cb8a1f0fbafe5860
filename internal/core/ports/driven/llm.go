package driven

import (
	"context"

	"github.com/opsintel-labs/opsintel/internal/core/domain"
)

// Generator produces a structured decision-support answer from a query
// and its retrieved context chunks. This is an optional service - when
// nil, the ask surface is disabled.
type Generator interface {
	// Generate builds an answer grounded in the supplied chunks.
	// The chunks arrive ordered by ascending distance.
	Generate(ctx context.Context, query string, contextChunks []domain.ScoredChunk) (*domain.Answer, error)

	// ModelName returns the generation model in use.
	ModelName() string

	// Close releases resources.
	Close() error
}
