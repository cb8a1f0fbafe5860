package driven

import "github.com/opsintel-labs/opsintel/internal/core/domain"

// VectorIndex stores fixed-dimension embeddings alongside their chunk
// metadata and serves exact k-nearest-neighbour queries by L2 distance.
//
// The index keeps a dense vector array and a dense chunk array joined
// by insertion ordinal. The two are appended in lockstep; their lengths
// are equal after every mutation.
type VectorIndex interface {
	// Add appends embedded chunks to the index. Every embedding must
	// have the configured dimension; a mismatch fails the whole call
	// with domain.ErrDimensionMismatch and mutates nothing. The stored
	// chunk copies have the embedding stripped.
	Add(chunks []domain.Chunk) error

	// Search returns the k closest stored chunks ordered by ascending
	// distance. Fewer than k vectors stored returns all of them; an
	// empty index returns an empty result, not an error.
	Search(query []float32, k int) ([]domain.ScoredChunk, error)

	// Count returns the number of stored vectors.
	Count() int

	// Dimensions returns the configured embedding dimension.
	Dimensions() int

	// Stats summarises the index contents.
	Stats() domain.IndexStats

	// Save persists the vector structure and the chunk list as two
	// co-located artifacts under dir.
	Save(dir string) error

	// Load restores both artifacts from dir. Either artifact missing
	// fails with domain.ErrNotFound. The dimension is derived from
	// the restored structure, not caller configuration.
	Load(dir string) error
}
