package domain

// ScoredChunk is a chunk returned from a similarity search, annotated
// with its L2 distance and 1-based rank for caller transparency.
type ScoredChunk struct {
	Chunk Chunk

	// Distance is the squared L2 distance to the query vector.
	// Lower is more similar.
	Distance float32

	// Rank is the 1-based position in the result set.
	Rank int
}

// IndexStats describes the contents of a vector index.
type IndexStats struct {
	// TotalChunks is the number of stored vectors (and chunk records).
	TotalChunks int

	// Dimensions is the configured embedding dimension.
	Dimensions int

	// ByDocType counts chunks grouped by doc_type metadata.
	ByDocType map[string]int

	// BySource counts chunks grouped by source metadata.
	BySource map[string]int
}
