// Package domain defines the core business entities for opsintel.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RawDocument: Normalised output of a format loader, before chunking
//   - Chunk: A unit of text plus metadata prepared for embedding
//   - TrackedDocument: Per-source processing state, persisted by the tracker
//   - ScoredChunk: A chunk annotated with its similarity search result
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
