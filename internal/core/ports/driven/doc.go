// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - Loader / Chunker: Per-format normalisation into embeddable chunks
//   - ProcessorRegistry: Selects the variant for a doc type
//   - DocumentTracker: Per-source processing state persistence
//   - VectorIndex: Vector storage and exact nearest-neighbour search
//   - EmbeddingService: Generates vector embeddings
//   - Archiver: Moves completed artifacts out of staging
//
// # Optional Interfaces
//
//   - Generator: Structured answer generation. Without it, the ask
//     surface is disabled; ingestion and retrieval are unaffected.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or loader package
package driven
