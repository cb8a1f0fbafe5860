package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates a doc type with no registered
	// loader/chunker variant.
	ErrUnsupportedType = errors.New("unsupported doc type")

	// ErrDuplicateSource indicates a source path that is already
	// tracked. Benign: callers treat it as "already registered".
	ErrDuplicateSource = errors.New("source already tracked")

	// ErrLoad indicates malformed or missing source content.
	// Per-document: recorded as FAILED, never aborts the run.
	ErrLoad = errors.New("load failed")

	// ErrDimensionMismatch indicates embedding/index configuration
	// drift. Fatal: aborts the run.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrEmbeddingProvider indicates a batch embedding failure.
	// Fatal: aborts the run and fails every document in it, since
	// partial-batch attribution is not tracked.
	ErrEmbeddingProvider = errors.New("embedding provider failure")

	// ErrArchive indicates a filesystem move failure after indexing.
	// Per-document: the artifact stays in staging for retry.
	ErrArchive = errors.New("archive failed")

	// ErrPersistence indicates a vector index save/load failure.
	// Fatal to the run.
	ErrPersistence = errors.New("index persistence failed")

	// ErrRunInProgress indicates a pipeline run is already active.
	// Only one run may be active at a time system-wide.
	ErrRunInProgress = errors.New("pipeline run in progress")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Ingestion and retrieval both require embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrLLMUnavailable indicates the generation service is not
	// configured. The ask surface is disabled without it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")
)
