package domain

import (
	"crypto/md5" //nolint:gosec // Non-cryptographic use: stable chunk identifiers
	"encoding/hex"
)

// DocType identifies which loader/chunker variant handles a source artifact.
// The set is closed: dispatch is by explicit tag, never by content sniffing.
type DocType string

const (
	// DocTypeMarkdown covers markdown documents split by section headings.
	DocTypeMarkdown DocType = "markdown"

	// DocTypeCSV covers CSV exports where each row becomes a chunk.
	DocTypeCSV DocType = "csv"

	// DocTypeChat covers chat transcript exports split into messages.
	DocTypeChat DocType = "chat"

	// DocTypeEmail covers staged email exports (metadata.json + body.txt).
	DocTypeEmail DocType = "email"

	// DocTypePDF covers PDF files grouped into fixed-size page batches.
	DocTypePDF DocType = "pdf"
)

// Well-known metadata keys shared across loaders, chunkers and the index.
const (
	// MetaSource is the origin file or object identifier.
	MetaSource = "source"

	// MetaDocType is the document type recorded on every chunk.
	MetaDocType = "doc_type"

	// MetaChunkID is the deterministic chunk identifier.
	MetaChunkID = "chunk_id"

	// MetaSection is the section title of a markdown chunk.
	MetaSection = "section"
)

// RawDocument is the normalised output of a Loader, before chunking.
// Exactly one of Content or Row is populated: Content for textual sources,
// Row for structured CSV rows. Metadata always carries MetaSource and
// MetaDocType. A RawDocument is immutable once created and consumed
// exactly once by the matching Chunker.
type RawDocument struct {
	// Content is the textual content for text-based sources.
	Content string

	// Row holds the column values for structured row sources.
	Row map[string]string

	// Metadata contains source-specific key-value pairs.
	Metadata map[string]any
}

// Source returns the origin identifier recorded by the loader.
func (d RawDocument) Source() string {
	s, _ := d.Metadata[MetaSource].(string)
	return s
}

// Chunk is a unit of text plus metadata prepared for embedding and
// indexing. Metadata[MetaChunkID] is deterministic for identical input,
// which makes re-indexing idempotent. The Embedding field is populated
// by the embedding stage and stripped again when the chunk is stored in
// the vector index, so vectors are never persisted twice.
type Chunk struct {
	Text      string         `json:"text"`
	Metadata  map[string]any `json:"metadata"`
	Embedding []float32      `json:"-"`
}

// ID returns the deterministic chunk identifier, or "" if unset.
func (c Chunk) ID() string {
	id, _ := c.Metadata[MetaChunkID].(string)
	return id
}

// DocTypeTag returns the doc_type metadata value, or "" if unset.
func (c Chunk) DocTypeTag() string {
	t, _ := c.Metadata[MetaDocType].(string)
	return t
}

// SourceTag returns the source metadata value, or "" if unset.
func (c Chunk) SourceTag() string {
	s, _ := c.Metadata[MetaSource].(string)
	return s
}

// WithoutEmbedding returns a copy of the chunk with the embedding removed.
// Used by the vector index, which keeps vectors in its own structure.
func (c Chunk) WithoutEmbedding() Chunk {
	c.Embedding = nil
	return c
}

// ChunkIDLength is the length of a generated chunk identifier.
const ChunkIDLength = 12

// ChunkID derives a deterministic chunk identifier from a source and a
// within-source identifier (section title, message id, page range, ...).
// Identical inputs always yield the same id.
func ChunkID(source, identifier string) string {
	sum := md5.Sum([]byte(source + "::" + identifier)) //nolint:gosec // Identifier, not security
	return hex.EncodeToString(sum[:])[:ChunkIDLength]
}
