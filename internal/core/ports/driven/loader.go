package driven

import (
	"context"

	"github.com/opsintel-labs/opsintel/internal/core/domain"
)

// Loader reads a source artifact and produces raw documents.
//
// Contract: a loader never returns partially-malformed entries; it
// yields either fully-populated documents or an error. Every returned
// document carries MetaSource and MetaDocType in its metadata. A single
// artifact may split into one document (email, PDF page group) or many
// (markdown sections, CSV rows, chat messages).
type Loader interface {
	// Load reads the artifact at sourcePath.
	Load(ctx context.Context, sourcePath string) ([]domain.RawDocument, error)
}

// Chunker converts a raw document into embeddable chunks.
//
// Contract: the produced text is natural language suitable for
// embedding, and every chunk carries a deterministic MetaChunkID.
// An empty source section yields an empty slice, not an error.
type Chunker interface {
	// Chunk converts one raw document into zero or more chunks.
	Chunk(doc domain.RawDocument) ([]domain.Chunk, error)
}

// Processor is a loader/chunker pair for one document type.
// Implementations are stateless; both roles are pure functions
// over their inputs.
type Processor interface {
	Loader
	Chunker

	// DocType returns the type tag this processor handles.
	DocType() domain.DocType
}

// ProcessorRegistry selects processors by explicit doc type tag.
type ProcessorRegistry interface {
	// Get returns the processor for a doc type, or
	// domain.ErrUnsupportedType if none is registered.
	Get(docType domain.DocType) (Processor, error)

	// DocTypes returns the registered types in stable order.
	DocTypes() []domain.DocType
}
