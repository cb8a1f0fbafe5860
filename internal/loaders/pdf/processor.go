// Package pdf loads PDF files, grouping pages into fixed-size batches
// before chunking.
package pdf

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	ledongthuc "github.com/ledongthuc/pdf"

	"github.com/opsintel-labs/opsintel/internal/core/domain"
	"github.com/opsintel-labs/opsintel/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.Processor = (*Processor)(nil)

// DefaultPagesPerChunk is the default page batch size.
const DefaultPagesPerChunk = 1

// Processor handles PDF files.
type Processor struct {
	pagesPerChunk int
}

// New creates a new PDF processor combining pagesPerChunk pages into
// each raw document.
func New(pagesPerChunk int) *Processor {
	if pagesPerChunk <= 0 {
		pagesPerChunk = DefaultPagesPerChunk
	}
	return &Processor{pagesPerChunk: pagesPerChunk}
}

// DocType returns the type tag this processor handles.
func (p *Processor) DocType() domain.DocType {
	return domain.DocTypePDF
}

// pageText pairs a 1-based page number with its extracted text.
type pageText struct {
	num  int
	text string
}

// Load extracts page text and groups pages into batches. The last
// partial batch is still emitted.
func (p *Processor) Load(_ context.Context, sourcePath string) ([]domain.RawDocument, error) {
	f, reader, err := ledongthuc.Open(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	total := reader.NumPage()
	pages := make([]pageText, 0, total)
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, pageText{num: i})
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extracting text from page %d: %w", i, err)
		}
		pages = append(pages, pageText{num: i, text: text})
	}

	return groupDocs(filepath.Base(sourcePath), pages, p.pagesPerChunk, total), nil
}

// Chunk prefixes the page-group text with a provenance header and
// emits a single chunk identified by the page range.
func (p *Processor) Chunk(doc domain.RawDocument) ([]domain.Chunk, error) {
	pageRange, _ := doc.Metadata["page_range"].(string)

	text := fmt.Sprintf("[PDF: %s | Pages: %s]\n\n%s", doc.Source(), pageRange, doc.Content)

	metadata := make(map[string]any, len(doc.Metadata)+1)
	for k, v := range doc.Metadata {
		metadata[k] = v
	}
	metadata[domain.MetaChunkID] = domain.ChunkID(doc.Source(), "pages_"+pageRange)

	return []domain.Chunk{{Text: strings.TrimSpace(text), Metadata: metadata}}, nil
}

// groupDocs batches extracted pages into raw documents of perChunk
// pages each.
func groupDocs(source string, pages []pageText, perChunk, totalPages int) []domain.RawDocument {
	var docs []domain.RawDocument
	for start := 0; start < len(pages); start += perChunk {
		end := start + perChunk
		if end > len(pages) {
			end = len(pages)
		}
		batch := pages[start:end]

		numbers := make([]int, len(batch))
		texts := make([]string, len(batch))
		for i, pt := range batch {
			numbers[i] = pt.num
			texts[i] = pt.text
		}

		pageRange := fmt.Sprintf("%d", numbers[0])
		if len(numbers) > 1 {
			pageRange = fmt.Sprintf("%d-%d", numbers[0], numbers[len(numbers)-1])
		}

		docs = append(docs, domain.RawDocument{
			Content: strings.Join(texts, "\n\n"),
			Metadata: map[string]any{
				domain.MetaSource:  source,
				domain.MetaDocType: string(domain.DocTypePDF),
				"pages":            numbers,
				"page_range":       pageRange,
				"total_pages":      totalPages,
			},
		})
	}
	return docs
}
