// Package markdown loads markdown documents, splitting them into
// sections on second-level heading boundaries.
package markdown

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/opsintel-labs/opsintel/internal/core/domain"
	"github.com/opsintel-labs/opsintel/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.Processor = (*Processor)(nil)

// DefaultSection is the section title used when a section has no
// heading of its own.
const DefaultSection = "Introduction"

// Processor handles markdown documents. One raw document per
// second-level section; one chunk per non-empty section.
type Processor struct{}

// New creates a new markdown processor.
func New() *Processor {
	return &Processor{}
}

// DocType returns the type tag this processor handles.
func (p *Processor) DocType() domain.DocType {
	return domain.DocTypeMarkdown
}

// Load reads a markdown file and splits it on "## " heading boundaries.
// Every section becomes one raw document, including empty ones; the
// chunker decides emptiness.
func (p *Processor) Load(_ context.Context, sourcePath string) ([]domain.RawDocument, error) {
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("reading markdown file: %w", err)
	}

	source := filepath.Base(sourcePath)
	sections := strings.Split(string(data), "\n## ")

	docs := make([]domain.RawDocument, 0, len(sections))
	for _, section := range sections {
		docs = append(docs, domain.RawDocument{
			Content: strings.TrimSpace(section),
			Metadata: map[string]any{
				domain.MetaSource:  source,
				domain.MetaDocType: "document: " + source,
			},
		})
	}
	return docs, nil
}

// Chunk extracts the section title and emits one chunk with the title
// line removed from the body. Empty sections yield no chunks.
func (p *Processor) Chunk(doc domain.RawDocument) ([]domain.Chunk, error) {
	if strings.TrimSpace(doc.Content) == "" {
		return nil, nil
	}

	lines := strings.Split(doc.Content, "\n")
	title, titleIdx := sectionTitle(lines)

	// Body is everything but the title line. Interior blank lines
	// survive; only leading/trailing whitespace is trimmed.
	body := make([]string, 0, len(lines))
	for i, line := range lines {
		if i == titleIdx {
			continue
		}
		body = append(body, line)
	}

	text := strings.TrimSpace(strings.Join(body, "\n"))
	if text == "" {
		return nil, nil
	}

	metadata := make(map[string]any, len(doc.Metadata)+2)
	for k, v := range doc.Metadata {
		metadata[k] = v
	}
	metadata[domain.MetaSection] = title
	metadata[domain.MetaChunkID] = domain.ChunkID(doc.Source(), title)

	return []domain.Chunk{{Text: text, Metadata: metadata}}, nil
}

// sectionTitle finds the title among the first three lines: the first
// non-blank line counts if it is the very first line or starts with a
// heading marker. Returns DefaultSection and -1 when no line qualifies.
func sectionTitle(lines []string) (string, int) {
	for i, line := range lines {
		if i >= 3 {
			break
		}
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			continue
		}
		if i == 0 || strings.HasPrefix(stripped, "#") {
			title := strings.TrimSpace(strings.TrimLeft(stripped, "#"))
			if title == "" {
				title = DefaultSection
			}
			return title, i
		}
		break
	}
	return DefaultSection, -1
}
