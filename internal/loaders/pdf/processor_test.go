package pdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsintel-labs/opsintel/internal/core/domain"
)

func TestGroupDocs_SinglePagePerChunk(t *testing.T) {
	pages := []pageText{
		{num: 1, text: "first"},
		{num: 2, text: "second"},
		{num: 3, text: "third"},
	}

	docs := groupDocs("report.pdf", pages, 1, 3)

	require.Len(t, docs, 3)
	assert.Equal(t, "first", docs[0].Content)
	assert.Equal(t, "1", docs[0].Metadata["page_range"])
	assert.Equal(t, "2", docs[1].Metadata["page_range"])
	assert.Equal(t, 3, docs[0].Metadata["total_pages"])
	assert.Equal(t, "report.pdf", docs[0].Source())
}

func TestGroupDocs_MultiplePagesPerChunk(t *testing.T) {
	pages := []pageText{
		{num: 1, text: "a"},
		{num: 2, text: "b"},
		{num: 3, text: "c"},
		{num: 4, text: "d"},
		{num: 5, text: "e"},
	}

	docs := groupDocs("manual.pdf", pages, 2, 5)

	require.Len(t, docs, 3)
	assert.Equal(t, "a\n\nb", docs[0].Content)
	assert.Equal(t, "1-2", docs[0].Metadata["page_range"])
	assert.Equal(t, "3-4", docs[1].Metadata["page_range"])

	// Last partial batch still comes through.
	assert.Equal(t, "e", docs[2].Content)
	assert.Equal(t, "5", docs[2].Metadata["page_range"])
}

func TestGroupDocs_EmptyPDF(t *testing.T) {
	docs := groupDocs("empty.pdf", nil, 2, 0)
	assert.Empty(t, docs)
}

func TestChunk_HeaderAndID(t *testing.T) {
	p := New(2)

	doc := domain.RawDocument{
		Content: "quarterly numbers",
		Metadata: map[string]any{
			domain.MetaSource:  "finance.pdf",
			domain.MetaDocType: "pdf",
			"page_range":       "3-4",
			"total_pages":      10,
		},
	}

	chunks, err := p.Chunk(doc)
	require.NoError(t, err)
	require.Len(t, chunks, 1)

	assert.Equal(t, "[PDF: finance.pdf | Pages: 3-4]\n\nquarterly numbers", chunks[0].Text)
	assert.Equal(t, domain.ChunkID("finance.pdf", "pages_3-4"), chunks[0].Metadata[domain.MetaChunkID])
	assert.Equal(t, "pdf", chunks[0].Metadata[domain.MetaDocType])
}

func TestChunk_Deterministic(t *testing.T) {
	p := New(1)
	doc := domain.RawDocument{
		Content: "body",
		Metadata: map[string]any{
			domain.MetaSource: "x.pdf",
			"page_range":      "1",
		},
	}

	first, err := p.Chunk(doc)
	require.NoError(t, err)
	second, err := p.Chunk(doc)
	require.NoError(t, err)

	assert.Equal(t, first[0].Metadata[domain.MetaChunkID], second[0].Metadata[domain.MetaChunkID])
}

func TestNew_ClampsInvalidBatchSize(t *testing.T) {
	p := New(0)
	assert.Equal(t, DefaultPagesPerChunk, p.pagesPerChunk)

	p = New(-3)
	assert.Equal(t, DefaultPagesPerChunk, p.pagesPerChunk)
}
