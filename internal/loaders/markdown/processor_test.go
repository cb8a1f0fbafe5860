package markdown

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsintel-labs/opsintel/internal/core/domain"
)

func writeDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "runbook.md")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_SplitsOnSecondLevelHeadings(t *testing.T) {
	path := writeDoc(t, "# Runbook\nintro text\n## A\nfoo\n## B\nbar")

	docs, err := New().Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, docs, 3)

	assert.Equal(t, "# Runbook\nintro text", docs[0].Content)
	assert.Equal(t, "A\nfoo", docs[1].Content)
	assert.Equal(t, "B\nbar", docs[2].Content)

	for _, doc := range docs {
		assert.Equal(t, "runbook.md", doc.Metadata[domain.MetaSource])
		assert.Equal(t, "document: runbook.md", doc.Metadata[domain.MetaDocType])
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := New().Load(context.Background(), filepath.Join(t.TempDir(), "gone.md"))
	assert.Error(t, err)
}

func TestChunk_TwoSections(t *testing.T) {
	path := writeDoc(t, "## A\nfoo\n## B\nbar")
	p := New()

	docs, err := p.Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	var chunks []domain.Chunk
	for _, doc := range docs {
		cs, err := p.Chunk(doc)
		require.NoError(t, err)
		chunks = append(chunks, cs...)
	}

	require.Len(t, chunks, 2)
	assert.Equal(t, "foo", chunks[0].Text)
	assert.Equal(t, "A", chunks[0].Metadata[domain.MetaSection])
	assert.Equal(t, "bar", chunks[1].Text)
	assert.Equal(t, "B", chunks[1].Metadata[domain.MetaSection])

	for _, c := range chunks {
		assert.NotContains(t, c.Text, "#")
		assert.Len(t, c.ID(), domain.ChunkIDLength)
	}
}

func TestChunk_DeterministicID(t *testing.T) {
	doc := domain.RawDocument{
		Content: "Scaling\nAdd replicas when load rises.",
		Metadata: map[string]any{
			domain.MetaSource:  "ops.md",
			domain.MetaDocType: "document: ops.md",
		},
	}
	p := New()

	first, err := p.Chunk(doc)
	require.NoError(t, err)
	second, err := p.Chunk(doc)
	require.NoError(t, err)

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID(), second[0].ID())
}

func TestChunk_EmptySection(t *testing.T) {
	p := New()

	for _, content := range []string{"", "   \n\n  ", "## Heading only"} {
		chunks, err := p.Chunk(domain.RawDocument{
			Content:  content,
			Metadata: map[string]any{domain.MetaSource: "ops.md"},
		})
		require.NoError(t, err)
		assert.Empty(t, chunks)
	}
}

func TestChunk_DefaultSectionTitle(t *testing.T) {
	// Blank first line, body on later lines without a heading marker:
	// nothing qualifies as a title.
	doc := domain.RawDocument{
		Content:  "\nplain text body\nmore text",
		Metadata: map[string]any{domain.MetaSource: "notes.md"},
	}

	chunks, err := New().Chunk(doc)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, DefaultSection, chunks[0].Metadata[domain.MetaSection])
	assert.Equal(t, "plain text body\nmore text", chunks[0].Text)
}

func TestChunk_PreservesInteriorBlankLines(t *testing.T) {
	doc := domain.RawDocument{
		Content:  "Rollout\nfirst paragraph\n\nsecond paragraph",
		Metadata: map[string]any{domain.MetaSource: "plan.md"},
	}

	chunks, err := New().Chunk(doc)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Rollout", chunks[0].Metadata[domain.MetaSection])
	assert.Equal(t, "first paragraph\n\nsecond paragraph", chunks[0].Text)
}
