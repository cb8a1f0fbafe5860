package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkID_Deterministic(t *testing.T) {
	a := ChunkID("incident_log.csv", "INC-1042")
	b := ChunkID("incident_log.csv", "INC-1042")
	assert.Equal(t, a, b)
	assert.Len(t, a, ChunkIDLength)
}

func TestChunkID_DistinguishesInputs(t *testing.T) {
	assert.NotEqual(t, ChunkID("a.md", "Intro"), ChunkID("a.md", "Summary"))
	assert.NotEqual(t, ChunkID("a.md", "Intro"), ChunkID("b.md", "Intro"))
}

func TestChunk_WithoutEmbedding(t *testing.T) {
	c := Chunk{
		Text:      "hello",
		Metadata:  map[string]any{MetaChunkID: "abc123def456"},
		Embedding: []float32{1, 2, 3},
	}

	stripped := c.WithoutEmbedding()
	assert.Nil(t, stripped.Embedding)
	assert.Equal(t, "hello", stripped.Text)
	assert.Equal(t, "abc123def456", stripped.ID())

	// Original is untouched.
	assert.Len(t, c.Embedding, 3)
}

func TestChunk_MetadataAccessors(t *testing.T) {
	c := Chunk{Metadata: map[string]any{
		MetaSource:  "ops_export.txt",
		MetaDocType: "chat",
	}}
	assert.Equal(t, "ops_export.txt", c.SourceTag())
	assert.Equal(t, "chat", c.DocTypeTag())

	empty := Chunk{}
	assert.Empty(t, empty.ID())
	assert.Empty(t, empty.SourceTag())
}
