package email

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsintel-labs/opsintel/internal/core/domain"
)

func writeEmail(t *testing.T, metadata, body string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "2024-09-12_msg001")
	require.NoError(t, os.MkdirAll(dir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "metadata.json"), []byte(metadata), 0600))
	if body != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "body.txt"), []byte(body), 0600))
	}
	return dir
}

func TestLoad_FullEmail(t *testing.T) {
	dir := writeEmail(t, `{
		"id": "msg001",
		"from": "ops@example.com",
		"subject": "Postmortem draft",
		"date": "2024-09-12",
		"message_id": "<abc@mail.example.com>",
		"thread_id": "t-17",
		"labels": ["ops", "postmortem"]
	}`, "Draft attached, please review by Friday.")

	docs, err := New().Load(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	doc := docs[0]
	assert.Equal(t, "Draft attached, please review by Friday.", doc.Content)
	assert.Equal(t, "email_msg001", doc.Metadata[domain.MetaSource])
	assert.Equal(t, "email", doc.Metadata[domain.MetaDocType])
	assert.Equal(t, "ops@example.com", doc.Metadata["from"])
	assert.Equal(t, "Postmortem draft", doc.Metadata["subject"])
}

func TestLoad_FromAsObject(t *testing.T) {
	dir := writeEmail(t, `{"id": "msg002", "from": {"address": "dana@example.com", "name": "Dana"}}`, "hi")

	docs, err := New().Load(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, "dana@example.com", docs[0].Metadata["from"])
}

func TestLoad_MissingMetadata(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "empty")
	require.NoError(t, os.MkdirAll(dir, 0700))

	_, err := New().Load(context.Background(), dir)
	assert.Error(t, err)
}

func TestLoad_MissingBodyIsEmpty(t *testing.T) {
	dir := writeEmail(t, `{"id": "msg003"}`, "")

	docs, err := New().Load(context.Background(), dir)
	require.NoError(t, err)
	assert.Empty(t, docs[0].Content)
}

func TestChunk_SingleChunkWithHeaderBlock(t *testing.T) {
	p := New()
	dir := writeEmail(t, `{
		"id": "msg004",
		"from": "sam@example.com",
		"subject": "On-call handoff",
		"date": "2024-09-13",
		"message_id": "<def@mail.example.com>"
	}`, "Nothing open. Two SEV3s resolved overnight.")

	docs, err := p.Load(context.Background(), dir)
	require.NoError(t, err)

	chunks, err := p.Chunk(docs[0])
	require.NoError(t, err)
	require.Len(t, chunks, 1)

	text := chunks[0].Text
	assert.Contains(t, text, "From: sam@example.com\n")
	assert.Contains(t, text, "Subject: On-call handoff\n")
	assert.Contains(t, text, "Date: 2024-09-13\n\n")
	assert.Contains(t, text, "Two SEV3s resolved overnight.")

	wantID := domain.ChunkID("email_msg004", "<def@mail.example.com>")
	assert.Equal(t, wantID, chunks[0].ID())
}

func TestChunk_DefaultsForMissingHeaders(t *testing.T) {
	p := New()
	dir := writeEmail(t, `{"id": "msg005"}`, "body only")

	docs, err := p.Load(context.Background(), dir)
	require.NoError(t, err)

	chunks, err := p.Chunk(docs[0])
	require.NoError(t, err)

	text := chunks[0].Text
	assert.Contains(t, text, "From: unknown")
	assert.Contains(t, text, "Subject: (no subject)")
	assert.Contains(t, text, "Date: unknown")
}
