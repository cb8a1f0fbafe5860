// Package email loads staged email exports. Each artifact is a
// directory holding metadata.json and body.txt, as written by the
// upstream mail export integration.
package email

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/opsintel-labs/opsintel/internal/core/domain"
	"github.com/opsintel-labs/opsintel/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.Processor = (*Processor)(nil)

// Processor handles staged email directories. The whole body stays a
// single chunk: emails are conversational and benefit from full
// context.
type Processor struct{}

// New creates a new email processor.
func New() *Processor {
	return &Processor{}
}

// DocType returns the type tag this processor handles.
func (p *Processor) DocType() domain.DocType {
	return domain.DocTypeEmail
}

// Load reads one email directory. metadata.json is required; a missing
// body.txt yields an empty body, not an error.
func (p *Processor) Load(_ context.Context, sourcePath string) ([]domain.RawDocument, error) {
	metaPath := filepath.Join(sourcePath, "metadata.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, fmt.Errorf("reading metadata.json: %w", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing metadata.json: %w", err)
	}

	body := ""
	if b, err := os.ReadFile(filepath.Join(sourcePath, "body.txt")); err == nil {
		body = string(b)
	}

	id := stringField(raw, "id", "unknown")
	metadata := map[string]any{
		domain.MetaSource:  "email_" + id,
		domain.MetaDocType: string(domain.DocTypeEmail),
		"from":             fromAddress(raw["from"]),
		"subject":          stringField(raw, "subject", ""),
		"date":             stringField(raw, "date", ""),
		"message_id":       stringField(raw, "message_id", ""),
		"thread_id":        stringField(raw, "thread_id", ""),
	}
	if labels, ok := raw["labels"].([]any); ok {
		metadata["labels"] = labels
	}

	return []domain.RawDocument{{Content: body, Metadata: metadata}}, nil
}

// Chunk prefixes the body with a synthesized header block and emits a
// single chunk. The chunk id derives from the provider message id.
func (p *Processor) Chunk(doc domain.RawDocument) ([]domain.Chunk, error) {
	from, _ := doc.Metadata["from"].(string)
	if from == "" {
		from = "unknown"
	}
	subject, _ := doc.Metadata["subject"].(string)
	if subject == "" {
		subject = "(no subject)"
	}
	date, _ := doc.Metadata["date"].(string)
	if date == "" {
		date = "unknown"
	}

	var b strings.Builder
	b.WriteString("From: " + from + "\n")
	b.WriteString("Subject: " + subject + "\n")
	b.WriteString("Date: " + date + "\n\n")
	b.WriteString(doc.Content)

	messageID, _ := doc.Metadata["message_id"].(string)
	if messageID == "" {
		messageID = "unknown"
	}

	metadata := make(map[string]any, len(doc.Metadata)+1)
	for k, v := range doc.Metadata {
		metadata[k] = v
	}
	metadata[domain.MetaChunkID] = domain.ChunkID(doc.Source(), messageID)

	return []domain.Chunk{{Text: strings.TrimSpace(b.String()), Metadata: metadata}}, nil
}

// stringField reads a string value from decoded JSON with a default.
func stringField(raw map[string]any, key, fallback string) string {
	if s, ok := raw[key].(string); ok && s != "" {
		return s
	}
	return fallback
}

// fromAddress extracts the sender, which upstream exports encode
// either as a plain string or as an object with an address field.
func fromAddress(value any) string {
	switch v := value.(type) {
	case string:
		if v != "" {
			return v
		}
	case map[string]any:
		if addr, ok := v["address"].(string); ok && addr != "" {
			return addr
		}
	}
	return "unknown"
}
