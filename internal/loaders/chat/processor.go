// Package chat loads chat transcript exports. Threads are delimited by
// fixed-width separator lines; every message line becomes one chunk.
package chat

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/opsintel-labs/opsintel/internal/core/domain"
	"github.com/opsintel-labs/opsintel/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.Processor = (*Processor)(nil)

// separatorWidth is the width of the "=" divider between threads.
const separatorWidth = 50

// UnknownValue fills thread metadata when the header is absent.
const UnknownValue = "Unknown"

var (
	// messageRE matches "[HH:MM:SS] author: message". Lines that do
	// not match are dropped silently.
	messageRE = regexp.MustCompile(`^\[(\d{2}:\d{2}:\d{2})\]\s+([a-z.]+):\s+(.+)`)

	// dateRE extracts the thread date from a "Started:" header line.
	dateRE = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
)

// Processor handles chat transcript exports.
type Processor struct{}

// New creates a new chat processor.
func New() *Processor {
	return &Processor{}
}

// DocType returns the type tag this processor handles.
func (p *Processor) DocType() domain.DocType {
	return domain.DocTypeChat
}

// Load parses a transcript export into one raw document per message.
// Thread title and date from the most recent header apply to all
// following messages.
func (p *Processor) Load(_ context.Context, sourcePath string) ([]domain.RawDocument, error) {
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("reading transcript: %w", err)
	}

	source := filepath.Base(sourcePath)
	sections := strings.Split(string(data), strings.Repeat("=", separatorWidth))

	var docs []domain.RawDocument
	threadTitle := ""
	threadDate := ""

	for _, section := range sections {
		section = strings.TrimSpace(section)
		if section == "" {
			continue
		}
		lines := strings.Split(section, "\n")

		for _, line := range lines {
			if title, ok := strings.CutPrefix(line, "Thread:"); ok {
				threadTitle = strings.TrimSpace(title)
			} else if started, ok := strings.CutPrefix(line, "Started:"); ok {
				if date := dateRE.FindString(started); date != "" {
					threadDate = date
				}
			}
		}

		for _, line := range lines {
			m := messageRE.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			timestamp, author, text := m[1], m[2], m[3]

			title := threadTitle
			if title == "" {
				title = UnknownValue
			}
			date := threadDate
			if date == "" {
				date = UnknownValue
			}
			fullTimestamp := timestamp
			if threadDate != "" {
				fullTimestamp = threadDate + " " + timestamp
			}

			docs = append(docs, domain.RawDocument{
				Content: strings.TrimSpace(text),
				Metadata: map[string]any{
					domain.MetaSource:  source,
					domain.MetaDocType: string(domain.DocTypeChat),
					"thread_title":     title,
					"thread_date":      date,
					"author":           author,
					"timestamp":        timestamp,
					"full_timestamp":   fullTimestamp,
				},
			})
		}
	}
	return docs, nil
}

// Chunk formats one message with its thread context. Messages arrive
// pre-split from Load, so every document yields exactly one chunk.
func (p *Processor) Chunk(doc domain.RawDocument) ([]domain.Chunk, error) {
	title, _ := doc.Metadata["thread_title"].(string)
	author, _ := doc.Metadata["author"].(string)
	timestamp, _ := doc.Metadata["timestamp"].(string)

	text := fmt.Sprintf("[Thread: %s]\n%s (%s): %s", title, author, timestamp, doc.Content)

	metadata := make(map[string]any, len(doc.Metadata)+1)
	for k, v := range doc.Metadata {
		metadata[k] = v
	}
	metadata[domain.MetaChunkID] = domain.ChunkID(
		doc.Source(),
		fmt.Sprintf("%s_%s_%s", title, author, timestamp),
	)

	return []domain.Chunk{{Text: text, Metadata: metadata}}, nil
}
