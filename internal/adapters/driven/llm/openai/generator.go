// Package openai provides a structured answer generator using the
// OpenAI chat completions API with JSON output.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/opsintel-labs/opsintel/internal/core/domain"
	"github.com/opsintel-labs/opsintel/internal/core/ports/driven"
)

// Ensure Generator implements the interface.
var _ driven.Generator = (*Generator)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 120 * time.Second
)

// Config holds configuration for the OpenAI generator.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	BaseURL string

	// Model is the chat model to use (default: gpt-4o-mini).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// Generator produces structured decision-support answers from a query
// plus retrieved context chunks.
type Generator struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

type chatCompletionRequest struct {
	Model          string              `json:"model"`
	Messages       []chatCompletionMsg `json:"messages"`
	ResponseFormat *responseFormat     `json:"response_format,omitempty"`
	Temperature    float64             `json:"temperature,omitempty"`
}

type chatCompletionMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewGenerator creates a new OpenAI generator.
func NewGenerator(cfg Config) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required: %w", domain.ErrInvalidInput)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Generator{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

const systemPrompt = `You are a decision-support assistant for operations teams.

Your job is to:
1. Analyze retrieved documents (formal process docs, incident postmortems, CSV data, chat conversations, emails)
2. Synthesize evidence from multiple sources
3. Surface conflicting information explicitly
4. Produce structured, actionable recommendations

CRITICAL RULES:
- Every factual claim MUST cite source document + location (section/page/row)
- If sources conflict (e.g., chat disagrees with formal docs), explicitly mention it in conflicts_or_gaps
- If evidence is insufficient, say so (confidence_level: "low") and suggest what's missing
- Use exact document names from the context (as shown in [Source N: filename])
- For decision queries, extract and structure ALL options with pros/cons/risks/costs
- Be specific: use exact numbers, costs, timelines from the context
- Do not make up information not present in the retrieved context

Respond with a single JSON object of this shape:
{
  "decision_summary": string,
  "options": [{"option": string, "pros": [string], "cons": [string], "risks": [string], "cost": string}],
  "recommendation": string,
  "confidence_level": "high" | "medium" | "low",
  "reasoning": string,
  "evidence": [{"claim": string, "source": string, "location": string}],
  "conflicts_or_gaps": [string]
}`

// Generate builds a labelled context block from the retrieved chunks,
// asks the model for a JSON answer and parses it.
func (g *Generator) Generate(ctx context.Context, query string, contextChunks []domain.ScoredChunk) (*domain.Answer, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query is empty: %w", domain.ErrInvalidInput)
	}

	userPrompt := fmt.Sprintf(`Query: %s

Retrieved context:
%s

Analyze the retrieved documents and provide a comprehensive decision-ready response.

Instructions:
- If this is a comparison/decision query (e.g., "Should we...?"), extract all options with structured pros/cons/risks/costs
- Every factual claim MUST cite the source document and location
- If sources conflict, explicitly list this in conflicts_or_gaps
- If evidence is insufficient, set confidence_level to "low" and explain what's missing
- Use exact document names from the context (shown in [Source N: filename])
- Be specific: include costs, timelines, metrics from the context`,
		query, buildContext(contextChunks))

	content, err := g.chatCompletion(ctx, userPrompt)
	if err != nil {
		return nil, err
	}

	var answer domain.Answer
	if err := json.Unmarshal([]byte(extractJSON(content)), &answer); err != nil {
		return nil, fmt.Errorf("parsing answer: %w", err)
	}
	return &answer, nil
}

func (g *Generator) chatCompletion(ctx context.Context, userPrompt string) (string, error) {
	reqBody := chatCompletionRequest{
		Model: g.model,
		Messages: []chatCompletionMsg{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %v: %w", err, domain.ErrLLMUnavailable)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var chatResp chatCompletionResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if chatResp.Error != nil {
		return "", fmt.Errorf("openai error: %s: %w", chatResp.Error.Message, domain.ErrLLMUnavailable)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openai status %d: %s: %w", resp.StatusCode, string(body), domain.ErrLLMUnavailable)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("openai: no response choices returned: %w", domain.ErrLLMUnavailable)
	}

	return chatResp.Choices[0].Message.Content, nil
}

// buildContext formats retrieved chunks into a labelled block so the
// model knows what to cite. Metadata that helps the model prioritise
// (section, thread, author, dates) goes into the source label.
func buildContext(chunks []domain.ScoredChunk) string {
	if len(chunks) == 0 {
		return "(No relevant context retrieved)"
	}

	var parts []string
	for i, scored := range chunks {
		meta := scored.Chunk.Metadata
		label := fmt.Sprintf("Source %d: %s", i+1, scored.Chunk.SourceTag())

		var info []string
		if section, ok := meta[domain.MetaSection].(string); ok && section != "" {
			info = append(info, "Section: "+section)
		}
		if title, ok := meta["thread_title"].(string); ok && title != "" {
			info = append(info, "Thread: "+title)
		}
		if author, ok := meta["author"].(string); ok && author != "" {
			info = append(info, "Author: "+author)
		}
		if date, ok := meta["thread_date"].(string); ok && date != "" && date != "Unknown" {
			info = append(info, "Date: "+date)
		}
		if date, ok := meta["date"].(string); ok && date != "" {
			info = append(info, "Date: "+date)
		}
		if len(info) > 0 {
			label += " (" + strings.Join(info, ", ") + ")"
		}

		// Lower distance means more relevant.
		label += fmt.Sprintf(" [Relevance: %.2f]", 1/(1+scored.Distance))

		parts = append(parts, fmt.Sprintf("[%s]\n%s\n", label, scored.Chunk.Text))
	}

	return "\n" + strings.Repeat("=", 60) + "\n" + strings.Join(parts, "\n")
}

// extractJSON trims markdown code fences some models wrap around JSON
// despite the response format hint.
func extractJSON(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	}
	return content
}

// ModelName returns the name of the chat model being used.
func (g *Generator) ModelName() string {
	return g.model
}

// Close releases resources.
func (g *Generator) Close() error {
	return nil
}
