// Package summarize generates a short human-readable release summary from
// the categorized notes using Google's Gemini API. It is optional: the
// pipeline works without it and only calls in when ai.enabled is set.
package summarize

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"relkit/internal/notes"
)

const defaultModel = "gemini-2.5-flash"

// Summarizer produces release summaries via Gemini.
type Summarizer struct {
	client *genai.Client
	model  string
}

// New creates a Summarizer. An empty model falls back to the default.
func New(ctx context.Context, apiKey, model string) (*Summarizer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = defaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &Summarizer{client: client, model: model}, nil
}

// Summarize returns a one-paragraph summary of the release document.
func (s *Summarizer) Summarize(ctx context.Context, doc notes.Document) (string, error) {
	prompt := buildPrompt(doc)

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	resp, err := s.client.Models.GenerateContent(ctx, s.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate summary: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("empty summary from model")
	}
	return text, nil
}

// buildPrompt flattens the document into a compact change list for the model.
func buildPrompt(doc notes.Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write one short paragraph (2-3 sentences, plain prose, no markdown) summarizing release %s", doc.Version)
	if doc.Previous != "" {
		fmt.Fprintf(&b, " since %s", doc.Previous)
	}
	b.WriteString(" for end users. Changes:\n")
	for _, sec := range doc.Sections {
		for _, ch := range sec.Changes {
			fmt.Fprintf(&b, "- [%s] %s (#%d)\n", sec.Title, ch.Title, ch.Number)
		}
	}
	return b.String()
}
