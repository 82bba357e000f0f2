// Package analysis produces short natural-language summaries of scanned
// documents using a hosted or local language model.
package analysis

import (
	"context"
	"fmt"
	"strings"
)

// maxPromptText is how much of the recognized text is sent to the model.
const maxPromptText = 500

// Analyzer summarizes recognized document text.
type Analyzer interface {
	// Summarize returns a 2-3 sentence description of the document
	Summarize(ctx context.Context, text string) (string, error)
	// Close closes the analyzer and releases resources
	Close() error
}

// documentPrompt is the shared prompt used by all LLM providers
const documentPrompt = `You are Tavi, an AI travel assistant analyzing an uploaded document.

Based on the text below, provide a brief 2-3 sentence summary of what this document is and any relevant insights.
If it's a receipt or ticket, mention the key details (merchant, date, total). If it's travel information, highlight the important points.
Be concise and helpful. Do not use markdown.

Document Text:
%s

Your analysis:`

func buildPrompt(text string) string {
	r := []rune(strings.TrimSpace(text))
	if len(r) > maxPromptText {
		r = r[:maxPromptText]
	}
	return fmt.Sprintf(documentPrompt, string(r))
}

// cleanSummary strips whitespace and any markdown fences the model added.
func cleanSummary(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```text")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
