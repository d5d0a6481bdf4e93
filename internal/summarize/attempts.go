package summarize

import (
	"context"
	"strings"

	"github.com/ppiankov/sportcheck/internal/model"
)

// Attempt is one strategy in the evidence summary fallback chain
type Attempt interface {
	// Name identifies the attempt in logs and metrics
	Name() string

	// Try returns a summary, or false to hand over to the next attempt
	Try(ctx context.Context, result model.SearchResult, maxWords int) (string, bool)
}

// PageSource returns the readable text of a web page, or "" when unavailable
type PageSource interface {
	PageText(ctx context.Context, url string) string
}

// PageAttempt summarizes the full text of the linked page
type PageAttempt struct {
	pages      PageSource
	summarizer *LengthAware
}

// NewPageAttempt creates the page attempt
func NewPageAttempt(pages PageSource, summarizer *LengthAware) *PageAttempt {
	return &PageAttempt{pages: pages, summarizer: summarizer}
}

// Name implements Attempt
func (a *PageAttempt) Name() string { return "page" }

// Try declines when the page yields no paragraph text. A failed summary
// falls back to the page text cut to maxWords words.
func (a *PageAttempt) Try(ctx context.Context, result model.SearchResult, maxWords int) (string, bool) {
	if strings.TrimSpace(result.Link) == "" {
		return "", false
	}
	text := a.pages.PageText(ctx, result.Link)
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	if summary, ok := a.summarizer.Summarize(ctx, text, maxWords); ok {
		return summary, true
	}
	return TruncateWords(text, maxWords), true
}

// MetadataAttempt summarizes the search result title and snippet
type MetadataAttempt struct {
	summarizer *LengthAware
}

// NewMetadataAttempt creates the metadata attempt
func NewMetadataAttempt(summarizer *LengthAware) *MetadataAttempt {
	return &MetadataAttempt{summarizer: summarizer}
}

// Name implements Attempt
func (a *MetadataAttempt) Name() string { return "metadata" }

// Try always succeeds; a failed summary keeps the metadata verbatim
func (a *MetadataAttempt) Try(ctx context.Context, result model.SearchResult, maxWords int) (string, bool) {
	text := result.MetadataText()
	if summary, ok := a.summarizer.Summarize(ctx, text, maxWords); ok {
		return summary, true
	}
	return text, true
}
