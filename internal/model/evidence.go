package model

import "strings"

// NoSnippet is used when the search provider returns a result without a snippet
const NoSnippet = "No snippet available."

// SearchResult is one ranked hit returned by the search provider
type SearchResult struct {
	Title   *string `json:"title"`   // Optional page title
	Snippet string  `json:"snippet"` // Provider snippet, NoSnippet when absent
	Link    string  `json:"link"`    // Page URL
}

// MetadataText joins title and snippet as "<title>. <snippet>".
// Results without a title yield just the snippet.
func (r SearchResult) MetadataText() string {
	if r.Title == nil || strings.TrimSpace(*r.Title) == "" {
		return r.Snippet
	}
	return strings.TrimSpace(*r.Title) + ". " + r.Snippet
}

// Links returns the links of the given results in order
func Links(results []SearchResult) []string {
	links := make([]string, 0, len(results))
	for _, r := range results {
		links = append(links, r.Link)
	}
	return links
}
