package search

import (
	"context"
	"strings"
	"time"

	"github.com/ppiankov/sportcheck/internal/model"
	"github.com/ppiankov/sportcheck/internal/resilience"
	"go.uber.org/zap"
)

// DefaultLimit caps the number of results when callers pass no limit
const DefaultLimit = 5

// Retriever turns parsed entities into ranked search results
type Retriever struct {
	client Client
	limit  int
	policy resilience.Policy
}

// NewRetriever creates a retriever; limit <= 0 uses DefaultLimit
func NewRetriever(client Client, limit int, timeout time.Duration) *Retriever {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Retriever{
		client: client,
		limit:  limit,
		policy: resilience.DefaultPolicy(timeout),
	}
}

// BuildQuery joins the query-relevant entity fields with spaces.
// It returns "" when no such field is present.
func BuildQuery(entities model.ParsedEntities) string {
	return strings.Join(entities.QueryTerms(), " ")
}

// Retrieve returns up to limit results for entities. Failures are logged
// and reported as an empty result set.
func (r *Retriever) Retrieve(ctx context.Context, entities model.ParsedEntities, limit int) []model.SearchResult {
	results, err := r.Search(ctx, entities, limit)
	if err != nil {
		zap.L().Error("web search failed", zap.String("query", BuildQuery(entities)), zap.Error(err))
		return []model.SearchResult{}
	}
	return results
}

// Search is Retrieve with the underlying error exposed.
// An empty query returns no results without calling the provider.
func (r *Retriever) Search(ctx context.Context, entities model.ParsedEntities, limit int) ([]model.SearchResult, error) {
	if limit <= 0 {
		limit = r.limit
	}

	query := BuildQuery(entities)
	if query == "" {
		zap.L().Info("no query-relevant entities, skipping web search")
		return []model.SearchResult{}, nil
	}

	zap.L().Info("searching", zap.String("query", query), zap.Int("limit", limit))

	resp, err := resilience.Call(ctx, r.policy, "web search", func(ctx context.Context) (*Response, error) {
		return r.client.Search(ctx, query, limit)
	})
	if err != nil {
		return nil, err
	}
	if resp.Error != "" {
		zap.L().Debug("search provider reported", zap.String("query", query), zap.String("message", resp.Error))
	}

	if len(resp.OrganicResults) == 0 {
		if link := relatedLink(resp.RelatedSearches); link != "" {
			zap.L().Info("no organic results, following related search", zap.String("query", query))
			resp, err = resilience.Call(ctx, r.policy, "related search", func(ctx context.Context) (*Response, error) {
				return r.client.Follow(ctx, link)
			})
			if err != nil {
				return nil, err
			}
		}
	}

	results := toSearchResults(resp.OrganicResults, limit)
	zap.L().Info("search complete", zap.String("query", query), zap.Int("results", len(results)))
	return results, nil
}

// relatedLink returns the link of the first related search, or "" when
// that entry cannot be followed. Later entries are never tried.
func relatedLink(related []RelatedSearch) string {
	if len(related) == 0 {
		return ""
	}
	return strings.TrimSpace(related[0].SerpAPILink)
}

// toSearchResults keeps rank order, skips linkless results and truncates to limit
func toSearchResults(organic []OrganicResult, limit int) []model.SearchResult {
	results := make([]model.SearchResult, 0, min(len(organic), limit))
	for _, item := range organic {
		if len(results) >= limit {
			break
		}
		if strings.TrimSpace(item.Link) == "" {
			continue
		}
		snippet := strings.TrimSpace(item.Snippet)
		if snippet == "" {
			snippet = model.NoSnippet
		}
		results = append(results, model.SearchResult{
			Title:   item.Title,
			Snippet: snippet,
			Link:    item.Link,
		})
	}
	return results
}
