// Package search retrieves ranked web evidence for parsed claims.
package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ppiankov/sportcheck/internal/resilience"
	"github.com/rotisserie/eris"
)

const (
	defaultBaseURL = "https://serpapi.com/search.json"
	defaultEngine  = "google"
)

// Client performs SerpAPI search operations.
type Client interface {
	// Search runs a query and asks for up to num organic results
	Search(ctx context.Context, query string, num int) (*Response, error)

	// Follow fetches a serpapi_link returned in a previous response
	Follow(ctx context.Context, link string) (*Response, error)
}

// Response is the subset of a SerpAPI response the retriever uses.
type Response struct {
	OrganicResults  []OrganicResult `json:"organic_results"`
	RelatedSearches []RelatedSearch `json:"related_searches"`
	Error           string          `json:"error,omitempty"`
}

// OrganicResult is one ranked web result.
type OrganicResult struct {
	Position int     `json:"position"`
	Title    *string `json:"title"`
	Link     string  `json:"link"`
	Snippet  string  `json:"snippet"`
}

// RelatedSearch is a query the engine suggests alongside the results.
type RelatedSearch struct {
	Query       string `json:"query"`
	Link        string `json:"link"`
	SerpAPILink string `json:"serpapi_link"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default search endpoint.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithEngine selects the SerpAPI engine.
func WithEngine(engine string) Option {
	return func(c *httpClient) {
		if engine != "" {
			c.engine = engine
		}
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	engine  string
	http    *http.Client
}

// NewClient creates a SerpAPI client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		engine:  defaultEngine,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Search(ctx context.Context, query string, num int) (*Response, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, eris.Wrap(err, "serpapi: parse base url")
	}

	q := u.Query()
	q.Set("q", query)
	q.Set("api_key", c.apiKey)
	q.Set("engine", c.engine)
	q.Set("num", strconv.Itoa(num))
	u.RawQuery = q.Encode()

	return c.get(ctx, u.String())
}

func (c *httpClient) Follow(ctx context.Context, link string) (*Response, error) {
	u, err := url.Parse(link)
	if err != nil {
		return nil, eris.Wrap(err, "serpapi: parse related link")
	}

	q := u.Query()
	q.Set("api_key", c.apiKey)
	u.RawQuery = q.Encode()

	return c.get(ctx, u.String())
}

func (c *httpClient) get(ctx context.Context, rawURL string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "serpapi: create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "serpapi: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "serpapi: read response")
	}

	if resp.StatusCode != http.StatusOK {
		statusErr := eris.Errorf("serpapi: unexpected status %d: %s", resp.StatusCode, string(body))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(statusErr, resp.StatusCode)
		}
		return nil, statusErr
	}

	var result Response
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "serpapi: unmarshal response")
	}

	return &result, nil
}
